// Package oidc provides the OpenID Connect login adapter.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

// Provider implements ports.AuthProvider against an OIDC issuer.
type Provider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	now          func() time.Time
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer URL, with or without the /.well-known/openid-configuration suffix.
	DiscoveryURL string
	HTTPClient   *http.Client // defaults to a client with a 30s timeout
}

// DiscoveryDocument is the subset of the discovery document go-oidc reads.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider fetches the discovery document once and builds the OAuth2 config from it.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	switch {
	case config.ClientID == "":
		return nil, errors.New("client ID is required")
	case config.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case config.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case config.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(config.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		now:          time.Now,
	}, nil
}

func (p *Provider) Begin(_ context.Context, redirectURL string) (ports.LoginChallenge, error) {
	if redirectURL == "" {
		return ports.LoginChallenge{}, errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return ports.LoginChallenge{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return ports.LoginChallenge{}, fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri stays the configured RedirectURL; the post-login target travels in a cookie.
	return ports.LoginChallenge{
		AuthURL: p.config.AuthCodeURL(state, gooidc.Nonce(nonce)),
		State:   state,
		Nonce:   nonce,
	}, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.Callback) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	claims, err := p.verifyIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if claims.Email == "" || claims.Subject == "" {
		ui, uiErr := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		var extra standardClaims
		if claimsErr := ui.Claims(&extra); claimsErr != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", claimsErr)
		}
		claims = mergeClaims(claims, extra)
	}
	if claims.Subject == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	expiresAt := p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}
	return claims.identity(expiresAt), nil
}

// standardClaims are the OIDC core claims we map into an Identity.
type standardClaims struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

func (c standardClaims) identity(expiresAt time.Time) domainauth.Identity {
	return domainauth.Identity{
		UserID:    c.Subject,
		Email:     strings.ToLower(c.Email),
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		ExpiresAt: expiresAt,
	}
}

// mergeClaims fills empty fields of base from extra. Subject is only taken
// from extra when base has none, since the ID token is authoritative.
func mergeClaims(base, extra standardClaims) standardClaims {
	if base.Subject == "" {
		base.Subject = extra.Subject
	}
	if base.Email == "" {
		base.Email = extra.Email
	}
	if base.GivenName == "" {
		base.GivenName = extra.GivenName
	}
	if base.FamilyName == "" {
		base.FamilyName = extra.FamilyName
	}
	return base
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (standardClaims, error) {
	var claims standardClaims
	if !slices.Contains(p.config.Scopes, gooidc.ScopeOpenID) {
		return claims, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return claims, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return claims, fmt.Errorf("verify id_token: %w", err)
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claims.Nonce != expectedNonce {
		return claims, errors.New("invalid nonce")
	}
	return claims, nil
}

// generateRandomString returns a URL-safe random string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

var _ ports.AuthProvider = (*Provider)(nil)
