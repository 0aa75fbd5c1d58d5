package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/drivenlabs/membergate/internal/ports"
)

// newIssuer serves a discovery document whose token endpoint rejects every code.
func newIssuer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                srv.URL,
			AuthorizationEndpoint: srv.URL + "/auth",
			TokenEndpoint:         srv.URL + "/token",
			UserinfoEndpoint:      srv.URL + "/userinfo",
			JwksURI:               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createTestProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()
	srv := newIssuer(t)
	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email",
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return provider, srv
}

func TestNewProvider_Success(t *testing.T) {
	provider, srv := createTestProvider(t)
	assert.Equal(t, srv.URL+"/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, srv.URL+"/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, provider.config.Scopes)
}

func TestNewProvider_DefaultScopes(t *testing.T) {
	srv := newIssuer(t)
	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "c",
		ClientSecret: "s",
		RedirectURL:  "http://localhost/cb",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Contains(t, provider.config.Scopes, "openid")
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", RedirectURL: "http://localhost/callback", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", RedirectURL: "http://localhost/callback", DiscoveryURL: "http://example.com"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/callback"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider, srv := createTestProvider(t)

	ch, err := provider.Begin(context.Background(), "/")

	require.NoError(t, err)
	assert.Len(t, ch.State, 32)
	assert.Len(t, ch.Nonce, 32)
	assert.Contains(t, ch.AuthURL, srv.URL+"/auth")
	assert.Contains(t, ch.AuthURL, "client_id=test-client")
	assert.Contains(t, ch.AuthURL, "state="+ch.State)
	assert.Contains(t, ch.AuthURL, "nonce="+ch.Nonce)
}

func TestProvider_Begin_EmptyRedirectURL(t *testing.T) {
	provider, _ := createTestProvider(t)

	_, err := provider.Begin(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider, _ := createTestProvider(t)

	tests := []struct {
		name   string
		input  ports.Callback
		errMsg string
	}{
		{"missing code", ports.Callback{State: "state", Nonce: "nonce"}, "authorization code is required"},
		{"missing state", ports.Callback{Code: "code", Nonce: "nonce"}, "state is required"},
		{"missing nonce", ports.Callback{Code: "code", State: "state"}, "nonce is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Exchange_TokenEndpointRejects(t *testing.T) {
	provider, _ := createTestProvider(t)

	_, err := provider.Exchange(context.Background(), ports.Callback{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestGenerateRandomString(t *testing.T) {
	str1, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, str1, 16)

	str2, err := generateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, str1, str2)

	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.ErrorContains(t, err, "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.ErrorContains(t, err, "nil token")
}

func TestMergeClaims(t *testing.T) {
	base := standardClaims{Subject: "sub-1", GivenName: "Ada"}
	extra := standardClaims{Subject: "other", Email: "ada@example.com", GivenName: "X", FamilyName: "Lovelace"}

	got := mergeClaims(base, extra)

	assert.Equal(t, "sub-1", got.Subject)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.GivenName)
	assert.Equal(t, "Lovelace", got.FamilyName)
}

func TestStandardClaims_Identity(t *testing.T) {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	id := standardClaims{Subject: "s", Email: "Ada@Example.com", GivenName: "Ada", FamilyName: "L"}.identity(exp)

	assert.Equal(t, "s", id.UserID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Equal(t, exp, id.ExpiresAt)
}
