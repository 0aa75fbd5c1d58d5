package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/service"
)

type fakeAuthService struct {
	beginErr    error
	completeErr error
	sessions    map[string]*domainauth.Session
	loggedOut   []string
	lastInput   service.CompleteLoginInput
}

func (f *fakeAuthService) BeginLogin(_ context.Context, _ string) (*service.BeginLoginResult, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &service.BeginLoginResult{AuthURL: "https://idp.test/authorize", State: "st", Nonce: "no"}, nil
}

func (f *fakeAuthService) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (*domainauth.Session, error) {
	f.lastInput = in
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &domainauth.Session{ID: "new-session", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuthService) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeAuthService) Logout(_ context.Context, id string) error {
	f.loggedOut = append(f.loggedOut, id)
	return nil
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_Login(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{}}

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/courses/1", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.test/authorize", rec.Header().Get("Location"))
	require.NotNil(t, cookieByName(rec, stateCookie))
	assert.Equal(t, "st", cookieByName(rec, stateCookie).Value)
	assert.Equal(t, "no", cookieByName(rec, nonceCookie).Value)
	assert.Equal(t, "/courses/1", cookieByName(rec, redirectCookie).Value)
}

func TestAuthHandlers_Login_RejectsOpenRedirect(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{}}
	for _, target := range []string{"https://evil.test/", "//evil.test/x", "relative"} {
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri="+url.QueryEscape(target), nil))
		assert.Equal(t, "/", cookieByName(rec, redirectCookie).Value, target)
	}
}

func TestAuthHandlers_Login_ProviderError(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{beginErr: errors.New("idp down")}}
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "idp down")
}

func TestAuthHandlers_Callback(t *testing.T) {
	svc := &fakeAuthService{}
	h := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state=st", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "st"})
	req.AddCookie(&http.Cookie{Name: nonceCookie, Value: "no"})
	req.AddCookie(&http.Cookie{Name: redirectCookie, Value: "/courses/1"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/courses/1", rec.Header().Get("Location"))
	assert.Equal(t, service.CompleteLoginInput{Code: "c1", State: "st", Nonce: "no"}, svc.lastInput)
	session := cookieByName(rec, SessionCookieName)
	require.NotNil(t, session)
	assert.Equal(t, "new-session", session.Value)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, -1, cookieByName(rec, stateCookie).MaxAge)
}

func TestAuthHandlers_Callback_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		cookies map[string]string
		svc     *fakeAuthService
		code    int
		errCode string
	}{
		{name: "missing code", query: "state=st", svc: &fakeAuthService{}, code: http.StatusBadRequest, errCode: "missing_code"},
		{name: "missing state", query: "code=c", svc: &fakeAuthService{}, code: http.StatusBadRequest, errCode: "missing_state"},
		{
			name: "state mismatch", query: "code=c&state=st", cookies: map[string]string{stateCookie: "other"},
			svc: &fakeAuthService{}, code: http.StatusBadRequest, errCode: "invalid_state",
		},
		{
			name: "missing nonce", query: "code=c&state=st", cookies: map[string]string{stateCookie: "st"},
			svc: &fakeAuthService{}, code: http.StatusBadRequest, errCode: "missing_nonce",
		},
		{
			name: "exchange fails", query: "code=c&state=st",
			cookies: map[string]string{stateCookie: "st", nonceCookie: "no"},
			svc:     &fakeAuthService{completeErr: errors.New("invalid_grant")},
			code:    http.StatusUnauthorized, errCode: "login_completion_failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+tt.query, nil)
			for k, v := range tt.cookies {
				req.AddCookie(&http.Cookie{Name: k, Value: v})
			}
			rec := httptest.NewRecorder()
			(&AuthHandlers{Svc: tt.svc}).Callback(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errCode)
		})
	}
}

func TestAuthHandlers_Logout(t *testing.T) {
	svc := &fakeAuthService{}
	h := &AuthHandlers{Svc: svc}

	req := withSession(httptest.NewRequest(http.MethodPost, "/auth/logout?redirect_uri=/bye", nil), "s1")
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/bye", rec.Header().Get("Location"))
	assert.Equal(t, []string{"s1"}, svc.loggedOut)
	assert.Equal(t, -1, cookieByName(rec, SessionCookieName).MaxAge)

	req = withSession(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), "s2")
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	assert.JSONEq(t, `{"status":"success","redirect_to":"/"}`, rec.Body.String())
}

func TestAuthHandlers_Status(t *testing.T) {
	svc := &fakeAuthService{sessions: map[string]*domainauth.Session{
		"s1": {ID: "s1", UserID: "u1", Email: "u1@example.com"},
	}}
	h := &AuthHandlers{Svc: svc}

	rec := httptest.NewRecorder()
	h.Status(rec, withSession(httptest.NewRequest(http.MethodGet, "/auth/status", nil), "s1"))
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "u1", body["user"].(map[string]any)["id"])

	rec = httptest.NewRecorder()
	h.Status(rec, withSession(httptest.NewRequest(http.MethodGet, "/auth/status", nil), "stale"))
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	assert.Equal(t, -1, cookieByName(rec, SessionCookieName).MaxAge)
}
