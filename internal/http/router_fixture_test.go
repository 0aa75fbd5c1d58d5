package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drivenlabs/membergate/internal/adapters/mail"
	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	mocks "github.com/drivenlabs/membergate/internal/mocks/auth"
	"github.com/drivenlabs/membergate/internal/service"
	"github.com/drivenlabs/membergate/internal/testutil"
)

// routerFixture wires the real services over in-memory stores.
type routerFixture struct {
	handler     http.Handler
	sessions    *mocks.MemorySessionStore
	roleStore   *testutil.MemoryRoleStore
	inviteStore *testutil.MemoryInviteStore
	roles       *service.RoleService
	invites     *service.InviteService
}

type fixtureOptions struct {
	betaMode  bool
	rateLimit int
}

func newRouterFixture(t *testing.T, opts fixtureOptions) *routerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := mocks.NewMemorySessionStore()
	roleStore := testutil.NewMemoryRoleStore()
	inviteStore := testutil.NewMemoryInviteStore()

	roles := service.NewRoleService(service.RoleServiceOptions{
		Store:  roleStore,
		Admin:  roleStore,
		Cache:  service.NewRoleCache(service.RoleCacheConfig{}),
		Logger: logger,
	})
	auth := service.NewAuthService(service.AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
		Roles:    roles,
		Logger:   logger,
	})
	beta := service.NewBetaMode(service.BetaModeOptions{Static: opts.betaMode, Logger: logger})
	invites := service.NewInviteService(service.InviteServiceOptions{
		Store:    inviteStore,
		Notifier: mail.NewLogNotifier(logger, "https://app.test/signup"),
		BetaMode: beta,
		Logger:   logger,
	})
	access := service.NewAccessService(service.AccessServiceOptions{
		Roles:  roles,
		Tiers:  roleStore,
		Beta:   invites,
		Logger: logger,
	})

	handler := NewRouter(RouterServices{
		Auth:            auth,
		Roles:           roles,
		Invites:         invites,
		Access:          access,
		BetaMode:        beta,
		InviteRateLimit: opts.rateLimit,
		Logger:          logger,
	})
	return &routerFixture{
		handler:     handler,
		sessions:    sessions,
		roleStore:   roleStore,
		inviteStore: inviteStore,
		roles:       roles,
		invites:     invites,
	}
}

// login stores a session for userID and returns its ID.
func (f *routerFixture) login(t *testing.T, userID string) string {
	t.Helper()
	id := "sess-" + userID
	require.NoError(t, f.sessions.Save(context.Background(), domainauth.Session{
		ID:        id,
		UserID:    userID,
		Email:     userID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return id
}

// loginAdmin stores a session for an admin principal.
func (f *routerFixture) loginAdmin(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.roleStore.AssignRole(context.Background(), "root", "admin", "seed"))
	return f.login(t, "root")
}

type request struct {
	method  string
	path    string
	body    any
	session string
	remote  string
}

func (f *routerFixture) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.session != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: req.session})
	}
	if req.remote != "" {
		r.RemoteAddr = req.remote
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
