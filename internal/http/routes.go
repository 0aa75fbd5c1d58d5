package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

// DefaultInviteRateLimit is the per-client request budget per minute for
// the public invite code endpoints.
const DefaultInviteRateLimit = 20

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthServiceInterface // Required
	Roles    RoleAPI              // Required
	Invites  InviteAPI            // Required
	Access   AccessAPI            // Required
	BetaMode BetaModeSetter       // Optional: enables PUT /api/admin/beta-mode
	// Readiness probes keyed by dependency name, served on /readyz.
	Readiness    map[string]ReadinessCheck
	CookieDomain string
	// InviteRateLimit is requests per minute per client on validate and claim.
	InviteRateLimit int
	Logger          *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness, logger))

	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger})

	mw := routeMiddleware{
		auth:     RequireAuth(services.Auth),
		optional: OptionalAuth(services.Auth),
		admin:    RequireRole(services.Auth, services.Roles, domainauth.RoleAdmin),
		limit:    inviteLimiter(services.InviteRateLimit),
	}
	registerMeRoutes(mux, mw, services)
	registerInviteRoutes(mux, mw, &InviteHandlers{Svc: services.Invites, BetaMode: services.BetaMode, Logger: logger})
	registerRoleAdminRoutes(mux, mw, &RoleHandlers{Svc: services.Roles, Logger: logger})

	return Recover(logger)(Logging(logger)(mux))
}

type routeMiddleware struct {
	auth     func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
	admin    func(http.Handler) http.Handler
	limit    func(http.Handler) http.Handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerMeRoutes(mux *http.ServeMux, mw routeMiddleware, services RouterServices) {
	roles := &RoleHandlers{Svc: services.Roles}
	invites := &InviteHandlers{Svc: services.Invites}
	access := &AccessHandlers{Svc: services.Access}

	mux.Handle("GET /api/me/roles", mw.auth(http.HandlerFunc(roles.Me)))
	mux.Handle("GET /api/me/beta", mw.auth(http.HandlerFunc(invites.MyBeta)))
	mux.Handle("GET /api/me/access", mw.optional(http.HandlerFunc(access.Check)))
}

func registerInviteRoutes(mux *http.ServeMux, mw routeMiddleware, h *InviteHandlers) {
	// OptionalAuth runs first so the limiter can key by user when signed in.
	mux.Handle("POST /api/invites/validate", mw.optional(mw.limit(http.HandlerFunc(h.Validate))))
	mux.Handle("POST /api/invites/claim", mw.auth(mw.limit(http.HandlerFunc(h.Claim))))

	mux.Handle("GET /api/admin/invites", mw.admin(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/admin/invites", mw.admin(http.HandlerFunc(h.Create)))
	mux.Handle("POST /api/admin/invites/bulk", mw.admin(http.HandlerFunc(h.Bulk)))
	mux.Handle("POST /api/admin/invites/{id}/send", mw.admin(http.HandlerFunc(h.Send)))
	mux.Handle("POST /api/admin/invites/{id}/revoke", mw.admin(http.HandlerFunc(h.Revoke)))
	mux.Handle("GET /api/admin/beta-users", mw.admin(http.HandlerFunc(h.BetaUsers)))
	mux.Handle("PUT /api/admin/beta-mode", mw.admin(http.HandlerFunc(h.SetBetaMode)))
}

func registerRoleAdminRoutes(mux *http.ServeMux, mw routeMiddleware, h *RoleHandlers) {
	mux.Handle("POST /api/admin/roles", mw.admin(http.HandlerFunc(h.Assign)))
	mux.Handle("DELETE /api/admin/roles", mw.admin(http.HandlerFunc(h.Revoke)))
	mux.Handle("POST /api/admin/roles/invalidate", mw.admin(http.HandlerFunc(h.Invalidate)))
	mux.Handle("GET /api/admin/roles/cache", mw.admin(http.HandlerFunc(h.CacheStats)))
}

// inviteLimiter throttles code guessing on the public invite endpoints.
func inviteLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = DefaultInviteRateLimit
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, ErrorParams{Code: http.StatusTooManyRequests, ErrCode: "rate_limited", Err: errRateLimited})
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if id := strings.TrimSpace(PrincipalID(r.Context())); id != "" {
		return "user:" + id, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
