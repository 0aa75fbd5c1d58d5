package config

const (
	minInviteRateLimit = 1
	maxInviteRateLimit = 1000
)

// HTTPConfig configures the API listener and the links it hands out.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public origin used for post-login redirects and invite links.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain scopes the session cookie; empty means the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN"`

	// InviteRateLimit is requests per IP per minute on the public invite endpoints.
	InviteRateLimit int `env:"INVITE_RATE_LIMIT" envDefault:"20"`
}

func (h *HTTPConfig) Sanitize() {
	h.InviteRateLimit = min(max(h.InviteRateLimit, minInviteRateLimit), maxInviteRateLimit)
}
