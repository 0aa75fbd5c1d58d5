package httpx

import (
	"context"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// WithSession attaches the authenticated session. A nil session is ignored.
func WithSession(ctx context.Context, s *domainauth.Session) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionCtxKey, s)
}

// SessionFrom returns the session attached by the auth middleware.
func SessionFrom(ctx context.Context) (*domainauth.Session, bool) {
	s, _ := ctx.Value(sessionCtxKey).(*domainauth.Session)
	return s, s != nil
}

// PrincipalID is the session's user ID, or "" on anonymous requests.
func PrincipalID(ctx context.Context) string {
	if s, ok := SessionFrom(ctx); ok {
		return s.UserID
	}
	return ""
}
