package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	errInternal    = errors.New("internal error")
	errRateLimited = errors.New("too many requests, try again later")
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseBoolQuery accepts the strconv.ParseBool spellings; anything else is def.
func parseBoolQuery(r *http.Request, key string, def bool) bool {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	lim = max(1, min(lim, maxLimit))
	off = max(0, off)
	return lim, off
}

// isSecureRequest reports whether the client reached us over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
