// Package metrics names the metrics membergate emits and tags them consistently.
package metrics

import (
	"time"

	obserrors "github.com/drivenlabs/membergate/internal/observability/errors"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Role resolution sources.
const (
	RoleSourceBypass    = "bypass"
	RoleSourceCache     = "cache"
	RoleSourceStore     = "store"
	RoleSourceAbandoned = "abandoned"
)

// EmitRoleResolution counts one Resolve call by where the answer came from.
func EmitRoleResolution(sink statsd.Sink, source string, elapsed time.Duration) {
	if sink == nil {
		return
	}
	tags := map[string]string{"source": source}
	sink.Count("roles.resolve", 1, tags)
	if source == RoleSourceStore && elapsed > 0 {
		sink.Timing("roles.fetch_duration", elapsed, CloneTags(tags))
	}
}

// InviteMetric describes one invite lifecycle step.
type InviteMetric struct {
	Transition string
	Result     string
	Err        error
}

// EmitInviteTransition counts an invite lifecycle step.
func EmitInviteTransition(sink statsd.Sink, in InviteMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("invite.transition", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
