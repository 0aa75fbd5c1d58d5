package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ServiceMode names one long-running component of the membergate binary.
type ServiceMode string

const (
	ServiceModeHTTP         ServiceMode = "http"
	ServiceModeInviteReaper ServiceMode = "invite-reaper"
)

// ValidServiceModes lists every mode in start order.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeInviteReaper}
}

// ParseServices turns "http, invite-reaper" into a set. Blank entries and
// duplicates are ignored; unknown names are an error.
func ParseServices(raw string) (map[ServiceMode]bool, error) {
	valid := ValidServiceModes()
	set := make(map[ServiceMode]bool, len(valid))

	for part := range strings.SplitSeq(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		if !slices.Contains(valid, mode) {
			return nil, fmt.Errorf("unknown service %q (valid: %s)", name, joinModes(valid))
		}
		set[mode] = true
	}

	if len(set) == 0 {
		return nil, errors.New("SERVICES must name at least one service")
	}
	return set, nil
}

func joinModes(modes []ServiceMode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

const (
	minReaperInterval = time.Minute
	maxReaperBatch    = 10000
)

// ReaperConfig drives the background loop that expires overdue invites.
type ReaperConfig struct {
	Interval  time.Duration `env:"INVITE_REAPER_INTERVAL"   envDefault:"15m"`
	BatchSize int           `env:"INVITE_REAPER_BATCH_SIZE" envDefault:"500"` // rows per UPDATE
}

func (r *ReaperConfig) Sanitize() {
	r.Interval = max(r.Interval, minReaperInterval)
	r.BatchSize = min(max(r.BatchSize, 1), maxReaperBatch)
}
