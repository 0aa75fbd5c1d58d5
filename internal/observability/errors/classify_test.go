package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/drivenlabs/membergate/internal/errors"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error", err: apperrors.NotFound("invite not found"), want: "not_found"},
		{name: "wrapped app error", err: fmt.Errorf("load: %w", apperrors.Conflict("dup")), want: "conflict"},
		{name: "canceled", err: fmt.Errorf("op: %w", context.Canceled), want: "canceled"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "pg error", err: fmt.Errorf("q: %w", &pgconn.PgError{Code: "42P01"}), want: "pgconn_pgerror"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
