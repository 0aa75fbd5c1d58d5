package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  NotFound("invite not found"),
			want: "invite not found",
		},
		{
			name: "with cause",
			err:  Persistence(errors.New("connection reset"), "create invite"),
			want: "create invite: connection reset",
		},
		{
			name: "with field",
			err:  ValidationField("email", "must be a valid address"),
			want: "email: must be a valid address",
		},
		{
			name: "field and cause",
			err:  &AppError{Code: ErrCodeConflict, Message: "already exists", Field: "code", Cause: errors.New("23505")},
			want: "code: already exists: 23505",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := fmt.Errorf("outer: %w", Persistence(cause, "mark invite sent"))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsPersistence(err))
	assert.Equal(t, ErrCodePersistence, GetCode(err))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "unused"))

	err := Wrap(context.DeadlineExceeded, ErrCodeTimeout, "role lookup timed out")
	assert.True(t, Is(err, ErrCodeTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled := Wrap(context.Canceled, ErrCodeCanceled, "request canceled")
	assert.True(t, Is(canceled, ErrCodeCanceled))
	assert.False(t, Is(canceled, ErrCodeTimeout))
}

func TestCodeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", ValidationField("f", "x"), IsValidation},
		{"persistence", Persistence(errors.New("db"), "x"), IsPersistence},
		{"internal", Internal("x"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestAccessorsOnPlainErrors(t *testing.T) {
	plain := errors.New("plain")

	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetField(plain))
	assert.Empty(t, PublicMessage(plain))
	assert.Empty(t, GetCode(nil))
}

func TestPublicMessageOmitsCauseAndField(t *testing.T) {
	err := &AppError{
		Code:    ErrCodeConflict,
		Message: "invite code already exists",
		Field:   "code",
		Cause:   errors.New("duplicate key value violates unique constraint"),
	}

	assert.Equal(t, "invite code already exists", PublicMessage(fmt.Errorf("create: %w", err)))
	assert.Equal(t, "code", GetField(err))
}
