package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrPrincipalIDRequired = errors.New("principal_id is required")
	ErrRoleRequired        = errors.New("role is required")
	ErrInviteIDRequired    = errors.New("invite id is required")
	ErrInviteCodeRequired  = errors.New("invite code is required")
	ErrUserIDRequired      = errors.New("user_id is required")
)
