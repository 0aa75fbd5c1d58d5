// Package mocks provides mock implementations of the membergate ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	roles := mocks.NewMockRoleStore(ctrl)
//	roles.EXPECT().GetRoleAssignments(gomock.Any(), "user-1").Return([]string{"admin"}, nil)
package mocks

// Generate mock for RoleStore interface from internal/ports package.
// This creates MockRoleStore with methods: GetRoleAssignments, GetProfileRole
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=role_store_mock.go github.com/drivenlabs/membergate/internal/ports RoleStore

// Generate mock for TierStore interface from internal/ports package.
// This creates MockTierStore with methods: GetSubscriptionTier
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=tier_store_mock.go github.com/drivenlabs/membergate/internal/ports TierStore

// Generate mock for Notifier interface from internal/ports package.
// This creates MockNotifier with methods: SendInviteEmail
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notifier_mock.go github.com/drivenlabs/membergate/internal/ports Notifier

// Generate mock for BetaOverrideStore interface from internal/ports package.
// This creates MockBetaOverrideStore with methods: GetOverride, SetOverride
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=beta_override_store_mock.go github.com/drivenlabs/membergate/internal/ports BetaOverrideStore
