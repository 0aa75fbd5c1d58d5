package auth

import (
	"slices"
	"time"
)

// Role is a role name as stored in the role-assignment and profile records.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleMentor         Role = "mentor"
	RoleCreator        Role = "creator"
	RoleContentCreator Role = "content-creator"
)

// UserRoleInfo is the derived authorization snapshot for one principal.
// It is always built in one pass by NewUserRoleInfo and never patched afterwards.
type UserRoleInfo struct {
	Roles            []string  `json:"roles"`
	ProfileRole      *string   `json:"profile_role,omitempty"`
	IsAdmin          bool      `json:"is_admin"`
	IsMentor         bool      `json:"is_mentor"`
	IsContentCreator bool      `json:"is_content_creator"`
	LastFetched      time.Time `json:"last_fetched"`
}

// NewUserRoleInfo merges raw assignment rows and the optional profile role
// into a snapshot stamped with fetchedAt. Duplicate and blank roles are dropped.
func NewUserRoleInfo(assigned []string, profileRole *string, fetchedAt time.Time) UserRoleInfo {
	roles := make([]string, 0, len(assigned))
	for _, r := range assigned {
		if r == "" || slices.Contains(roles, r) {
			continue
		}
		roles = append(roles, r)
	}

	info := UserRoleInfo{
		Roles:       roles,
		LastFetched: fetchedAt,
	}
	if profileRole != nil && *profileRole != "" {
		p := *profileRole
		info.ProfileRole = &p
	}
	info.IsAdmin = slices.Contains(roles, string(RoleAdmin))
	info.IsMentor = slices.Contains(roles, string(RoleMentor))
	info.IsContentCreator = slices.Contains(roles, string(RoleCreator)) ||
		slices.Contains(roles, string(RoleContentCreator))
	return info
}

// NoRoles is the fail-closed snapshot: no roles and every flag false.
func NoRoles(fetchedAt time.Time) UserRoleInfo {
	return UserRoleInfo{Roles: []string{}, LastFetched: fetchedAt}
}

// HasRole reports whether the snapshot grants role. Admin grants everything.
func HasRole(info UserRoleInfo, role Role) bool {
	if info.IsAdmin {
		return true
	}
	switch role {
	case RoleMentor:
		if info.IsMentor {
			return true
		}
	case RoleCreator, RoleContentCreator:
		if info.IsContentCreator {
			return true
		}
	}
	if slices.Contains(info.Roles, string(role)) {
		return true
	}
	return info.ProfileRole != nil && *info.ProfileRole == string(role)
}

// PrimaryRole picks the single role to display: admin, then mentor, then
// creator, then the profile role. ok is false when none apply.
func PrimaryRole(info UserRoleInfo) (role Role, ok bool) {
	switch {
	case info.IsAdmin:
		return RoleAdmin, true
	case info.IsMentor:
		return RoleMentor, true
	case info.IsContentCreator:
		return RoleCreator, true
	case info.ProfileRole != nil:
		return Role(*info.ProfileRole), true
	default:
		return "", false
	}
}
