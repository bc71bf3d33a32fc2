package models

// Workspace roles, ordered by privilege.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleGuest  = "GUEST"
)

// Membership statuses.
const (
	MemberStatusActive  = "ACTIVE"
	MemberStatusPending = "PENDING"
)

// RoleRank maps a role to its position in the hierarchy. Unknown or empty
// roles rank below GUEST so they never satisfy any requirement.
func RoleRank(role string) int {
	switch role {
	case RoleGuest:
		return 0
	case RoleMember:
		return 1
	case RoleAdmin:
		return 2
	case RoleOwner:
		return 3
	default:
		return -1
	}
}

// HasRolePermission reports whether userRole meets or exceeds requiredRole.
// A user with no role (empty or unknown) is always denied.
func HasRolePermission(userRole, requiredRole string) bool {
	rank := RoleRank(userRole)
	if rank < 0 {
		return false
	}
	return rank >= RoleRank(requiredRole)
}

// ValidMemberRole reports whether role is one of the four workspace roles.
func ValidMemberRole(role string) bool {
	return RoleRank(role) >= 0
}

// ValidInviteRole reports whether role may be granted through an invite.
// OWNER is never grantable; it exists only for the workspace creator.
func ValidInviteRole(role string) bool {
	return role == RoleAdmin || role == RoleMember || role == RoleGuest
}
