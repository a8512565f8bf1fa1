package constants

// Staff roles as they appear in the auth token's "role" claim.
const (
	RoleOwner          = "OWNER"
	RoleAdmin          = "ADMIN"
	RolePhotographer   = "PHOTOGRAPHER"
	RolePackagingStaff = "PACKAGING_STAFF"
)

// Role groups for convenience
var (
	ManagementRoles = []string{
		RoleOwner,
		RoleAdmin,
	}

	AllStaffRoles = []string{
		RoleOwner,
		RoleAdmin,
		RolePhotographer,
		RolePackagingStaff,
	}
)

// IsManagementRole reports whether the role carries the unrestricted
// management policy (status edits anywhere, payment edits, booking
// creation).
func IsManagementRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// IsKnownRole reports whether the role is one of the staff roles this
// system recognises at all.
func IsKnownRole(role string) bool {
	for _, r := range AllStaffRoles {
		if r == role {
			return true
		}
	}
	return false
}
