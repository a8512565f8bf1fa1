package printorder

import "studio-booking/constants"

// rolePermission mirrors the parent booking's staff model for the print
// sub-workflow: management may create and drive every transition,
// packaging staff only the terminal packaging/shipping stretch.
type rolePermission struct {
	canCreate bool
	anyStatus bool
}

var rolePermissions = map[string]rolePermission{
	constants.RoleOwner:          {canCreate: true, anyStatus: true},
	constants.RoleAdmin:          {canCreate: true, anyStatus: true},
	constants.RolePackagingStaff: {},
}
