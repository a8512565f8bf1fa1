package transition

import (
	"studio-booking/constants"
	bookingModel "studio-booking/models/booking"
)

// rolePolicy is one row of the permission table: which target statuses a
// role may request, whether it may edit the payment status, and current
// statuses at which the role is blocked from any status change at all.
// Policy is data, not branching, so it can be audited and tested on its
// own.
type rolePolicy struct {
	anyStatusTarget bool
	statusTargets   map[bookingModel.BookingStatus]bool
	frozenAtCurrent map[bookingModel.BookingStatus]bool
	canEditPayment  bool
}

var rolePolicies = map[string]rolePolicy{
	constants.RoleOwner: {
		anyStatusTarget: true,
		canEditPayment:  true,
	},
	constants.RoleAdmin: {
		anyStatusTarget: true,
		canEditPayment:  true,
	},
	constants.RolePhotographer: {
		statusTargets: map[bookingModel.BookingStatus]bool{
			bookingModel.StatusShootDone:       true,
			bookingModel.StatusPhotosDelivered: true,
		},
		// Once the booking is PAID the photographer must escalate to an
		// admin for any further status change.
		frozenAtCurrent: map[bookingModel.BookingStatus]bool{
			bookingModel.StatusPaid: true,
		},
	},
	constants.RolePackagingStaff: {
		statusTargets: map[bookingModel.BookingStatus]bool{
			bookingModel.StatusPhotosDelivered: true,
		},
	},
}

// policyFor looks up the permission row for a role. Unknown roles
// (including inactive accounts) get no row and fail closed.
func policyFor(role string) (rolePolicy, bool) {
	p, ok := rolePolicies[role]
	return p, ok
}

// allowsStatusTarget reports whether the role may request the given
// target status.
func (p rolePolicy) allowsStatusTarget(target bookingModel.BookingStatus) bool {
	if p.anyStatusTarget {
		return true
	}
	return p.statusTargets[target]
}

// blockedAt reports whether the role is frozen out of all status changes
// while the booking sits at the given current status.
func (p rolePolicy) blockedAt(current bookingModel.BookingStatus) bool {
	return p.frozenAtCurrent[current]
}
