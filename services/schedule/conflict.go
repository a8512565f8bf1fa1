package schedule

import (
	"time"

	bookingModel "studio-booking/models/booking"
)

// Conflicts is the advisory result of the MUA schedule check for one
// booking. The two lists answer different operational questions, so they
// are reported separately even though the underlying relation is
// symmetric:
//
//   - MUAOverlapsMySession: other bookings whose make-up window collides
//     with my photo session.
//   - MyMUAOverlapsSessions: other bookings whose photo session collides
//     with my make-up window.
type Conflicts struct {
	MUAOverlapsMySession  []bookingModel.Booking `json:"mua_overlaps_my_session"`
	MyMUAOverlapsSessions []bookingModel.Booking `json:"my_mua_overlaps_sessions"`
}

// overlaps is the half-open interval test: [a1,a2) and [b1,b2) overlap
// iff a1 < b2 and b1 < a2. Touching endpoints do not count.
func overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// Detect computes the MUA conflicts between the subject booking and the
// other bookings of the same calendar day. Pure and read-only: it is
// advisory information, never a gatekeeper. Cancelled bookings are
// excluded from the comparison set.
func Detect(subject *bookingModel.Booking, others []bookingModel.Booking) Conflicts {
	var result Conflicts

	mySessionStart, mySessionEnd := subject.StartTime, subject.EndTime
	myMuaStart, myMuaEnd, iHaveMua := subject.MUAWindow()

	for i := range others {
		other := others[i]
		if other.ID == subject.ID || other.Status.IsCancelled() {
			continue
		}

		if otherMuaStart, otherMuaEnd, ok := other.MUAWindow(); ok {
			if overlaps(otherMuaStart, otherMuaEnd, mySessionStart, mySessionEnd) {
				result.MUAOverlapsMySession = append(result.MUAOverlapsMySession, other)
			}
		}

		if iHaveMua && overlaps(other.StartTime, other.EndTime, myMuaStart, myMuaEnd) {
			result.MyMUAOverlapsSessions = append(result.MyMUAOverlapsSessions, other)
		}
	}

	return result
}
