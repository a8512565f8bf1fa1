package types

// Actor is the authenticated staff member performing a request, as
// resolved from the JWT claims by the auth middleware. Role checks are
// re-evaluated on every request; nothing here is cached across requests.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
