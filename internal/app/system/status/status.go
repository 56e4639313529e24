// internal/app/system/status/status.go
package status

// Group admission statuses. A closed group accepts no joins or promotions;
// its remaining waitlist entries are discarded when it closes.
const (
	Open   = "open"
	Closed = "closed"
)

// User account statuses.
const (
	Active   = "active"
	Disabled = "disabled"
)
