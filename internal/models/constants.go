package models

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
)

const (
	PaymentCash   = "CASH"
	PaymentCard   = "CARD"
	PaymentOnline = "ONLINE"
)

// OrderStatuses lists statuses in their implied progression. The progression
// is not enforced client-side; the remote service owns the lifecycle.
var OrderStatuses = []string{StatusPending, StatusPreparing, StatusReady, StatusCompleted}

func ValidOrderStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}
