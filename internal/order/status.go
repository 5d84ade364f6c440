package order

type Status string

// Orders are confirmed at creation: stock is deducted in the same
// transaction that inserts the order. Pending and cancelled are part of
// the schema but nothing transitions into them here.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a status we persist. Used to reject
// unknown status filters before they hit the database.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}
