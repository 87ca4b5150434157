/*
File Name:  DeliveryStatus.go
Copyright:  2024 Hearthmesh Contributors

Delivery status with forward-only transitions (§4.7 "Delivery-status
monotonicity"): sending -> sent -> delivered -> read. Grounded on the
teacher's sequence-number monotonicity check (Message Sequence.go dropped
out-of-order/duplicate sequence numbers) generalized to a status lattice.
*/

package router

// DeliveryStatus is the lifecycle of a single outgoing message (§3.1).
type DeliveryStatus int

const (
	StatusSending DeliveryStatus = iota
	StatusSent
	StatusDelivered
	StatusRead
	StatusFailed
)

func (s DeliveryStatus) String() string {
	switch s {
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// rank gives the forward ordering for non-terminal-failure states; Failed is
// reachable from Sending only and is otherwise excluded from the lattice.
var rank = map[DeliveryStatus]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// AdvanceStatus returns the next status to store for (current, attempted),
// ignoring any attempt that would move backward (§4.7).
func AdvanceStatus(current, attempted DeliveryStatus) DeliveryStatus {
	if attempted == StatusFailed {
		if current == StatusSending {
			return StatusFailed
		}
		return current
	}
	if rank[attempted] > rank[current] {
		return attempted
	}
	return current
}
