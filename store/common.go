package store

// Status is the lifecycle state of an event.
//
// Allowed transitions: TENTATIVE -> CONFIRMED, TENTATIVE -> CANCELLED,
// CONFIRMED -> CANCELLED. There is no transition out of CANCELLED; cancelled
// rows are retained for audit and id stability, never physically deleted.
type Status string

const (
	Tentative Status = "TENTATIVE"
	Confirmed Status = "CONFIRMED"
	Cancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// Priority orders events for conflict severity classification.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank returns the ordinal position of the priority, higher meaning more
// important. Unknown values rank as NORMAL.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return 1
	}
}

// BlockKind distinguishes explicit availability blocks.
type BlockKind string

const (
	// BlockBusy marks a window where the person is unavailable regardless
	// of confirmed events.
	BlockBusy BlockKind = "BUSY"
	// BlockFreePreference marks a window the person prefers for new
	// events. It feeds slot ranking and never implies busy time.
	BlockFreePreference BlockKind = "FREE_PREFERENCE"
)
