package schedule

const (
	// DefaultTimezone is used for events created without an explicit
	// timezone.
	DefaultTimezone = "UTC"

	// MaxOccurrencesPerCheck caps how many occurrences of a recurring
	// candidate are walked when sizing the conflict-detection horizon.
	// Rules are always bounded, but a large COUNT must not turn one
	// create call into an unbounded scan.
	MaxOccurrencesPerCheck = 500
)
