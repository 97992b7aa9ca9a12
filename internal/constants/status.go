package constants

// ItemStatus represents the state of a work item.
//
//	Todo → InReview        (generation succeeded)
//	InReview → Done        (review accepted)
//	InReview → Todo        (review rejected, feedback attached)
//	Done → Todo            (manual reset)
type ItemStatus string

const (
	// StatusTodo marks an item waiting for generation.
	StatusTodo ItemStatus = "todo"

	// StatusInReview marks an item whose generated files passed their
	// checks and wait for the review gate.
	StatusInReview ItemStatus = "review"

	// StatusDone marks an accepted item.
	StatusDone ItemStatus = "done"
)

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status.
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInReview, StatusDone:
		return true
	}
	return false
}

// AllStatuses returns the statuses in lifecycle order.
func AllStatuses() []ItemStatus {
	return []ItemStatus{StatusTodo, StatusInReview, StatusDone}
}
