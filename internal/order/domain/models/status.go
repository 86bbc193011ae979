package models

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// rank orders the forward path; Cancelled sits outside it.
var rank = map[Status]int{
	StatusPending:   1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	switch st {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether an order with this status leaves the active set.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition allows forward moves along Pending -> Preparing -> Ready -> Completed,
// skipping steps included, and cancellation of any non-terminal order.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, okFrom := rank[s]
	to, okTo := rank[next]
	return okFrom && okTo && to > from
}
