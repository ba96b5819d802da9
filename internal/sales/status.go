package sales

import "fmt"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// COMPLETED and CANCELLED are terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseStatus rejects anything outside the enumeration before storage is
// touched.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", &ValidationError{Msg: fmt.Sprintf("invalid status %q", s)}
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
