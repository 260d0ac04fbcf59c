package seating

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed request or malformed reference data
// (negative bench counts and the like), rejected before anything is written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a missing session, room, student or plan.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// CapacityError reports that the selected students exceed the seats available
// under the session's exam type. Recoverable: the caller adjusts the room or
// student selection and retries.
type CapacityError struct {
	StudentsSelected int
	TotalSeats       int
	TotalBenches     int
	NeededBenches    int
	Deficit          int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: %d students, %d seats, deficit %d (need %d benches, have %d)",
		e.StudentsSelected, e.TotalSeats, e.Deficit, e.NeededBenches, e.TotalBenches)
}

// ConflictError reports state that blocks the request: plans already exist
// for the session, or a prerequisite selection is missing. Recoverable by
// caller action.
type ConflictError struct {
	Message       string
	DaysWithPlans []int
}

func (e *ConflictError) Error() string {
	if len(e.DaysWithPlans) > 0 {
		days := make([]string, len(e.DaysWithPlans))
		for i, day := range e.DaysWithPlans {
			days[i] = fmt.Sprintf("Day %d", day)
		}
		return fmt.Sprintf("a plan already exists for %s; delete the old plans before regenerating", strings.Join(days, ", "))
	}
	return e.Message
}

// PersistenceError wraps a storage-layer failure. Plan writes are
// single-document inserts, so a failed write leaves no partial plan behind.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
