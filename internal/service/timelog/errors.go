package timelog

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidTravelRequest = errors.New("specify a valid event or request return to origin")
)

// NotFoundError reports a lookup for an identifier that is not in the log.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrEventNotFound
}

// ValidationError reports a filter value that could not be understood.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS or RFC 3339", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
