package gtg

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTarget is returned before any request is made when the
	// application id or the poll budget cannot be used.
	ErrInvalidTarget = errors.New("invalid gtg target")
	// ErrTimedOut matches every *TimeoutError.
	ErrTimedOut = errors.New("gtg timed out")
)

// TimeoutError reports an exhausted poll budget.
type TimeoutError struct {
	App      string
	Attempts int
	Elapsed  time.Duration
	Last     string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s did not become good to go after %v (%d attempts)",
		e.App, e.Elapsed.Round(time.Millisecond), e.Attempts)
	if e.Last != "" {
		msg += ", last result: " + e.Last
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimedOut
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTarget, fmt.Sprintf(format, args...))
}
