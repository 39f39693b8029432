package eventloop

import (
	"errors"
	"fmt"
)

var (
	// ErrListenFailed is the terminal error raised when the
	// introspection library's listen primitive itself fails.
	ErrListenFailed = errors.New("eventloop: listen failed")

	// ErrPauseFailed is the terminal error raised when pausing the
	// guest fails, or when listening fails while draining pending
	// events during a pause.
	ErrPauseFailed = errors.New("eventloop: pause drain listen failed")

	// ErrGetPendingFailed is the terminal error raised when the
	// pending-event count primitive reports failure (a negative
	// count).
	ErrGetPendingFailed = errors.New("eventloop: get pending event count failed")

	// ErrStopping is the terminal error raised when a stop was
	// requested while draining pending events for a pause; the
	// queued pause callback is not run.
	ErrStopping = errors.New("eventloop: stop requested during pause drain")

	// ErrBumpAfterError is returned immediately by Bump if called
	// again after a previous call already stored a terminal error.
	ErrBumpAfterError = errors.New("eventloop: bump called after a terminal error")

	// ErrPausePending is returned by SchedulePause when another
	// pause callback is already queued.
	ErrPausePending = errors.New("eventloop: a pause callback is already pending")
)

// PauseCallbackFailed wraps a panic or error raised by a pause
// callback scheduled via SchedulePause. It is a terminal error: Bump
// returns it and stores it so subsequent calls return
// ErrBumpAfterError.
type PauseCallbackFailed struct {
	Who string
	Err error
}

func (e *PauseCallbackFailed) Error() string {
	return fmt.Sprintf("eventloop: pause callback %q failed: %v", e.Who, e.Err)
}

func (e *PauseCallbackFailed) Unwrap() error { return e.Err }
