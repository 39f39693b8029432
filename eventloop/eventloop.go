// Package eventloop drives the introspection library's synchronous
// listen primitive and gives the rest of the core a single place to
// queue structural changes ("pause-and-run") and shutdown requests
// without racing in-flight event delivery.
package eventloop

import (
	"fmt"
	"time"
)

// ListenTimeout is the fixed timeout passed to every call into
// EventsListen, both for the main loop and for draining pending
// events during a pause. spec.md fixes this at 500ms; it is not
// configurable because the core reads no configuration.
const ListenTimeout = 500 * time.Millisecond

// Listener is the slice of the introspection library the loop needs:
// pause the guest and drive its synchronous event delivery. It has no
// resume operation; the loop never resumes the guest itself.
type Listener interface {
	PauseVM() error
	EventsPending() (int, error)
	EventsListen(timeout time.Duration) error
}

// PauseCallback is work queued to run once the guest is paused and
// its pending events drained. It is expected to arrange resumption
// itself (e.g. by calling the VM handle's ResumeVM) or to call Stop;
// the loop never resumes the guest on the callback's behalf.
type PauseCallback func() error

// Loop is a single-threaded cooperative event pump bound to one
// guest. The zero value is not usable; construct with New.
type Loop struct {
	vmi Listener

	hasPending bool
	pendingCB  PauseCallback
	pendingWho string

	stopReason string
	err        error
}

// New binds a Loop to vmi for its lifetime.
func New(vmi Listener) *Loop {
	return &Loop{vmi: vmi}
}

// Bump runs the loop until a stop is requested or a terminal error
// occurs, returning the error (nil on a clean stop). Calling Bump
// again after it has returned a non-nil error returns
// ErrBumpAfterError without touching the guest.
func (l *Loop) Bump() error {
	if l.err != nil {
		return ErrBumpAfterError
	}

	for {
		if l.stopReason != "" {
			return nil
		}

		if l.hasPending {
			cb, who := l.pendingCB, l.pendingWho
			l.hasPending = false
			l.pendingCB = nil
			l.pendingWho = ""

			if err := l.handlePause(cb, who); err != nil {
				l.err = err
				return err
			}

			continue
		}

		if err := l.vmi.EventsListen(ListenTimeout); err != nil {
			l.err = fmt.Errorf("%w: %v", ErrListenFailed, err)
			return l.err
		}
	}
}

// handlePause implements spec.md §4.3's pause handler: pause the
// guest, drain pending events, then run cb. The guest is not resumed
// afterwards; that is cb's job.
func (l *Loop) handlePause(cb PauseCallback, who string) error {
	if err := l.vmi.PauseVM(); err != nil {
		return fmt.Errorf("%w: %v", ErrPauseFailed, err)
	}

	for {
		n, err := l.vmi.EventsPending()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGetPendingFailed, err)
		}

		if n < 0 {
			return fmt.Errorf("%w: negative count %d", ErrGetPendingFailed, n)
		}

		if n == 0 {
			break
		}

		if err := l.vmi.EventsListen(ListenTimeout); err != nil {
			return fmt.Errorf("%w: %v", ErrPauseFailed, err)
		}

		if l.stopReason != "" {
			return ErrStopping
		}
	}

	if l.stopReason != "" {
		return ErrStopping
	}

	if err := safeCall(cb); err != nil {
		return &PauseCallbackFailed{Who: who, Err: err}
	}

	return nil
}

// safeCall invokes cb, converting a panic into an error so a
// misbehaving callback can never bring down the whole loop silently;
// spec.md requires any exception it raises be wrapped as
// PauseCallbackFailed.
func safeCall(cb PauseCallback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return cb()
}

// SchedulePause queues cb to run the next time Bump reaches a pause
// point. who identifies the request for logging/diagnostics and ends
// up in a resulting PauseCallbackFailed. Only one pause request may be
// in flight at a time.
func (l *Loop) SchedulePause(cb PauseCallback, who string) error {
	if l.hasPending {
		return ErrPausePending
	}

	l.hasPending = true
	l.pendingCB = cb
	l.pendingWho = who

	return nil
}

// Stop requests the loop to exit. The first call wins; later calls
// are ignored. A stop may take up to one listen timeout (or the
// current drain) to be observed, per the loop's concurrency contract.
func (l *Loop) Stop(who string) {
	if l.stopReason == "" {
		l.stopReason = who
	}
}

// HasError reports whether Bump has stored a terminal error.
func (l *Loop) HasError() bool {
	return l.err != nil
}

// Err returns the terminal error Bump stored, or nil.
func (l *Loop) Err() error {
	return l.err
}

// StopRequestedBy returns the reason passed to the first Stop call,
// or the empty string if no stop has been requested yet.
func (l *Loop) StopRequestedBy() string {
	return l.stopReason
}
