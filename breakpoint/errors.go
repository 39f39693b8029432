package breakpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySet is returned by SetBreakpoint when a breakpoint is
	// already registered at the requested address.
	ErrAlreadySet = errors.New("breakpoint: already set at this address")

	// ErrEventAlreadyRegistered is returned by RegisterEvent when
	// called more than once on the same Registry.
	ErrEventAlreadyRegistered = errors.New("breakpoint: INT3 event already registered")

	// ErrEventNotRegistered is returned by UnregisterEvent when no
	// event has been registered yet.
	ErrEventNotRegistered = errors.New("breakpoint: INT3 event not registered")
)

// DisableAllFailed is returned by Registry.DisableAll when one or more
// breakpoints could not be disabled. Every breakpoint is still
// attempted regardless of earlier failures.
type DisableAllFailed struct {
	Inner []error
}

func (e *DisableAllFailed) Error() string {
	return fmt.Sprintf("breakpoint: failed to disable %d breakpoint(s): %v", len(e.Inner), e.Inner[0])
}

func (e *DisableAllFailed) Unwrap() []error {
	return e.Inner
}
