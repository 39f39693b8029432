package memevent

import (
	"errors"
	"fmt"

	"github.com/Luluno01/better-vmi/memaddr"
)

// Operation names the init step a RegistryInit error occurred at,
// mirroring original_source/include/guestutil/event/MemEventRegistry.hh's
// Operation enum.
type Operation uint8

const (
	OpReinitCheck Operation = iota
	OpOpenControl
	OpRegisterSinglestep
	OpGetAltp2m
	OpSetAltp2m
	OpSetDomainState
	OpCreateSlat
	OpSwitchSlat
)

func (o Operation) String() string {
	switch o {
	case OpReinitCheck:
		return "reinit-check"
	case OpOpenControl:
		return "open-control"
	case OpRegisterSinglestep:
		return "register-singlestep"
	case OpGetAltp2m:
		return "get-altp2m"
	case OpSetAltp2m:
		return "set-altp2m"
	case OpSetDomainState:
		return "set-domain-state"
	case OpCreateSlat:
		return "create-slat"
	case OpSwitchSlat:
		return "switch-slat"
	default:
		return "unknown"
	}
}

// RegistryInit is returned by Registry.Init when any of its five
// setup steps fails.
type RegistryInit struct {
	Op  Operation
	Msg string
}

func (e *RegistryInit) Error() string {
	return fmt.Sprintf("memevent: registry init failed at %s: %s", e.Op, e.Msg)
}

// ErrFrameAlreadyRegistered is returned by RegisterForGFN when a
// memory event is already registered on the requested frame.
var ErrFrameAlreadyRegistered = errors.New("memevent: memory event already registered on this frame")

// RegistrationFailed is returned by RegisterForGFN when the
// hypervisor rejects registration of the memory-access event itself,
// typically because events were never initialized on the handle or
// another memory event already owns the frame.
type RegistrationFailed struct {
	GFN memaddr.GFN
	Err error
}

func (e *RegistrationFailed) Error() string {
	return fmt.Sprintf("memevent: failed to register memory event on gfn %#x: %v", uint64(e.GFN), e.Err)
}

func (e *RegistrationFailed) Unwrap() error { return e.Err }
