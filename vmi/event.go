package vmi

import (
	"fmt"

	"github.com/Luluno01/better-vmi/memaddr"
)

// EventType is the tagged-variant discriminant of Event, mirroring
// libvmi's vmi_event_type_t.
//
//go:generate stringer -type=EventType
type EventType uint8

const (
	EventInvalid EventType = iota
	EventMemory
	EventRegister
	EventSinglestep
	EventInterrupt
	EventGuestRequest
	EventCPUID
	EventDebugException
	EventPrivilegedCall
	EventDescriptorAccess
	EventFailedEmulation
	EventDomainWatch
)

// ResponseFlags is the bitmask a capture-all callback returns to tell
// the library what to do before resuming the guest.
type ResponseFlags uint32

const (
	ResponseNone ResponseFlags = 0

	// ResponseEmulate asks the library to emulate rather than retire
	// the trapped instruction natively.
	ResponseEmulate ResponseFlags = 1 << iota

	// ResponseSetEmulInsn asks the library to use Event.EmulInsn as
	// the bytes to emulate in place of the trapped instruction.
	ResponseSetEmulInsn

	// ResponseToggleSinglestep arms (or disarms, on the next
	// delivery) single-stepping for the vCPU that raised the event.
	ResponseToggleSinglestep

	// ResponseSetSlat asks the library to switch the vCPU's active
	// SLAT view to Event.NextSlatID before resuming.
	ResponseSetSlat
)

// MemAccess is a bitmask of guest memory access types, mirroring
// libvmi's vmi_mem_access_t.
type MemAccess uint8

const (
	AccessN MemAccess = 0
	AccessR MemAccess = 1 << 0
	AccessW MemAccess = 1 << 1
	AccessX MemAccess = 1 << 2

	AccessRW  = AccessR | AccessW
	AccessRX  = AccessR | AccessX
	AccessWX  = AccessW | AccessX
	AccessRWX = AccessR | AccessW | AccessX
)

func (a MemAccess) String() string {
	if a == AccessN {
		return "N"
	}

	s := ""
	if a&AccessR != 0 {
		s += "R"
	}

	if a&AccessW != 0 {
		s += "W"
	}

	if a&AccessX != 0 {
		s += "X"
	}

	return s
}

// InterruptKind distinguishes the sub-cases of an interrupt event,
// mirroring libvmi's interrupts_t.
type InterruptKind uint8

const (
	IntInvalid InterruptKind = iota
	Int3
	IntNext
)

// InterruptEvent is the INT3-specific payload of an Event, named
// after interrupt_event_t in original_source/include/pretty-print.hh.
type InterruptEvent struct {
	Kind       InterruptKind
	GLA        memaddr.VA
	GFN        memaddr.GFN
	Offset     uint64
	InsnLength uint8

	// Reinject tells the library whether to deliver the interrupt to
	// the guest as if it had never been observed (1) or to suppress
	// it because the core handled it (0).
	Reinject uint8
}

// MemAccessEvent is the memory-access-specific payload of an Event,
// named after mem_access_event_t.
type MemAccessEvent struct {
	GFN       memaddr.GFN
	InAccess  MemAccess
	OutAccess MemAccess
	GLAValid  bool
	GLA       memaddr.VA
	Offset    uint64
}

// Event is the single delivery type for every event kind the core
// registers, matching libvmi's single vmi_event_t struct with a
// tagged union of sub-payloads rather than per-kind Go types — the
// core always receives the same shape and switches on Type.
type Event struct {
	Type EventType

	// Data is the envelope attached at registration time, recovered
	// via envelope.FromEvent.
	Data any

	SlatID     uint16
	NextSlatID uint16
	VCPUID     int

	Interrupt InterruptEvent
	Mem       MemAccessEvent

	// EmulInsn is the 15-byte buffer a capture-all callback may fill
	// in together with ResponseSetEmulInsn to have the library
	// execute those bytes in place of the trapped instruction.
	EmulInsn [15]byte
}

func (e *Event) String() string {
	switch e.Type {
	case EventInterrupt:
		return fmt.Sprintf("Event{Interrupt gla=%#x gfn=%#x reinject=%d}",
			uint64(e.Interrupt.GLA), uint64(e.Interrupt.GFN), e.Interrupt.Reinject)
	case EventMemory:
		return fmt.Sprintf("Event{Memory gfn=%#x in=%s out=%s}",
			uint64(e.Mem.GFN), e.Mem.InAccess, e.Mem.OutAccess)
	case EventSinglestep:
		return fmt.Sprintf("Event{Singlestep vcpu=%d}", e.VCPUID)
	default:
		return fmt.Sprintf("Event{%s}", e.Type)
	}
}
