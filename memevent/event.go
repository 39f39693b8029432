package memevent

import (
	"github.com/Luluno01/better-vmi/emitter"
	"github.com/Luluno01/better-vmi/memaddr"
	"github.com/Luluno01/better-vmi/vmi"

	"github.com/apex/log"
)

// Key is the set of signals a per-GFN Event emits, the Go counterpart
// of original_source's MemEventKey enum.
type Key uint8

const (
	Before Key = iota
	After
	Unregistered
)

// OnEvent is the listener shape a caller subscribes on a Key.
type OnEvent func(ev *vmi.Event)

// activeSlots is the per-vCPU mapping from vCPU number to the Event
// currently mid-singlestep on it, the Go counterpart of
// original_source's CPUToEventMapping. A nil slot means no Event is
// active on that vCPU.
type activeSlots []*Event

// Event is a memory-access trap on a single guest frame number,
// grounded in original_source/include/guestutil/event/MemEvent.hh.
// It is created by Registry.RegisterForGFN and must not outlive its
// Registry.
type Event struct {
	gfn      memaddr.GFN
	okaySlat uint16
	trapSlat uint16

	registered        bool
	pendingUnregister bool

	regHandle vmi.RegisterHandle
	emit      *emitter.Emitter[Key, *vmi.Event]
}

// GFN returns the guest frame number this event watches.
func (e *Event) GFN() memaddr.GFN {
	return e.gfn
}

// Registered reports whether the event is still installed on the
// hypervisor.
func (e *Event) Registered() bool {
	return e.registered
}

// On registers a permanent listener for key.
func (e *Event) On(key Key, fn OnEvent) *emitter.Handle[*vmi.Event] {
	return e.emit.On(key, emitter.Listener[*vmi.Event](fn))
}

// Once registers a one-shot listener for key.
func (e *Event) Once(key Key, fn OnEvent) *emitter.Handle[*vmi.Event] {
	return e.emit.Once(key, emitter.Listener[*vmi.Event](fn))
}

// Off removes a listener previously returned by On/Once, or every
// listener for key if h is nil.
func (e *Event) Off(key Key, h *emitter.Handle[*vmi.Event]) {
	e.emit.Off(key, h)
}

// unregisterInternal implements the idempotent internal unregister of
// spec §4.8: mark unregistered, ask the hypervisor to clear the
// event, and fire UNREGISTERED from the clear callback.
func (e *Event) unregisterInternal(h vmi.Handle) {
	if !e.registered {
		return
	}

	e.registered = false

	if err := h.ClearEvent(e.regHandle, e.onCleared); err != nil {
		log.WithField("gfn", e.gfn).WithError(err).Warn("memevent: failed to clear event, ignoring")
	}
}

// onCleared runs once the hypervisor confirms the event is no longer
// live, emitting UNREGISTERED to the event's own listeners.
func (e *Event) onCleared() {
	if n := e.emit.Emit(Unregistered, nil); n == 0 {
		log.WithField("gfn", e.gfn).Warn("memevent: no listener for Unregistered; the registry is expected to free this event")
	}
}
