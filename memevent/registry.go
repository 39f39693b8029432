// Package memevent implements the two-SLAT-view memory-access-trap
// protocol: a before handler runs under a restricted "trap" view,
// relaxes the frame to the "okay" view and arms a single step, and a
// catch-all single-step handler runs after the guest has retired the
// access, then flips the frame back. Grounded in
// original_source/altp2m-mem-event.cc and
// original_source/include/guestutil/event/{MemEvent,MemEventRegistry}.hh.
package memevent

import (
	"github.com/Luluno01/better-vmi/emitter"
	"github.com/Luluno01/better-vmi/envelope"
	"github.com/Luluno01/better-vmi/memaddr"
	"github.com/Luluno01/better-vmi/vmi"
	"github.com/Luluno01/better-vmi/xenctrl"

	"github.com/apex/log"
)

// Registry owns every memory event on one guest, the trap/okay SLAT
// pair, and the single catch-all single-step event they share.
type Registry struct {
	vmiHandle vmi.Handle
	open      xenctrl.Opener
	domid     uint32

	ctrl xenctrl.Handle

	okaySlat uint16
	trapSlat uint16

	active         activeSlots
	activeSentinel uintptr
	eventSentinel  uintptr

	ssHandle vmi.RegisterHandle

	events map[memaddr.GFN]*Event

	unregistered *emitter.Emitter[uint8, memaddr.GFN]

	initialized bool
}

// NewRegistry constructs a Registry for a guest with nCPUs vCPUs.
// open is the hypervisor control interface's opener; Init calls it
// exactly once.
func NewRegistry(h vmi.Handle, open xenctrl.Opener, domid uint32, nCPUs int) *Registry {
	return &Registry{
		vmiHandle:      h,
		open:           open,
		domid:          domid,
		active:         make(activeSlots, nCPUs),
		activeSentinel: envelope.NewSentinel(),
		eventSentinel:  envelope.NewSentinel(),
		events:         make(map[memaddr.GFN]*Event),
		unregistered:   emitter.New[uint8, memaddr.GFN](),
	}
}

// OnUnregistered subscribes fn to the registry-level
// MEM_EVENT_UNREGISTERED(gfn) signal emitted once an event removed via
// UnregisterForGFN has fully drained.
func (r *Registry) OnUnregistered(fn emitter.Listener[memaddr.GFN]) *emitter.Handle[memaddr.GFN] {
	return r.unregistered.On(0, fn)
}

// Init performs the five-step setup sequence of spec §4.7, in order,
// returning a *RegistryInit naming the step that failed.
func (r *Registry) Init() error {
	if r.initialized {
		return &RegistryInit{Op: OpReinitCheck, Msg: "registry is already initialized"}
	}

	ctrl, err := r.open()
	if err != nil {
		return &RegistryInit{Op: OpOpenControl, Msg: err.Error()}
	}

	r.ctrl = ctrl

	ssHandle, err := r.vmiHandle.RegisterSinglestepEvent(envelope.New(r.activeSentinel, &r.active), r.handleSinglestep)
	if err != nil {
		r.closeCtrl()
		return &RegistryInit{Op: OpRegisterSinglestep, Msg: err.Error()}
	}

	r.ssHandle = ssHandle

	if err := r.enableAltp2m(); err != nil {
		r.clearSinglestep()
		r.closeCtrl()

		return err
	}

	trapSlat, err := r.vmiHandle.CreateSlatView()
	if err != nil {
		r.clearSinglestep()
		r.closeCtrl()

		return &RegistryInit{Op: OpCreateSlat, Msg: err.Error()}
	}

	if err := r.vmiHandle.SwitchSlatView(trapSlat); err != nil {
		r.vmiHandle.DestroySlatView(trapSlat) //nolint:errcheck
		r.clearSinglestep()
		r.closeCtrl()

		return &RegistryInit{Op: OpSwitchSlat, Msg: err.Error()}
	}

	r.okaySlat = 0
	r.trapSlat = trapSlat
	r.initialized = true

	return nil
}

func (r *Registry) enableAltp2m() error {
	state, err := r.ctrl.GetAltp2mState(r.domid)
	if err != nil {
		return &RegistryInit{Op: OpGetAltp2m, Msg: err.Error()}
	}

	switch state {
	case xenctrl.Limited:
		return &RegistryInit{Op: OpSetAltp2m, Msg: "altp2m is limited for this domain; reboot the guest to change it"}
	case xenctrl.Disabled:
		if err := r.ctrl.SetAltp2mState(r.domid, xenctrl.External); err != nil {
			return &RegistryInit{Op: OpSetAltp2m, Msg: err.Error()}
		}
	case xenctrl.External:
		// Already in the mode this registry needs.
	}

	if err := r.vmiHandle.SetAltp2mDomainState(true); err != nil {
		return &RegistryInit{Op: OpSetDomainState, Msg: err.Error()}
	}

	return nil
}

func (r *Registry) closeCtrl() {
	if r.ctrl == nil {
		return
	}

	if err := r.ctrl.Close(); err != nil {
		log.WithError(err).Warn("memevent: failed to close control handle, ignoring")
	}

	r.ctrl = nil
}

func (r *Registry) clearSinglestep() {
	if r.ssHandle == nil {
		return
	}

	if err := r.vmiHandle.ClearEvent(r.ssHandle, func() {}); err != nil {
		log.WithError(err).Warn("memevent: failed to clear singlestep event, ignoring")
	}

	r.ssHandle = nil
}

// Close tears down the registry in the order (b) switch back to the
// okay view and destroy the trap view, (c) clear the single-step
// event, (d) close the control handle — mirroring
// MemEventRegistry's destructor. Unregistering individual memory
// events first, and draining the loop so their clears land, is the
// caller's responsibility; Close only warns about leftovers.
func (r *Registry) Close() {
	if err := r.vmiHandle.SwitchSlatView(r.okaySlat); err != nil {
		log.WithError(err).Warn("memevent: failed to switch back to the okay SLAT view, ignoring")
	}

	if r.trapSlat != 0 {
		if err := r.vmiHandle.DestroySlatView(r.trapSlat); err != nil {
			log.WithError(err).Warn("memevent: failed to destroy the trap SLAT view, ignoring")
		}

		r.trapSlat = 0
	}

	r.clearSinglestep()

	r.closeCtrl()

	for vcpu, ev := range r.active {
		if ev != nil {
			log.WithField("vcpu", vcpu).WithField("gfn", ev.gfn).
				Warn("memevent: registry closed with an active memory event awaiting singlestep")
		}
	}

	for gfn, ev := range r.events {
		if ev.registered {
			log.WithField("gfn", gfn).
				Warn("memevent: registry closed with a still-registered memory event")
		}
	}
}

// RegisterForGFN installs a memory-access event on gfn, intercepting
// read and write accesses on the trap view.
func (r *Registry) RegisterForGFN(gfn memaddr.GFN) (*Event, error) {
	if _, exists := r.events[gfn]; exists {
		return nil, ErrFrameAlreadyRegistered
	}

	ev := &Event{
		gfn:      gfn,
		okaySlat: r.okaySlat,
		trapSlat: r.trapSlat,
		emit:     emitter.New[Key, *vmi.Event](),
	}

	regHandle, err := r.vmiHandle.RegisterMemEvent(gfn, r.trapSlat, vmi.AccessRW, envelope.New(r.eventSentinel, ev), r.handleBefore)
	if err != nil {
		return nil, &RegistrationFailed{GFN: gfn, Err: err}
	}

	ev.regHandle = regHandle
	ev.registered = true
	r.events[gfn] = ev

	return ev, nil
}

// UnregisterForGFN asynchronously removes the memory event on gfn.
// The event is not actually removed from the mapping until the
// hypervisor confirms the clear, on the single-step or clear path;
// that removal also emits MEM_EVENT_UNREGISTERED(gfn).
func (r *Registry) UnregisterForGFN(gfn memaddr.GFN) bool {
	ev, ok := r.events[gfn]
	if !ok {
		return false
	}

	ev.Once(Unregistered, func(*vmi.Event) {
		delete(r.events, gfn)
		r.unregistered.Emit(0, gfn)
	})

	ev.pendingUnregister = true

	return true
}

// handleBefore is the catch-all before handler of spec §4.8: emit
// BEFORE, mark the event active on this vCPU, relax to the okay view,
// and arm single-step.
func (r *Registry) handleBefore(ev *vmi.Event) vmi.ResponseFlags {
	mevent, err := envelope.FromEvent[Event](r.eventSentinel, ev.Data)
	if err != nil {
		log.WithError(err).Warn("memevent: before handler could not recover its event")
		return vmi.ResponseNone
	}

	mevent.emit.Emit(Before, ev)

	r.active[ev.VCPUID] = mevent
	ev.NextSlatID = mevent.okaySlat

	return vmi.ResponseSetSlat | vmi.ResponseToggleSinglestep
}

// handleSinglestep is the catch-all after handler of spec §4.8: emit
// AFTER, clear the active slot, then either finish an unregistration
// or switch the vCPU back to the trap view. A single-step on a vCPU
// with no active memory event is taken to belong to some other
// single-step user: it is logged and answered with ResponseNone.
func (r *Registry) handleSinglestep(ev *vmi.Event) vmi.ResponseFlags {
	active, err := envelope.FromEvent[activeSlots](r.activeSentinel, ev.Data)
	if err != nil {
		log.WithError(err).Warn("memevent: singlestep handler could not recover the active-slot vector")
		return vmi.ResponseNone
	}

	mevent := (*active)[ev.VCPUID]
	if mevent == nil {
		log.WithField("vcpu", ev.VCPUID).Warn("memevent: singlestep with no active memory event, assuming a foreign single-step user")
		return vmi.ResponseNone
	}

	mevent.emit.Emit(After, ev)
	(*active)[ev.VCPUID] = nil

	if mevent.pendingUnregister {
		mevent.unregisterInternal(r.vmiHandle)
		return vmi.ResponseToggleSinglestep
	}

	ev.NextSlatID = mevent.trapSlat

	return vmi.ResponseSetSlat | vmi.ResponseToggleSinglestep
}
