// Package breakpoint implements INT3-based software breakpoints on
// top of a vmi.Handle: a single capture-all interrupt event dispatches
// to per-address handlers, and on every hit the saved original
// instruction is handed to the hypervisor to emulate while the INT3
// byte stays in place. Grounded in
// original_source/include/guestutil/breakpoint/Breakpoint.hh and
// BreakpointRegistry.hh.
package breakpoint

import (
	"github.com/Luluno01/better-vmi/disasm"
	"github.com/Luluno01/better-vmi/envelope"
	"github.com/Luluno01/better-vmi/memaddr"
	"github.com/Luluno01/better-vmi/vmi"

	"github.com/apex/log"
)

// int3 is the x86 software breakpoint opcode.
const int3 = 0xCC

// savedLen is the number of leading bytes saved before injecting int3,
// long enough to hold the longest x86-64 instruction (15 bytes).
const savedLen = 15

// OnHit is invoked once per breakpoint hit, before the hypervisor
// re-executes the original instruction under emulation.
type OnHit func(ev *vmi.Event)

// Breakpoint is a single software breakpoint at a kernel virtual
// address. The invariant is: Enabled() is true if and only if the
// byte at Addr() is 0xCC and saved holds the pre-injection bytes.
type Breakpoint struct {
	handle  vmi.Handle
	vcpu    int
	addr    memaddr.VA
	saved   [savedLen]byte
	enabled bool
	onHit   OnHit
}

// Addr returns the breakpoint's kernel virtual address.
func (b *Breakpoint) Addr() memaddr.VA {
	return b.addr
}

// Enabled reports whether the INT3 byte is currently injected.
func (b *Breakpoint) Enabled() bool {
	return b.enabled
}

// Enable saves the instruction currently at addr and overwrites its
// first byte with int3. Calling Enable while already enabled
// re-injects over whatever byte is currently there, which is only
// safe immediately after construction or a matching Disable.
func (b *Breakpoint) Enable() error {
	saved, err := b.handle.ReadVABytes(b.vcpu, b.addr, savedLen)
	if err != nil {
		return err
	}

	copy(b.saved[:], saved)

	if err := b.handle.WriteVA8(b.vcpu, b.addr, int3); err != nil {
		return err
	}

	b.enabled = true

	return nil
}

// Disable writes the saved original byte back, if enabled. Disabling
// an already-disabled breakpoint is a no-op.
func (b *Breakpoint) Disable() error {
	if !b.enabled {
		return nil
	}

	if err := b.handle.WriteVA8(b.vcpu, b.addr, b.saved[0]); err != nil {
		return err
	}

	b.enabled = false

	return nil
}

// Registry owns every breakpoint on one guest and the single
// catch-all INT3 event they share. RegisterEvent attaches an envelope
// pointing at the Registry itself, mirroring original_source's
// EventData<BreakpointRegistry>.
type Registry struct {
	handle      vmi.Handle
	breakpoints map[memaddr.VA]*Breakpoint
	sentinel    uintptr
	regHandle   vmi.RegisterHandle
	registered  bool
}

// NewRegistry constructs a Registry bound to h. RegisterEvent must be
// called before any breakpoint hit can be observed.
func NewRegistry(h vmi.Handle) *Registry {
	return &Registry{
		handle:      h,
		breakpoints: make(map[memaddr.VA]*Breakpoint),
		sentinel:    envelope.NewSentinel(),
	}
}

// RegisterEvent installs the single catch-all INT3 handler. It must
// be called exactly once; calling it again returns
// ErrEventAlreadyRegistered.
func (r *Registry) RegisterEvent() error {
	if r.registered {
		return ErrEventAlreadyRegistered
	}

	env := envelope.New(r.sentinel, r)

	h, err := r.handle.RegisterInterruptEvent(env, r.handleInt3)
	if err != nil {
		return err
	}

	r.regHandle = h
	r.registered = true

	return nil
}

// UnregisterEvent requests the hypervisor clear the INT3 event.
func (r *Registry) UnregisterEvent() error {
	if !r.registered {
		return ErrEventNotRegistered
	}

	if err := r.handle.ClearEvent(r.regHandle, func() {}); err != nil {
		return err
	}

	r.regHandle = nil
	r.registered = false

	return nil
}

// SetBreakpoint inserts a new, disabled breakpoint at addr. It fails
// with ErrAlreadySet if a breakpoint for addr already exists.
func (r *Registry) SetBreakpoint(addr memaddr.VA, onHit OnHit) (*Breakpoint, error) {
	if _, exists := r.breakpoints[addr]; exists {
		return nil, ErrAlreadySet
	}

	bp := &Breakpoint{handle: r.handle, addr: addr, onHit: onHit}
	r.breakpoints[addr] = bp

	return bp, nil
}

// UnsetBreakpoint disables and removes the breakpoint at addr, if
// any. It is a no-op if no breakpoint is registered at addr.
func (r *Registry) UnsetBreakpoint(addr memaddr.VA) error {
	bp, ok := r.breakpoints[addr]
	if !ok {
		return nil
	}

	if err := bp.Disable(); err != nil {
		return err
	}

	delete(r.breakpoints, addr)

	return nil
}

// DisableAll disables every registered breakpoint, attempting all of
// them even if some fail, and returns a *DisableAllFailed collecting
// every write error.
func (r *Registry) DisableAll() error {
	var errs []error

	for _, bp := range r.breakpoints {
		if err := bp.Disable(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &DisableAllFailed{Inner: errs}
	}

	return nil
}

// handleInt3 is the capture-all callback wired at RegisterEvent time.
// It implements the not-found / found-disabled / found-enabled
// three-way split: an INT3 that is not ours, or belongs to a
// breakpoint that is mid-disable, is reinjected untouched.
func (r *Registry) handleInt3(ev *vmi.Event) vmi.ResponseFlags {
	bp, ok := r.breakpoints[ev.Interrupt.GLA]
	if !ok {
		ev.Interrupt.Reinject = 1
		return vmi.ResponseNone
	}

	if !bp.enabled {
		ev.Interrupt.Reinject = 1
		return vmi.ResponseNone
	}

	ev.Interrupt.Reinject = 0

	bp.onHit(ev)

	log.WithField("addr", bp.addr).
		WithField("insn", disasm.BreakpointSite(bp.saved, uint64(bp.addr))).
		Debug("breakpoint: hit")

	ev.EmulInsn = bp.saved

	return vmi.ResponseSetEmulInsn
}
