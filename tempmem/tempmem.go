// Package tempmem implements a scoped guest-memory edit: capture the
// bytes at an address before overwriting them, and restore them later.
// It is the Go counterpart of
// original_source/include/guestutil/TempMem.hh. The patch does not
// serialize against the guest — callers pause the guest or place the
// patch on a frame already trapped by memevent before calling Apply.
package tempmem

import "github.com/Luluno01/better-vmi/memaddr"

// MemoryIO is the narrow slice of vmi.Handle a Patch needs: reading
// and writing a variable-length buffer at a virtual address. It lives
// here, not in package vmi, following the same narrowing memaddr.
// Translator uses to avoid an import cycle.
type MemoryIO interface {
	ReadVABytes(vcpu int, va memaddr.VA, n int) ([]byte, error)
	WriteVABytes(vcpu int, va memaddr.VA, b []byte) error
}

// Patch is one outstanding guest-memory edit. The zero value is not
// usable; construct with New.
type Patch struct {
	io   MemoryIO
	vcpu int

	applied bool
	addr    memaddr.VA
	old     []byte
}

// New constructs a Patch that will read and write through io on vcpu's
// address space.
func New(io MemoryIO, vcpu int) *Patch {
	return &Patch{io: io, vcpu: vcpu}
}

// Apply reads the current contents at addr into the patch's saved
// buffer, then overwrites them with next. It returns the bytes that
// were there before the overwrite. Calling Apply twice without an
// intervening Undo returns ErrAlreadyApplied; addr == 0 returns
// ErrNullAddress.
func (p *Patch) Apply(addr memaddr.VA, next []byte) ([]byte, error) {
	if p.applied {
		return nil, ErrAlreadyApplied
	}

	if addr == 0 {
		return nil, ErrNullAddress
	}

	old, err := p.io.ReadVABytes(p.vcpu, addr, len(next))
	if err != nil {
		return nil, err
	}

	if err := p.io.WriteVABytes(p.vcpu, addr, next); err != nil {
		return nil, err
	}

	p.addr = addr
	p.old = old
	p.applied = true

	return old, nil
}

// GetOldVal returns the bytes saved by the most recent Apply, or nil
// if no apply is currently outstanding.
func (p *Patch) GetOldVal() []byte {
	if !p.applied {
		return nil
	}

	return p.old
}

// Undo writes the saved bytes back to addr and clears the outstanding
// apply, returning true. If no apply is outstanding, Undo does
// nothing and returns false.
func (p *Patch) Undo() (bool, error) {
	if !p.applied {
		return false, nil
	}

	if err := p.io.WriteVABytes(p.vcpu, p.addr, p.old); err != nil {
		return false, err
	}

	p.applied = false
	p.old = nil

	return true, nil
}

// Close undoes any outstanding apply, swallowing its error. It is the
// idiomatic stand-in for spec.md's "destruction invokes undo
// silently" — Go has no destructors, so callers that want the safety
// net defer Close explicitly, e.g. `patch := tempmem.New(h, 0); defer
// patch.Close()`.
func (p *Patch) Close() {
	_, _ = p.Undo() //nolint:errcheck
}
