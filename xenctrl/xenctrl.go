// Package xenctrl describes the contract better-vmi's memevent
// registry consumes from the hypervisor's control interface for
// altp2m enablement only. Opening the handle, and everything else the
// real control interface exposes, is an external collaborator out of
// scope for this module.
package xenctrl

// Altp2mState is a per-domain altp2m parameter value.
type Altp2mState uint8

const (
	// Disabled means altp2m has never been turned on for the domain.
	Disabled Altp2mState = iota

	// External means altp2m is enabled and SLAT views are managed by
	// an external tool (us) rather than the guest itself.
	External

	// Limited means altp2m was enabled in a mode that this module
	// cannot drive; memevent.Registry.Init treats this as fatal and
	// asks for a reboot.
	Limited
)

func (s Altp2mState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case External:
		return "external"
	case Limited:
		return "limited"
	default:
		return "unknown"
	}
}

// Handle is one open hypervisor control session, scoped to altp2m
// enablement.
type Handle interface {
	// Close releases the control handle. Errors are logged by
	// callers, not propagated, since Close only ever runs during
	// teardown.
	Close() error

	// GetAltp2mState reads the domain's current altp2m parameter.
	GetAltp2mState(domid uint32) (Altp2mState, error)

	// SetAltp2mState writes the domain's altp2m parameter.
	SetAltp2mState(domid uint32, want Altp2mState) error
}

// Opener opens a new control handle. memevent.Registry.Init calls it
// exactly once; the real implementation lives with the caller, since
// opening the handle is the out-of-scope primitive.
type Opener func() (Handle, error)
