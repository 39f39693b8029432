// Package vmi describes the contract better-vmi's core consumes from
// the introspection library (e.g. LibVMI) that talks to the
// hypervisor. The library itself is an external collaborator out of
// scope for this module: init/destroy, pause/resume, register access,
// memory access, symbol and offset lookup, event registration and
// delivery, and SLAT view management all belong to it. This package
// only pins down the shape of that contract so the core can be built
// and tested against it.
package vmi

import (
	"time"

	"github.com/Luluno01/better-vmi/memaddr"
)

// RegisterName identifies a vCPU register understood by the
// underlying library (e.g. "rip", "cr3", "gdtr_base").
type RegisterName string

// Handle is one live guest's introspection session. All core objects
// borrow a Handle for their lifetime; none may outlive it.
type Handle interface {
	memaddr.Translator

	// DomainID returns the hypervisor's numeric id for this guest.
	DomainID() uint32

	// VCPUCount returns the number of virtual CPUs the guest has.
	VCPUCount() (int, error)

	// PauseVM and ResumeVM pause/resume every vCPU of the guest.
	PauseVM() error
	ResumeVM() error

	// GetVCPURegister reads one register on one vCPU.
	GetVCPURegister(vcpu int, reg RegisterName) (uint64, error)

	// TranslateKernelSymbol resolves a kernel symbol name to its
	// virtual address (e.g. "__x64_sys_write", "init_task").
	TranslateKernelSymbol(name string) (memaddr.VA, error)

	// GetOffset resolves a named structure-field offset from the
	// library's configured guest profile (e.g. "linux_name").
	GetOffset(name string) (uint64, error)

	// ReadVA8/16/32/64 read a fixed-width little-endian value from
	// the given vCPU's virtual address space. pid 0 means the kernel
	// address space.
	ReadVA8(pid int, va memaddr.VA) (uint8, error)
	ReadVA16(pid int, va memaddr.VA) (uint16, error)
	ReadVA32(pid int, va memaddr.VA) (uint32, error)
	ReadVA64(pid int, va memaddr.VA) (uint64, error)

	// WriteVA8/16/32/64 are the write-side counterparts of the
	// ReadVA* family.
	WriteVA8(pid int, va memaddr.VA, v uint8) error
	WriteVA16(pid int, va memaddr.VA, v uint16) error
	WriteVA32(pid int, va memaddr.VA, v uint32) error
	WriteVA64(pid int, va memaddr.VA, v uint64) error

	// ReadVABytes/WriteVABytes transfer a variable-length buffer.
	ReadVABytes(pid int, va memaddr.VA, n int) ([]byte, error)
	WriteVABytes(pid int, va memaddr.VA, b []byte) error

	// ReadVACStr reads a NUL-terminated string.
	ReadVACStr(pid int, va memaddr.VA) (string, error)

	// RegisterInterruptEvent installs a single catch-all INT3 event
	// across the whole domain. data is the caller's envelope,
	// returned verbatim on every Event delivered through cb.
	RegisterInterruptEvent(data any, cb EventCallback) (RegisterHandle, error)

	// RegisterMemEvent installs a memory-access event on one GFN
	// under one SLAT view, intercepting the given access types.
	RegisterMemEvent(gfn memaddr.GFN, slatID uint16, access MemAccess, data any, cb EventCallback) (RegisterHandle, error)

	// RegisterSinglestepEvent installs a single catch-all
	// single-step event across every vCPU.
	RegisterSinglestepEvent(data any, cb EventCallback) (RegisterHandle, error)

	// ClearEvent requests removal of a previously registered event.
	// free is invoked once the hypervisor confirms the event is no
	// longer live; it must not be invoked synchronously if doing so
	// would race in-flight delivery of that event.
	ClearEvent(h RegisterHandle, free func()) error

	// EventsPending returns the number of events queued for
	// delivery, or a negative value / error on failure.
	EventsPending() (int, error)

	// EventsListen blocks up to timeout waiting for and dispatching
	// pending events to their registered callbacks.
	EventsListen(timeout time.Duration) error

	// CreateSlatView allocates a new SLAT view and returns its id.
	CreateSlatView() (uint16, error)

	// DestroySlatView releases a previously created SLAT view. The
	// default view (id 0) cannot be destroyed.
	DestroySlatView(id uint16) error

	// SwitchSlatView makes id the domain's active SLAT view.
	SwitchSlatView(id uint16) error

	// SetAltp2mDomainState flips the domain's altp2m enablement.
	SetAltp2mDomainState(on bool) error
}

// RegisterHandle is an opaque token identifying one registered event,
// standing in for libvmi's vmi_event_t*. Core objects pass it back to
// ClearEvent and otherwise treat it as opaque.
type RegisterHandle any

// EventCallback is the capture-all callback shape the library invokes
// on event delivery. The return value is the response flags the
// library should act on before resuming the guest.
type EventCallback func(ev *Event) ResponseFlags
