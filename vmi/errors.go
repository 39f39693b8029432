package vmi

import (
	"fmt"

	"github.com/Luluno01/better-vmi/memaddr"
)

// MemoryReadFailed reports a failed guest-memory read at a virtual
// address, carrying the access width in bits (8/16/32/64, or 0 for a
// variable-length read).
type MemoryReadFailed struct {
	Addr  memaddr.VA
	Width int
	Err   error
}

func (e *MemoryReadFailed) Error() string {
	return fmt.Sprintf("read %d-bit value at %#x: %v", e.Width, uint64(e.Addr), e.Err)
}

func (e *MemoryReadFailed) Unwrap() error { return e.Err }

// MemoryWriteFailed is the write-side counterpart of MemoryReadFailed.
type MemoryWriteFailed struct {
	Addr  memaddr.VA
	Width int
	Err   error
}

func (e *MemoryWriteFailed) Error() string {
	return fmt.Sprintf("write %d-bit value at %#x: %v", e.Width, uint64(e.Addr), e.Err)
}

func (e *MemoryWriteFailed) Unwrap() error { return e.Err }

// OffsetLookupFailed reports a failed named structure-offset lookup.
type OffsetLookupFailed struct {
	Name string
	Err  error
}

func (e *OffsetLookupFailed) Error() string {
	return fmt.Sprintf("offset lookup %q: %v", e.Name, e.Err)
}

func (e *OffsetLookupFailed) Unwrap() error { return e.Err }

// SymbolLookupFailed reports a failed kernel symbol lookup.
type SymbolLookupFailed struct {
	Name string
	Err  error
}

func (e *SymbolLookupFailed) Error() string {
	return fmt.Sprintf("symbol lookup %q: %v", e.Name, e.Err)
}

func (e *SymbolLookupFailed) Unwrap() error { return e.Err }
