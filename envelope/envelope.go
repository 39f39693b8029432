// Package envelope attaches a type-tagged payload reference to every
// event the core registers with the introspection library, so a
// capture-all callback that only receives a raw event can safely
// recover its owning object and reject events that were never ours.
//
// The sentinel is a process-unique integer per payload type, filling
// the role the original C++ implementation filled with a non-owning
// back-pointer plus a runtime type check; see
// original_source/include/EventEmitter.hh and spec.md's design note on
// cyclic references.
package envelope

import "sync/atomic"

var nextSentinel uintptr

// NewSentinel mints a process-unique sentinel value. Callers mint one
// per payload type, typically once at package init or registry
// construction time.
func NewSentinel() uintptr {
	return atomic.AddUintptr(&nextSentinel, 1)
}

// Envelope pairs a sentinel with a reference to its payload. It is
// attached to a vmi.Event's Data field as an `any` and later
// recovered with FromEvent.
type Envelope[T any] struct {
	sentinel uintptr
	payload  *T
}

// New wraps payload behind sentinel.
func New[T any](sentinel uintptr, payload *T) *Envelope[T] {
	return &Envelope[T]{sentinel: sentinel, payload: payload}
}

// FromEvent recovers the payload from data (normally a vmi.Event's
// Data field) if data holds an *Envelope[T] whose sentinel matches
// expected. It fails with ErrNullEventData if data is nil, or
// ErrSentinelMismatch if data holds some other envelope (or
// non-envelope value) entirely.
func FromEvent[T any](expected uintptr, data any) (*T, error) {
	if data == nil {
		return nil, ErrNullEventData
	}

	env, ok := data.(*Envelope[T])
	if !ok || env == nil {
		return nil, ErrSentinelMismatch
	}

	if env.sentinel != expected {
		return nil, ErrSentinelMismatch
	}

	return env.payload, nil
}
