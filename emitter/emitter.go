// Package emitter implements a generic multi-listener dispatcher
// keyed by a small enum, the Go counterpart of
// original_source/include/EventEmitter.hh's EventEmitter<KeyType,
// ArgTypes...> template. Go has no variadic-template callback shape,
// so each emitter carries exactly one argument type; consumers that
// need more bundle it into a struct.
package emitter

import "github.com/apex/log"

// Listener is the callback shape an emitter invokes on Emit.
type Listener[A any] func(A)

// Handle is the opaque token Off takes to remove a specific listener.
// Identity is by pointer, not by function value, because Go func
// values are not comparable — the same problem the C++ original
// solves by handing out a shared_ptr<EventCallback>.
type Handle[A any] struct {
	fn   Listener[A]
	once bool
}

// Emitter is a mapping from event key to an ordered sequence of
// listeners. The zero value is not usable; construct with New.
type Emitter[K comparable, A any] struct {
	listeners map[K][]*Handle[A]
}

// New constructs an empty Emitter.
func New[K comparable, A any]() *Emitter[K, A] {
	return &Emitter[K, A]{listeners: make(map[K][]*Handle[A])}
}

// On registers fn as a permanent listener for key and returns a
// handle that can later be passed to Off.
func (e *Emitter[K, A]) On(key K, fn Listener[A]) *Handle[A] {
	h := &Handle[A]{fn: fn}
	e.listeners[key] = append(e.listeners[key], h)

	return h
}

// Once registers fn as a one-shot listener for key: it is
// automatically removed immediately after it fires once.
func (e *Emitter[K, A]) Once(key K, fn Listener[A]) *Handle[A] {
	h := &Handle[A]{fn: fn, once: true}
	e.listeners[key] = append(e.listeners[key], h)

	return h
}

// Off removes one listener previously returned by On/Once, or every
// listener registered for key if h is nil.
func (e *Emitter[K, A]) Off(key K, h *Handle[A]) {
	cur, ok := e.listeners[key]
	if !ok {
		return
	}

	if h == nil {
		delete(e.listeners, key)
		return
	}

	for i, cand := range cur {
		if cand == h {
			cur = append(cur[:i], cur[i+1:]...)
			break
		}
	}

	if len(cur) == 0 {
		delete(e.listeners, key)
	} else {
		e.listeners[key] = cur
	}
}

// HasListener reports whether key has at least one registered
// listener.
func (e *Emitter[K, A]) HasListener(key K) bool {
	return len(e.listeners[key]) > 0
}

// NumListeners returns the number of listeners registered for key.
func (e *Emitter[K, A]) NumListeners(key K) int {
	return len(e.listeners[key])
}

// Emit dispatches arg to every listener registered for key, in
// registration order, and returns how many listeners were invoked.
// The listener slice is copied before iterating so that a listener
// adding or removing listeners during emission does not affect this
// dispatch. A listener that panics is recovered and logged, not
// propagated, so one misbehaving listener cannot break delivery for
// its peers. A listener marked once is removed right after it is
// invoked.
func (e *Emitter[K, A]) Emit(key K, arg A) int {
	cur, ok := e.listeners[key]
	if !ok {
		return 0
	}

	snapshot := make([]*Handle[A], len(cur))
	copy(snapshot, cur)

	for _, h := range snapshot {
		invoke(h, arg)

		if h.once {
			e.Off(key, h)
		}
	}

	return len(snapshot)
}

func invoke[A any](h *Handle[A], arg A) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("emitter: listener panicked, ignoring")
		}
	}()

	h.fn(arg)
}
