package emitter_test

import (
	"testing"

	"github.com/Luluno01/better-vmi/emitter"
)

func TestOnEmitOrder(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	var order []int

	e.On("k", func(v int) { order = append(order, v) })
	e.On("k", func(v int) { order = append(order, v*10) })

	n := e.Emit("k", 1)
	if n != 2 {
		t.Fatalf("Emit: got %d listeners invoked, want 2", n)
	}

	if len(order) != 2 || order[0] != 1 || order[1] != 10 {
		t.Fatalf("Emit: got order %v, want [1 10]", order)
	}
}

func TestOnceRemovedAfterFiring(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	count := 0
	e.Once("k", func(int) { count++ })

	e.Emit("k", 0)
	e.Emit("k", 0)

	if count != 1 {
		t.Fatalf("Once: fired %d times, want 1", count)
	}

	if e.HasListener("k") {
		t.Fatal("Once: listener list should be empty and entry erased")
	}
}

func TestOffSpecificListener(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	var a, b int
	ha := e.On("k", func(int) { a++ })
	e.On("k", func(int) { b++ })

	e.Off("k", ha)
	e.Emit("k", 0)

	if a != 0 || b != 1 {
		t.Fatalf("Off: got a=%d b=%d, want a=0 b=1", a, b)
	}
}

func TestOffAllForKey(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	count := 0
	e.On("k", func(int) { count++ })
	e.On("k", func(int) { count++ })

	e.Off("k", nil)
	e.Emit("k", 0)

	if count != 0 {
		t.Fatalf("Off(nil): got %d invocations after clearing, want 0", count)
	}

	if e.HasListener("k") {
		t.Fatal("Off(nil): key should be fully erased")
	}
}

func TestEmitUnknownKey(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	if n := e.Emit("missing", 0); n != 0 {
		t.Fatalf("Emit(unknown key): got %d, want 0", n)
	}
}

func TestListenerPanicIsSwallowed(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	second := false
	e.On("k", func(int) { panic("boom") })
	e.On("k", func(int) { second = true })

	n := e.Emit("k", 0)
	if n != 2 {
		t.Fatalf("Emit: got %d listeners invoked, want 2", n)
	}

	if !second {
		t.Fatal("Emit: second listener did not run after first panicked")
	}
}

func TestListenersCanMutateDuringEmit(t *testing.T) {
	t.Parallel()

	e := emitter.New[string, int]()

	calls := 0
	e.On("k", func(int) {
		calls++
		e.On("k", func(int) { t.Fatal("listener added mid-emit must not fire this round") })
	})

	e.Emit("k", 0)

	if calls != 1 {
		t.Fatalf("Emit: got %d calls, want 1", calls)
	}

	if e.NumListeners("k") != 2 {
		t.Fatalf("NumListeners: got %d, want 2 after the mid-emit addition", e.NumListeners("k"))
	}
}
