// Package signalbridge is the process-singleton bridge between POSIX
// signal delivery and an emitter.Emitter, the Go counterpart of
// original_source/include/signal.hh's SignalSource. The canonical use
// is a listener whose only action is loop.Stop(reason) — the
// async-signal-safety contract spec.md §4.9 demands.
//
// Go forbids non-trivial work inside a true OS signal handler, but
// os/signal.Notify already delivers on its own goroutine, so the
// dispatch loop below fulfills the same contract without needing a
// raw sigaction handler.
package signalbridge

import (
	"os"
	"os/signal"
	"sync"

	"github.com/Luluno01/better-vmi/emitter"
	"golang.org/x/sys/unix"
)

// Any is the key listeners subscribe on to hear every installed
// signal, mirroring spec.md §4.9's "key 0 means any signal".
const Any unix.Signal = 0

var (
	initOnce sync.Once
	bridge   = emitter.New[unix.Signal, unix.Signal]()
)

// watched is the fixed signal set spec.md §4.9 names: HUP, TERM, INT,
// ALRM.
var watched = []os.Signal{unix.SIGHUP, unix.SIGTERM, unix.SIGINT, unix.SIGALRM}

// Init installs the signal handler exactly once per process. It must
// run before the first eventloop.Loop.Bump, per spec.md §4.9's
// "global state ... must be initialized once before the first loop
// bump". Calling Init more than once is harmless; only the first call
// has any effect.
func Init() {
	initOnce.Do(func() {
		ch := make(chan os.Signal, len(watched))
		signal.Notify(ch, watched...)

		go dispatch(ch)
	})
}

func dispatch(ch chan os.Signal) {
	for sig := range ch {
		s, ok := sig.(unix.Signal)
		if !ok {
			continue
		}

		bridge.Emit(Any, s)
		bridge.Emit(s, s)
	}
}

// On registers a permanent listener for sig (or Any for every
// installed signal) and returns a handle On can later hand to Off.
// Listeners must do only async-signal-safe work; the canonical use
// calls eventloop.Loop.Stop and nothing else.
func On(sig unix.Signal, fn emitter.Listener[unix.Signal]) *emitter.Handle[unix.Signal] {
	return bridge.On(sig, fn)
}

// Once registers a one-shot listener for sig.
func Once(sig unix.Signal, fn emitter.Listener[unix.Signal]) *emitter.Handle[unix.Signal] {
	return bridge.Once(sig, fn)
}

// Off removes a listener previously returned by On/Once, or every
// listener for sig if h is nil.
func Off(sig unix.Signal, h *emitter.Handle[unix.Signal]) {
	bridge.Off(sig, h)
}
