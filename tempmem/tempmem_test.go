package tempmem_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Luluno01/better-vmi/memaddr"
	"github.com/Luluno01/better-vmi/tempmem"
)

// fakeIO is a flat byte slice standing in for the introspection
// library's variable-length VA read/write primitives.
type fakeIO struct {
	mem      []byte
	readErr  error
	writeErr error
}

func (f *fakeIO) ReadVABytes(_ int, va memaddr.VA, n int) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}

	out := make([]byte, n)
	copy(out, f.mem[va:])

	return out, nil
}

func (f *fakeIO) WriteVABytes(_ int, va memaddr.VA, b []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}

	copy(f.mem[va:], b)

	return nil
}

func TestApplyUndoRoundTrip(t *testing.T) {
	t.Parallel()

	io := &fakeIO{mem: []byte{0x11, 0x22, 0x33, 0x44}}
	p := tempmem.New(io, 0)

	old, err := p.Apply(memaddr.VA(1), []byte{0xAA, 0xBB})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !bytes.Equal(old, []byte{0x22, 0x33}) {
		t.Fatalf("Apply: old = %x, want %x", old, []byte{0x22, 0x33})
	}

	if !bytes.Equal(io.mem, []byte{0x11, 0xAA, 0xBB, 0x44}) {
		t.Fatalf("Apply: mem = %x", io.mem)
	}

	ok, err := p.Undo()
	if err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}

	if !bytes.Equal(io.mem, []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("Undo: mem = %x, want original", io.mem)
	}
}

func TestApplyTwiceFails(t *testing.T) {
	t.Parallel()

	io := &fakeIO{mem: make([]byte, 8)}
	p := tempmem.New(io, 0)

	if _, err := p.Apply(memaddr.VA(1), []byte{0x1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := p.Apply(memaddr.VA(4), []byte{0x2}); !errors.Is(err, tempmem.ErrAlreadyApplied) {
		t.Fatalf("Apply(twice): got %v, want ErrAlreadyApplied", err)
	}
}

func TestApplyNullAddress(t *testing.T) {
	t.Parallel()

	p := tempmem.New(&fakeIO{mem: make([]byte, 8)}, 0)

	if _, err := p.Apply(0, []byte{0x1}); !errors.Is(err, tempmem.ErrNullAddress) {
		t.Fatalf("Apply(0): got %v, want ErrNullAddress", err)
	}
}

func TestUndoWithoutApplyIsNoop(t *testing.T) {
	t.Parallel()

	p := tempmem.New(&fakeIO{mem: make([]byte, 4)}, 0)

	ok, err := p.Undo()
	if err != nil || ok {
		t.Fatalf("Undo without apply: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestCloseSwallowsUndoError(t *testing.T) {
	t.Parallel()

	io := &fakeIO{mem: make([]byte, 4)}
	p := tempmem.New(io, 0)

	if _, err := p.Apply(memaddr.VA(1), []byte{0x1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	io.writeErr = errors.New("write failed")

	p.Close() // must not panic even though the underlying Undo fails
}

func TestGetOldVal(t *testing.T) {
	t.Parallel()

	io := &fakeIO{mem: []byte{0x5, 0x6, 0x7}}
	p := tempmem.New(io, 0)

	if got := p.GetOldVal(); got != nil {
		t.Fatalf("GetOldVal before Apply: got %v, want nil", got)
	}

	if _, err := p.Apply(memaddr.VA(1), []byte{0x9}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := p.GetOldVal(); !bytes.Equal(got, []byte{0x6}) {
		t.Fatalf("GetOldVal: got %x, want %x", got, []byte{0x6})
	}
}
