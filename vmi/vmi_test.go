package vmi_test

import (
	"testing"

	"github.com/Luluno01/better-vmi/memaddr"
	"github.com/Luluno01/better-vmi/vmi"
)

func TestMemAccessString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		access vmi.MemAccess
		want   string
	}{
		{vmi.AccessN, "N"},
		{vmi.AccessR, "R"},
		{vmi.AccessW, "W"},
		{vmi.AccessX, "X"},
		{vmi.AccessRW, "RW"},
		{vmi.AccessRWX, "RWX"},
	}

	for _, c := range cases {
		if got := c.access.String(); got != c.want {
			t.Fatalf("MemAccess(%d).String() = %q, want %q", c.access, got, c.want)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	t.Parallel()

	if got := vmi.EventInterrupt.String(); got != "EventInterrupt" {
		t.Fatalf("EventInterrupt.String() = %q, want EventInterrupt", got)
	}

	if got := vmi.EventType(255).String(); got != "EventType(255)" {
		t.Fatalf("EventType(255).String() = %q, want EventType(255)", got)
	}
}

func TestEventStringVariantsByType(t *testing.T) {
	t.Parallel()

	interrupt := &vmi.Event{Type: vmi.EventInterrupt}
	interrupt.Interrupt.GLA = memaddr.VA(0x1000)
	interrupt.Interrupt.Reinject = 1

	if s := interrupt.String(); s == "" {
		t.Fatal("Event.String() (interrupt): got empty string")
	}

	mem := &vmi.Event{Type: vmi.EventMemory}
	mem.Mem.GFN = memaddr.GFN(4)
	mem.Mem.InAccess = vmi.AccessR
	mem.Mem.OutAccess = vmi.AccessRW

	if s := mem.String(); s == "" {
		t.Fatal("Event.String() (memory): got empty string")
	}

	step := &vmi.Event{Type: vmi.EventSinglestep, VCPUID: 2}
	if s := step.String(); s == "" {
		t.Fatal("Event.String() (singlestep): got empty string")
	}

	other := &vmi.Event{Type: vmi.EventCPUID}
	if s := other.String(); s == "" {
		t.Fatal("Event.String() (default case): got empty string")
	}
}
