package xenctrl_test

import (
	"testing"

	"github.com/Luluno01/better-vmi/xenctrl"
)

func TestAltp2mStateString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		state xenctrl.Altp2mState
		want  string
	}{
		{xenctrl.Disabled, "disabled"},
		{xenctrl.External, "external"},
		{xenctrl.Limited, "limited"},
		{xenctrl.Altp2mState(99), "unknown"},
	}

	for _, c := range cases {
		if got := c.state.String(); got != c.want {
			t.Fatalf("Altp2mState(%d).String() = %q, want %q", c.state, got, c.want)
		}
	}
}
