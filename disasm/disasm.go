// Package disasm wraps golang.org/x/arch/x86/x86asm for the one-line
// diagnostic logging of breakpoint hits, the same
// decode/GNUSyntax pairing gokvm's machine.Inst/machine.Asm use.
package disasm

import "golang.org/x/arch/x86/x86asm"

// Decode decodes the single x86-64 instruction at the start of insn.
func Decode(insn []byte) (x86asm.Inst, error) {
	return x86asm.Decode(insn, 64)
}

// GNUSyntax renders inst in GNU assembler syntax, as if its first
// byte sat at virtual address pc.
func GNUSyntax(inst x86asm.Inst, pc uint64) string {
	return x86asm.GNUSyntax(inst, pc, nil)
}

// BreakpointSite decodes the bytes a breakpoint saved before
// injecting INT3 — the instruction that will actually execute via
// emulation — and renders a one-line diagnostic, the Go analogue of
// original_source/include/pretty-print.hh's per-event pretty printers.
func BreakpointSite(saved [15]byte, pc uint64) string {
	inst, err := Decode(saved[:])
	if err != nil {
		return "<undecodable>"
	}

	return GNUSyntax(inst, pc)
}
