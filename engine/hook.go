package engine

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

// HookFunc is triggered before the Machine executes each instruction. If
// it returns an error, Step halts and returns that error instead of
// executing the instruction. Grounded on the teacher's own
// engine/vm.go HookFunc/DebugHookFn pattern, generalized from Term
// operands to the full Instruction set this VM dispatches.
type HookFunc func(pc int, instr Instruction, m *Machine) error

// DebugHookFn returns a hook that writes one line per executed
// instruction, in the teacher's trace style.
func DebugHookFn(w io.Writer) HookFunc {
	return func(pc int, instr Instruction, _ *Machine) error {
		_, err := io.WriteString(w, instr.Opcode().String()+"\n")
		return err
	}
}

// SpewHookFn returns a hook that dumps the full register file before
// each instruction, for deep debugging sessions where DebugHookFn's
// opcode-only trace isn't enough.
func SpewHookFn(w io.Writer) HookFunc {
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true}
	return func(pc int, instr Instruction, m *Machine) error {
		_, err := io.WriteString(w, cfg.Sprintf("pc=%d %s regs=%v\n", pc, instr.Opcode(), m.Registers))
		return err
	}
}

// CompositeHook chains several hooks, stopping at the first error.
func CompositeHook(hooks ...HookFunc) HookFunc {
	return func(pc int, instr Instruction, m *Machine) error {
		for _, h := range hooks {
			if err := h(pc, instr, m); err != nil {
				return err
			}
		}
		return nil
	}
}

// InstallHook sets the Machine's active hook.
func (m *Machine) InstallHook(h HookFunc) { m.hook = h }

// ClearHook removes the Machine's active hook.
func (m *Machine) ClearHook() { m.hook = nil }
