package engine

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// RegisterBuiltins installs the fixed built-in predicate table on m. It
// is called once from NewMachine; callers never need to call it
// themselves, but it is exported so a test can construct a bare Machine
// and verify the table directly.
func RegisterBuiltins(m *Machine) {
	m.Builtins["halt"] = builtinHalt
	m.Builtins["nl"] = builtinNl
	m.Builtins["write"] = builtinWrite
	m.Builtins["print"] = builtinPrint
	m.Builtins["print_subst"] = builtinPrintSubst
	m.Builtins["="] = builtinUnify
}

// builtinHalt stops the machine immediately, the same as the Halt
// opcode, for a clause body that wants to halt via a call rather than a
// dedicated instruction.
func builtinHalt(m *Machine) error {
	m.halted = true
	return nil
}

func builtinNl(m *Machine) error {
	_, err := fmt.Fprintln(os.Stdout)
	return err
}

// builtinWrite prints register 0, resolved, in its Term.String() form —
// the teacher's own WriteTerm convention reduced to this VM's single
// Term.String method.
func builtinWrite(m *Machine) error {
	t, err := m.register(0)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, m.UF.Resolve(t).String())
	return err
}

// builtinPrint dumps every non-empty register's resolved value with
// go-spew, for development-time inspection of structure a plain
// String() would collapse. Unlike builtinWrite, which is scoped to a
// single register, print surveys the whole register file.
func builtinPrint(m *Machine) error {
	type regValue struct {
		Reg   int
		Value Term
	}
	var nonEmpty []regValue
	for i, t := range m.Registers {
		if t == nil {
			continue
		}
		nonEmpty = append(nonEmpty, regValue{Reg: i, Value: m.UF.Resolve(t)})
	}
	spew.Fdump(os.Stdout, nonEmpty)
	return nil
}

// builtinPrintSubst dumps the machine's entire current substitution
// (every variable with a binding), for debugging a stuck derivation.
func builtinPrintSubst(m *Machine) error {
	snapshot := map[string]string{}
	for v := range m.UF.binding {
		name := m.VarNames[v]
		if name == "" {
			name = v.String()
		}
		snapshot[name] = m.UF.Resolve(v).String()
	}
	spew.Fdump(os.Stdout, snapshot)
	return nil
}

// builtinUnify unifies registers 0 and 1, the call-convention equivalent
// of a GetVar/GetConst pair when both sides are already in registers.
func builtinUnify(m *Machine) error {
	a, err := m.register(0)
	if err != nil {
		return err
	}
	b, err := m.register(1)
	if err != nil {
		return err
	}
	return m.UF.Unify(a, b)
}
