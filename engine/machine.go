package engine

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Code is a bytecode program: a flat, addressable slice of Instruction.
type Code []Instruction

// BuiltinFunc is a fixed, host-registered predicate implementation
// invoked instead of a user clause list. A builtin reads whatever
// argument registers its arity needs directly off m.Registers, the same
// register-file convention a compiled clause uses; see builtin.go.
type BuiltinFunc func(m *Machine) error

// Machine is the register-based abstract machine: spec.md §2/§4 realized
// as one struct, in the teacher's own VM-as-a-struct style (teacher's
// engine/vm.go VM type), but with the teacher's persistent-Env/Promise
// control flow replaced by an explicit register file, control stack and
// choice-point stack (spec.md §4.4/§4.5).
type Machine struct {
	ID uuid.UUID

	Registers []Term
	Code      Code
	PC        int

	UF           *UnionFind
	ControlStack []Frame
	ChoiceStack  []ChoicePoint
	Locals       [][]Term

	Predicates *PredicateTable
	Index      *IndexTable
	Builtins   map[string]BuiltinFunc

	VarNames map[Var]string

	varCounter   int64
	maxVariables int64

	hook   HookFunc
	halted bool
}

// NewMachine builds a Machine with numRegisters empty registers running
// code, applying opts in order.
func NewMachine(numRegisters int, code Code, opts ...Option) *Machine {
	id, err := uuid.NewRandom()
	if err != nil {
		id = uuid.Nil
	}
	m := &Machine{
		ID:         id,
		Registers:  make([]Term, numRegisters),
		Code:       code,
		UF:         NewUnionFind(),
		Predicates: NewPredicateTable(),
		Index:      NewIndexTable(),
		Builtins:   map[string]BuiltinFunc{},
		VarNames:   map[Var]string{},
	}
	RegisterBuiltins(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewVariable mints a fresh Var, failing once maxVariables (if nonzero)
// is exhausted.
func (m *Machine) NewVariable(name string) (Var, error) {
	if m.maxVariables != 0 && m.varCounter >= m.maxVariables {
		return 0, errors.New("variable limit exhausted")
	}
	v := Var(m.varCounter)
	m.varCounter++
	if name != "" {
		m.VarNames[v] = name
	}
	return v, nil
}

// RegisterPredicate declares name with no clauses, so a later Call
// against an empty predicate reports PredicateClauseNotFoundError rather
// than PredicateNotFoundError.
func (m *Machine) RegisterPredicate(name string) {
	m.Predicates.Register(name)
}

// AssertClause appends a clause at address to name's clause list without
// touching the index table — the Open Question resolution in
// SPEC_FULL.md: plain assert is never auto-indexed.
func (m *Machine) AssertClause(name string, address int) {
	m.Predicates.Assert(name, address)
}

// RetractClause removes address from name's clause list and from every
// index bucket it was registered under, per spec.md §4.4.
func (m *Machine) RetractClause(name string, address int) error {
	if _, ok := m.Predicates.Clauses(name); !ok {
		return &PredicateNotFoundError{Name: name}
	}
	if !m.Predicates.Retract(name, address) {
		return &PredicateClauseNotFoundError{Name: name}
	}
	m.Index.RemoveByAddress(name, address)
	return nil
}

// RegisterIndexedClause asserts a clause and also indexes it under the
// given head arguments, resolved through the current union-find. This is
// the only path by which an entry enters the index table.
func (m *Machine) RegisterIndexedClause(name string, address int, headArgs []Term) {
	m.Predicates.Assert(name, address)
	resolved := make([]Term, len(headArgs))
	for i, a := range headArgs {
		resolved[i] = m.UF.Resolve(a)
	}
	m.Index.Add(name, resolved, address)
}

func (m *Machine) fetch() (Instruction, error) {
	if m.PC < 0 || m.PC >= len(m.Code) {
		return nil, &NoMoreInstructionsError{}
	}
	return m.Code[m.PC], nil
}

func (m *Machine) register(i int) (Term, error) {
	if i < 0 || i >= len(m.Registers) {
		return nil, &RegisterOutOfBoundsError{Index: i}
	}
	t := m.Registers[i]
	if t == nil {
		return nil, &UninitializedRegisterError{Index: i}
	}
	return t, nil
}

func (m *Machine) setRegister(i int, t Term) error {
	if i < 0 || i >= len(m.Registers) {
		return &RegisterOutOfBoundsError{Index: i}
	}
	m.Registers[i] = t
	return nil
}

// Step executes exactly one instruction. It returns NoMoreInstructionsError
// once Halt has already run or PC has run off the end of Code with no
// Halt, and reports halted via Halted().
func (m *Machine) Step() error {
	if m.halted {
		return &NoMoreInstructionsError{}
	}
	instr, err := m.fetch()
	if err != nil {
		return err
	}
	pc := m.PC
	if m.hook != nil {
		if err := m.hook(m.PC, instr, m); err != nil {
			return errors.Wrapf(err, "hook rejected instruction at pc=%d", m.PC)
		}
	}

	advance := true
	switch in := instr.(type) {
	case PutConst:
		err = m.setRegister(in.Reg, Int(in.Value))
	case PutStr:
		err = m.setRegister(in.Reg, Str(in.Value))
	case PutVar:
		err = m.setRegister(in.Reg, in.ID)
		if err == nil && in.Name != "" {
			m.VarNames[in.ID] = in.Name
		}
	case GetConst:
		if cur, e := m.register(in.Reg); e == nil {
			err = m.UF.Unify(cur, Int(in.Value))
		} else {
			err = m.setRegister(in.Reg, Int(in.Value))
		}
	case GetStr:
		if cur, e := m.register(in.Reg); e == nil {
			err = m.UF.Unify(cur, Str(in.Value))
		} else {
			err = m.setRegister(in.Reg, Str(in.Value))
		}
	case GetVar:
		if cur, e := m.register(in.Reg); e == nil {
			err = m.UF.Unify(cur, in.ID)
		} else {
			err = m.setRegister(in.Reg, in.ID)
		}
	case GetStructure:
		err = m.execGetStructure(in)
	case BuildCompound:
		err = m.execBuildCompound(in)
	case Move:
		var v Term
		v, err = m.register(in.Src)
		if err == nil {
			err = m.setRegister(in.Dst, v)
		}
	case ArithmeticIs:
		var val int64
		val, err = Evaluate(in.Expr, m.Registers, m.UF)
		if err == nil {
			err = m.setRegister(in.Target, Int(val))
		}
	case Allocate:
		m.Locals = append(m.Locals, make([]Term, in.N))
	case Deallocate:
		if len(m.Locals) == 0 {
			err = &EnvironmentMissingError{}
		} else {
			m.Locals = m.Locals[:len(m.Locals)-1]
		}
	case SetLocal:
		err = m.execSetLocal(in)
	case GetLocal:
		err = m.execGetLocal(in)
	case Call:
		err = m.execCall(in.Predicate)
		advance = false
	case TailCall:
		err = m.execTailCall(in.Predicate)
		advance = false
	case IndexedCall:
		err = m.execIndexedCall(in.Predicate, []int{in.Reg})
		advance = false
	case MultiIndexedCall:
		err = m.execIndexedCall(in.Predicate, in.Regs)
		advance = false
	case Proceed:
		err = m.execProceed()
		advance = false
	case Choice:
		m.pushChoice([]int{in.Alternative})
	case Fail:
		err = m.execFail()
		advance = false
	case Cut:
		m.execCut()
	case AssertClause:
		m.AssertClause(in.Predicate, in.Address)
	case RetractClause:
		err = m.RetractClause(in.Predicate, in.Address)
	case Halt:
		m.halted = true
	default:
		err = errors.Errorf("unrecognized instruction %T", instr)
	}

	if err != nil {
		return errors.Wrapf(err, "pc=%d opcode=%s", pc, instr.Opcode())
	}
	if advance && !m.halted {
		m.PC++
	}
	return nil
}

// Run steps the Machine until Halt, an error, or Fail exhausts the last
// choice point. A NoChoicePointError is returned like any other error;
// an embedder that wants to treat "no more solutions" as a plain
// boolean false should check errors.As for it (spec.md §7).
func (m *Machine) Run() error {
	for !m.halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Halted reports whether Halt has executed.
func (m *Machine) Halted() bool { return m.halted }

func (m *Machine) execGetStructure(in GetStructure) error {
	cur, err := m.register(in.Reg)
	if err != nil {
		return err
	}
	resolved := m.UF.Resolve(cur)
	c, ok := resolved.(*Compound)
	if !ok {
		return &NotACompoundTermError{Register: in.Reg}
	}
	if c.Functor != in.Functor || len(c.Args) != in.Arity {
		return &StructureMismatchError{
			ExpectedFunctor: in.Functor,
			ExpectedArity:   in.Arity,
			FoundFunctor:    c.Functor,
			FoundArity:      len(c.Args),
		}
	}
	return nil
}

func (m *Machine) execBuildCompound(in BuildCompound) error {
	args := make([]Term, len(in.ArgRegs))
	for i, r := range in.ArgRegs {
		v, err := m.register(r)
		if err != nil {
			return err
		}
		args[i] = v
	}
	return m.setRegister(in.Target, NewCompound(in.Functor, args...))
}

func (m *Machine) execSetLocal(in SetLocal) error {
	if len(m.Locals) == 0 {
		return &EnvironmentMissingError{}
	}
	frame := m.Locals[len(m.Locals)-1]
	if in.Index < 0 || in.Index >= len(frame) {
		return &RegisterOutOfBoundsError{Index: in.Index}
	}
	frame[in.Index] = in.Value
	return nil
}

func (m *Machine) execGetLocal(in GetLocal) error {
	if len(m.Locals) == 0 {
		return &EnvironmentMissingError{}
	}
	frame := m.Locals[len(m.Locals)-1]
	if in.Index < 0 || in.Index >= len(frame) {
		return &RegisterOutOfBoundsError{Index: in.Index}
	}
	if frame[in.Index] == nil {
		return &UninitializedRegisterError{Index: in.Index}
	}
	return m.setRegister(in.Reg, frame[in.Index])
}

// pushChoice pushes a choice point over alternatives at the current
// machine state, for the Choice instruction's bare retry points and for
// a call with more than one candidate clause.
func (m *Machine) pushChoice(alternatives []int) {
	m.ChoiceStack = append(m.ChoiceStack, ChoicePoint{
		SavedRegisters:     cloneRegisters(m.Registers),
		SavedControlStack:  cloneControlStack(m.ControlStack),
		AlternativeClauses: alternatives,
		TrailMark:          m.UF.Mark(),
		CallLevel:          len(m.ControlStack),
	})
}

func (m *Machine) dispatchCall(name string, addrs []int, pushFrame bool) error {
	if len(addrs) == 0 {
		return &PredicateClauseNotFoundError{Name: name}
	}
	first := addrs[0]
	rest := addrs[1:]

	if pushFrame {
		m.ControlStack = append(m.ControlStack, Frame{ReturnPC: m.PC + 1})
	}
	if len(rest) > 0 {
		alts := make([]int, len(rest))
		copy(alts, rest)
		m.pushChoice(alts)
	}
	m.PC = first
	return nil
}

func (m *Machine) execCall(name string) error {
	if b, ok := m.Builtins[name]; ok {
		if err := b(m); err != nil {
			return err
		}
		m.PC++
		return nil
	}
	addrs, ok := m.Predicates.Clauses(name)
	if !ok {
		return &PredicateNotFoundError{Name: name}
	}
	return m.dispatchCall(name, addrs, true)
}

// execTailCall reuses the current control frame instead of pushing a new
// one — the last-call optimization spec.md §4.5 calls for. A builtin hit
// in tail position still behaves like Proceed afterward, since there is
// no new frame to fall through into.
func (m *Machine) execTailCall(name string) error {
	if len(m.Locals) > 0 {
		m.Locals = m.Locals[:len(m.Locals)-1]
	}
	if b, ok := m.Builtins[name]; ok {
		if err := b(m); err != nil {
			return err
		}
		return m.execProceed()
	}
	addrs, ok := m.Predicates.Clauses(name)
	if !ok {
		return &PredicateNotFoundError{Name: name}
	}
	return m.dispatchCall(name, addrs, false)
}

func (m *Machine) indexKeyFromRegs(regs []int) ([]Term, error) {
	key := make([]Term, len(regs))
	for i, r := range regs {
		v, err := m.register(r)
		if err != nil {
			return nil, err
		}
		key[i] = m.UF.Resolve(v)
	}
	return key, nil
}

func (m *Machine) execIndexedCall(name string, regs []int) error {
	key, err := m.indexKeyFromRegs(regs)
	if err != nil {
		return err
	}
	addrs, hasPredicate, hasBucket := m.Index.Lookup(name, key)
	if !hasPredicate {
		return &PredicateNotInIndexError{Predicate: name}
	}
	if !hasBucket {
		return &NoIndexEntryError{Predicate: name, Key: key}
	}
	if len(addrs) == 0 {
		return &NoIndexedClauseError{Predicate: name, Key: key}
	}
	return m.dispatchCall(name, addrs, true)
}

func (m *Machine) execProceed() error {
	if len(m.ControlStack) == 0 {
		m.halted = true
		return nil
	}
	top := m.ControlStack[len(m.ControlStack)-1]
	m.ControlStack = m.ControlStack[:len(m.ControlStack)-1]
	m.PC = top.ReturnPC
	return nil
}

// execFail pops choice points until one still offers an untried
// alternative, restoring registers, control stack and trail from each as
// it goes, per spec.md §4.5. A choice point whose last alternative is
// taken is discarded at that moment.
func (m *Machine) execFail() error {
	for {
		if len(m.ChoiceStack) == 0 {
			return &NoChoicePointError{}
		}
		cp := &m.ChoiceStack[len(m.ChoiceStack)-1]
		m.Registers = cloneRegisters(cp.SavedRegisters)
		m.ControlStack = cloneControlStack(cp.SavedControlStack)
		m.UF.UndoTrail(cp.TrailMark)

		addr, ok := cp.nextAlternative()
		if !ok {
			m.ChoiceStack = m.ChoiceStack[:len(m.ChoiceStack)-1]
			continue
		}
		if len(cp.AlternativeClauses) == 0 {
			m.ChoiceStack = m.ChoiceStack[:len(m.ChoiceStack)-1]
		}
		m.PC = addr
		return nil
	}
}

// execCut removes every choice point created at or below the current
// control-stack depth — level-scoped, not a full clear (spec.md's Open
// Question, resolved in SPEC_FULL.md as a deliberate deviation from the
// original source's execute_cut, which cleared the whole stack).
func (m *Machine) execCut() {
	level := len(m.ControlStack)
	kept := m.ChoiceStack[:0]
	for _, cp := range m.ChoiceStack {
		if cp.CallLevel < level {
			kept = append(kept, cp)
		}
	}
	m.ChoiceStack = kept
}
