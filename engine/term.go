package engine

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd"
)

// Term is a value the machine can hold in a register, bind a variable to,
// or pass as a clause argument. It is a closed sum type: Int, Str, Var and
// Compound are the only variants the core unifies structurally. Lambda,
// App, Prob, Constraint, Modal and Temporal, and HigherOrder are carried
// for a front end's benefit and are opaque here (see isInert).
type Term interface {
	fmt.Stringer
	isTerm()
}

// Int is a machine integer.
type Int int64

func (Int) isTerm()        {}
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }

// Str is an interned symbol or string atom.
type Str string

func (Str) isTerm()          {}
func (s Str) String() string { return string(s) }

// Var identifies a logic variable by an id drawn from a machine-scoped
// counter. The id is stable for the lifetime of the Machine that minted
// it; only a trail rewind ever changes what it resolves to.
type Var int64

func (Var) isTerm()        {}
func (v Var) String() string { return fmt.Sprintf("_%d", int64(v)) }

// Compound is an ordered tuple of Terms labelled by a functor name. Arity
// is len(Args).
type Compound struct {
	Functor string
	Args    []Term
}

func (*Compound) isTerm() {}

func (c *Compound) Arity() int { return len(c.Args) }

func (c *Compound) String() string {
	var sb strings.Builder
	sb.WriteString(c.Functor)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// NewCompound builds a Compound term.
func NewCompound(functor string, args ...Term) *Compound {
	return &Compound{Functor: functor, Args: args}
}

// Lambda is an inert term retained for a front end compiling a
// lambda-calculus extension. The core never substitutes into its body; it
// only compares lambdas for structural equality.
type Lambda struct {
	Param Var
	Body  Term
}

func (*Lambda) isTerm() {}
func (l *Lambda) String() string {
	return fmt.Sprintf("\\%s.%s", l.Param, l.Body)
}

// App is an inert function application, paired with Lambda.
type App struct {
	Fun Term
	Arg Term
}

func (*App) isTerm() {}
func (a *App) String() string {
	return fmt.Sprintf("(%s %s)", a.Fun, a.Arg)
}

// decimal128Ctx is the GDA-compatible context probabilistic-logic
// annotations are parsed and compared under: 34 digits of precision, same
// as the teacher's own Float, so a Prob value never silently loses
// precision to a binary float.
var decimal128Ctx = apd.Context{
	Precision:   34,
	MaxExponent: 6144,
	MinExponent: -6143,
	Traps:       apd.DefaultTraps,
}

// Prob is an inert probability annotation: an arbitrary-precision decimal
// magnitude a probabilistic-logic front end attaches to a goal or clause.
// The core never evaluates it; two Probs are equal only if their decimal
// values compare equal.
type Prob struct {
	Value *apd.Decimal
}

func (*Prob) isTerm() {}

// NewProbFromString parses a decimal probability annotation, e.g. "0.7".
func NewProbFromString(s string) (*Prob, error) {
	dec, _, err := decimal128Ctx.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &Prob{Value: dec}, nil
}

func (p *Prob) String() string { return p.Value.String() }

func (p *Prob) equal(o *Prob) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Value.Cmp(o.Value) == 0
}

// Constraint is an inert named relation over sub-terms, for a
// constraint-logic front end (e.g. finite-domain constraints). The core
// never solves it.
type Constraint struct {
	Name string
	Args []Term
}

func (*Constraint) isTerm() {}
func (c *Constraint) String() string {
	return (&Compound{Functor: "constraint:" + c.Name, Args: c.Args}).String()
}

// Modal wraps a body under a named modal operator (e.g. "necessarily"),
// inert to the core.
type Modal struct {
	Operator string
	Body     Term
}

func (*Modal) isTerm() {}
func (m *Modal) String() string {
	return fmt.Sprintf("%s(%s)", m.Operator, m.Body)
}

// Temporal wraps a body under a named temporal operator (e.g. "always"),
// inert to the core.
type Temporal struct {
	Operator string
	Body     Term
}

func (*Temporal) isTerm() {}
func (t *Temporal) String() string {
	return fmt.Sprintf("%s(%s)", t.Operator, t.Body)
}

// HigherOrder wraps a term that a higher-order front end treats
// specially; the core sees only its inner term's structural identity.
type HigherOrder struct {
	Inner Term
}

func (*HigherOrder) isTerm() {}
func (h *HigherOrder) String() string {
	return fmt.Sprintf("^(%s)", h.Inner)
}

// structurallyEqual reports whether two terms are identical without any
// resolution through a UnionFind. It is used for the inert variants,
// which spec.md requires to unify by structural equality only.
func structurallyEqual(a, b Term) bool {
	switch a := a.(type) {
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case Str:
		b, ok := b.(Str)
		return ok && a == b
	case Var:
		b, ok := b.(Var)
		return ok && a == b
	case *Compound:
		b, ok := b.(*Compound)
		if !ok || a.Functor != b.Functor || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !structurallyEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && a.Param == b.Param && structurallyEqual(a.Body, b.Body)
	case *App:
		b, ok := b.(*App)
		return ok && structurallyEqual(a.Fun, b.Fun) && structurallyEqual(a.Arg, b.Arg)
	case *Prob:
		b, ok := b.(*Prob)
		return ok && a.equal(b)
	case *Constraint:
		b, ok := b.(*Constraint)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !structurallyEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Modal:
		b, ok := b.(*Modal)
		return ok && a.Operator == b.Operator && structurallyEqual(a.Body, b.Body)
	case *Temporal:
		b, ok := b.(*Temporal)
		return ok && a.Operator == b.Operator && structurallyEqual(a.Body, b.Body)
	case *HigherOrder:
		b, ok := b.(*HigherOrder)
		return ok && structurallyEqual(a.Inner, b.Inner)
	default:
		return false
	}
}

// isInert reports whether t is one of the variants the core treats as
// opaque: it unifies only via structurallyEqual, never decomposed against
// anything else.
func isInert(t Term) bool {
	switch t.(type) {
	case *Lambda, *App, *Prob, *Constraint, *Modal, *Temporal, *HigherOrder:
		return true
	default:
		return false
	}
}
