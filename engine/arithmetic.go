package engine

// Expression is an arithmetic expression tree evaluated by ArithmeticIs.
// It mirrors spec.md §4.3: Const, Reg, and the four binary operators.
type Expression interface {
	eval(registers []Term, uf *UnionFind) (int64, error)
}

// ConstExpr is a literal integer.
type ConstExpr struct{ Value int64 }

func (e ConstExpr) eval([]Term, *UnionFind) (int64, error) { return e.Value, nil }

// RegExpr reads a register, which must resolve to an Int.
type RegExpr struct{ Reg int }

func (e RegExpr) eval(registers []Term, uf *UnionFind) (int64, error) {
	if e.Reg < 0 || e.Reg >= len(registers) {
		return 0, &RegisterOutOfBoundsError{Index: e.Reg}
	}
	t := registers[e.Reg]
	if t == nil {
		return 0, &UninitializedRegisterError{Index: e.Reg}
	}
	resolved := uf.Resolve(t)
	i, ok := resolved.(Int)
	if !ok {
		return 0, &ArithmeticDomainError{Reason: "register does not hold an integer"}
	}
	return int64(i), nil
}

// AddExpr, SubExpr, MulExpr, DivExpr are binary nodes.
type AddExpr struct{ Left, Right Expression }
type SubExpr struct{ Left, Right Expression }
type MulExpr struct{ Left, Right Expression }
type DivExpr struct{ Left, Right Expression }

// Overflow policy (spec.md §4.3, §9 Open Question — resolved in
// SPEC_FULL.md as "error, not wrap"): each binary operator checks for
// signed 64-bit overflow and returns ArithmeticDomainError rather than
// silently wrapping. Addition and subtraction use the sign-bit check,
// multiplication a division round-trip plus the MinInt64 * -1 case, and
// division the MinInt64 / -1 case. A front
// end compiling to this VM gets a loud failure instead of a value it
// never asked for.

func (e AddExpr) eval(registers []Term, uf *UnionFind) (int64, error) {
	a, err := e.Left.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	b, err := e.Right.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	c := a + b
	if ((a ^ c) & (b ^ c)) < 0 {
		return 0, &ArithmeticDomainError{Reason: "integer overflow in addition"}
	}
	return c, nil
}

func (e SubExpr) eval(registers []Term, uf *UnionFind) (int64, error) {
	a, err := e.Left.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	b, err := e.Right.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	c := a - b
	if ((a ^ b) & (a ^ c)) < 0 {
		return 0, &ArithmeticDomainError{Reason: "integer overflow in subtraction"}
	}
	return c, nil
}

func (e MulExpr) eval(registers []Term, uf *UnionFind) (int64, error) {
	a, err := e.Left.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	b, err := e.Right.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == minInt64) || (b == -1 && a == minInt64) {
		return 0, &ArithmeticDomainError{Reason: "integer overflow in multiplication"}
	}
	c := a * b
	if c/b != a {
		return 0, &ArithmeticDomainError{Reason: "integer overflow in multiplication"}
	}
	return c, nil
}

func (e DivExpr) eval(registers []Term, uf *UnionFind) (int64, error) {
	a, err := e.Left.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	b, err := e.Right.eval(registers, uf)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 0, &ArithmeticDomainError{Reason: "division by zero"}
	}
	if a == minInt64 && b == -1 {
		return 0, &ArithmeticDomainError{Reason: "integer overflow in division"}
	}
	return a / b, nil
}

const minInt64 = -1 << 63

// Evaluate walks expr against the given registers and union-find,
// returning the native signed-integer result.
func Evaluate(expr Expression, registers []Term, uf *UnionFind) (int64, error) {
	return expr.eval(registers, uf)
}
