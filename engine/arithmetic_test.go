package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ConstAndReg(t *testing.T) {
	uf := NewUnionFind()
	regs := []Term{Int(10)}

	v, err := Evaluate(ConstExpr{Value: 7}, regs, uf)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = Evaluate(RegExpr{Reg: 0}, regs, uf)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
}

func TestEvaluate_RegThroughBinding(t *testing.T) {
	uf := NewUnionFind()
	require.NoError(t, uf.Bind(Var(0), Int(5)))
	regs := []Term{Var(0)}

	v, err := Evaluate(RegExpr{Reg: 0}, regs, uf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestEvaluate_RegWrongType(t *testing.T) {
	uf := NewUnionFind()
	regs := []Term{Str("nope")}
	_, err := Evaluate(RegExpr{Reg: 0}, regs, uf)
	require.Error(t, err)
	var derr *ArithmeticDomainError
	assert.ErrorAs(t, err, &derr)
}

func TestEvaluate_BinaryOps(t *testing.T) {
	uf := NewUnionFind()
	var regs []Term

	tests := []struct {
		title string
		expr  Expression
		want  int64
	}{
		{title: "add", expr: AddExpr{ConstExpr{2}, ConstExpr{3}}, want: 5},
		{title: "sub", expr: SubExpr{ConstExpr{5}, ConstExpr{3}}, want: 2},
		{title: "mul", expr: MulExpr{ConstExpr{4}, ConstExpr{3}}, want: 12},
		{title: "div", expr: DivExpr{ConstExpr{7}, ConstExpr{2}}, want: 3},
		{title: "nested", expr: AddExpr{MulExpr{ConstExpr{2}, ConstExpr{3}}, ConstExpr{1}}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := Evaluate(tt.expr, regs, uf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	uf := NewUnionFind()
	_, err := Evaluate(DivExpr{ConstExpr{1}, ConstExpr{0}}, nil, uf)
	require.Error(t, err)
	var derr *ArithmeticDomainError
	assert.ErrorAs(t, err, &derr)
}

func TestEvaluate_OverflowErrorsInsteadOfWrapping(t *testing.T) {
	uf := NewUnionFind()

	tests := []struct {
		title string
		expr  Expression
	}{
		{title: "add overflow", expr: AddExpr{ConstExpr{math.MaxInt64}, ConstExpr{1}}},
		{title: "sub overflow", expr: SubExpr{ConstExpr{math.MinInt64}, ConstExpr{1}}},
		{title: "mul overflow", expr: MulExpr{ConstExpr{math.MaxInt64}, ConstExpr{2}}},
		{title: "div overflow", expr: DivExpr{ConstExpr{math.MinInt64}, ConstExpr{-1}}},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, err := Evaluate(tt.expr, nil, uf)
			require.Error(t, err)
			var derr *ArithmeticDomainError
			assert.ErrorAs(t, err, &derr)
		})
	}
}
