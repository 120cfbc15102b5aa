package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionFind_ResolveUnbound(t *testing.T) {
	u := NewUnionFind()
	assert.Equal(t, Var(5), u.Resolve(Var(5)))
}

func TestUnionFind_BindAndResolve(t *testing.T) {
	u := NewUnionFind()
	require.NoError(t, u.Bind(Var(1), Int(42)))
	assert.Equal(t, Int(42), u.Resolve(Var(1)))
}

func TestUnionFind_UnifyVarVar(t *testing.T) {
	u := NewUnionFind()
	require.NoError(t, u.Unify(Var(1), Var(2)))
	require.NoError(t, u.Bind(Var(2), Str("bound")))
	assert.Equal(t, Str("bound"), u.Resolve(Var(1)))
}

func TestUnionFind_UnifyCompounds(t *testing.T) {
	u := NewUnionFind()
	a := NewCompound("f", Var(1), Int(2))
	b := NewCompound("f", Int(9), Int(2))
	require.NoError(t, u.Unify(a, b))
	assert.Equal(t, Int(9), u.Resolve(Var(1)))
}

func TestUnionFind_UnifyMismatch(t *testing.T) {
	u := NewUnionFind()
	err := u.Unify(Int(1), Int(2))
	require.Error(t, err)
	var uerr *UnificationFailedError
	assert.ErrorAs(t, err, &uerr)
}

func TestUnionFind_OccursCheck(t *testing.T) {
	u := NewUnionFind()
	cyclic := NewCompound("f", Var(1))
	err := u.Bind(Var(1), cyclic)
	require.Error(t, err)
	var oerr *OccursCheckError
	assert.ErrorAs(t, err, &oerr)
}

func TestUnionFind_BindInertLambda(t *testing.T) {
	u := NewUnionFind()
	lam := &Lambda{Param: Var(1), Body: Int(7)}
	require.NoError(t, u.Bind(Var(2), lam))
	assert.Equal(t, lam, u.Resolve(Var(2)))
}

func TestUnionFind_TrailUndo(t *testing.T) {
	u := NewUnionFind()
	mark := u.Mark()
	require.NoError(t, u.Bind(Var(1), Int(1)))
	require.NoError(t, u.Unify(Var(2), Var(3)))
	assert.Equal(t, Int(1), u.Resolve(Var(1)))

	u.UndoTrail(mark)
	assert.Equal(t, Var(1), u.Resolve(Var(1)))
	assert.Equal(t, Var(2), u.Resolve(Var(2)))
}

func TestUnionFind_InertUnifiesStructurally(t *testing.T) {
	u := NewUnionFind()
	a := &Constraint{Name: "c", Args: []Term{Int(1)}}
	b := &Constraint{Name: "c", Args: []Term{Int(1)}}
	require.NoError(t, u.Unify(a, b))

	c := &Constraint{Name: "c", Args: []Term{Int(2)}}
	err := u.Unify(a, c)
	require.Error(t, err)
}
