package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateTable_AssertAndRetract(t *testing.T) {
	pt := NewPredicateTable()
	pt.Assert("color", 10)
	pt.Assert("color", 20)

	addrs, ok := pt.Clauses("color")
	require.True(t, ok)
	assert.Equal(t, []int{10, 20}, addrs)

	assert.True(t, pt.Retract("color", 10))
	addrs, ok = pt.Clauses("color")
	require.True(t, ok)
	assert.Equal(t, []int{20}, addrs)

	assert.False(t, pt.Retract("color", 999))
}

func TestPredicateTable_RegisterEmpty(t *testing.T) {
	pt := NewPredicateTable()
	pt.Register("even")
	addrs, ok := pt.Clauses("even")
	require.True(t, ok)
	assert.Empty(t, addrs)

	_, ok = pt.Clauses("odd")
	assert.False(t, ok)
}

func TestIndexTable_AddAndLookup(t *testing.T) {
	idx := NewIndexTable()
	idx.Add("color", []Term{Str("red")}, 0)
	idx.Add("color", []Term{Str("blue")}, 2)

	addrs, hasPred, hasBucket := idx.Lookup("color", []Term{Str("red")})
	require.True(t, hasPred)
	require.True(t, hasBucket)
	assert.Equal(t, []int{0}, addrs)

	_, hasPred, hasBucket = idx.Lookup("color", []Term{Str("green")})
	assert.True(t, hasPred)
	assert.False(t, hasBucket)

	_, hasPred, _ = idx.Lookup("shape", []Term{Str("square")})
	assert.False(t, hasPred)
}

func TestIndexTable_Remove(t *testing.T) {
	idx := NewIndexTable()
	idx.Add("color", []Term{Str("red")}, 0)
	idx.Remove("color", []Term{Str("red")}, 0)

	addrs, hasPred, hasBucket := idx.Lookup("color", []Term{Str("red")})
	assert.True(t, hasPred)
	assert.True(t, hasBucket)
	assert.Empty(t, addrs)
}

func TestIndexTable_RemoveByAddress(t *testing.T) {
	idx := NewIndexTable()
	idx.Add("color", []Term{Str("red")}, 0)
	idx.Add("color", []Term{Str("blue")}, 2)

	idx.RemoveByAddress("color", 0)

	addrs, hasPred, hasBucket := idx.Lookup("color", []Term{Str("red")})
	assert.True(t, hasPred)
	assert.True(t, hasBucket)
	assert.Empty(t, addrs)

	addrs, hasPred, hasBucket = idx.Lookup("color", []Term{Str("blue")})
	assert.True(t, hasPred)
	assert.True(t, hasBucket)
	assert.Equal(t, []int{2}, addrs)
}

func TestIndexTable_RemoveByAddressUnknownPredicate(t *testing.T) {
	idx := NewIndexTable()
	idx.RemoveByAddress("nope", 0) // must not panic
}

func TestHashKey_Deterministic(t *testing.T) {
	a := hashKey([]Term{Str("red"), Int(1)})
	b := hashKey([]Term{Str("red"), Int(1)})
	c := hashKey([]Term{Str("blue"), Int(1)})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
