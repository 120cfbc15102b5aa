package engine

import (
	"crypto/sha256"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// PredicateTable maps a predicate name to the ordered list of its
// clauses' entry addresses, in assert order. An ordered map (rather than
// a plain map) keeps iteration and RetractClause deterministic, matching
// the teacher's own preference for go-ordered-map over map[string][]int
// wherever clause order is observable.
type PredicateTable struct {
	clauses *orderedmap.OrderedMap[string, []int]
}

// NewPredicateTable returns an empty table.
func NewPredicateTable() *PredicateTable {
	return &PredicateTable{clauses: orderedmap.New[string, []int]()}
}

// Register creates an (empty, if new) clause list for name.
func (t *PredicateTable) Register(name string) {
	if _, ok := t.clauses.Get(name); !ok {
		t.clauses.Set(name, nil)
	}
}

// Assert appends address to name's clause list, registering name first
// if this is its first clause.
func (t *PredicateTable) Assert(name string, address int) {
	addrs, _ := t.clauses.Get(name)
	t.clauses.Set(name, append(addrs, address))
}

// Retract removes the first occurrence of address from name's clause
// list. It reports whether an entry was found and removed.
func (t *PredicateTable) Retract(name string, address int) bool {
	addrs, ok := t.clauses.Get(name)
	if !ok {
		return false
	}
	i := slices.Index(addrs, address)
	if i < 0 {
		return false
	}
	t.clauses.Set(name, slices.Delete(slices.Clone(addrs), i, i+1))
	return true
}

// Clauses returns name's clause address list and whether name is
// registered at all (as distinct from registered-but-empty).
func (t *PredicateTable) Clauses(name string) ([]int, bool) {
	return t.clauses.Get(name)
}

// indexKey is a fixed-size, comparable stand-in for a []Term used as a
// first-argument (or multi-argument) index key. []Term is not itself a
// valid Go map key — Compound holds a slice — so the key's canonical
// string form is hashed with blake2b-256 into this array, the same
// technique the teacher's own engine reaches for anywhere it needs a
// hashable identity for a composite value (see engine/term.go's use of
// content hashing in the teacher repo).
type indexKey [32]byte

// canonicalBytes renders a resolved term into a form where structurally
// identical terms always produce byte-identical output, independent of
// which Var ids happen to label its variables. Unbound variables are not
// valid index keys (the caller must check before indexing on one) and
// are rendered with a placeholder only to keep this function total.
func canonicalBytes(t Term) []byte {
	h := sha256.New()
	writeCanonical(h, t)
	return h.Sum(nil)
}

func writeCanonical(h interface{ Write([]byte) (int, error) }, t Term) {
	switch v := t.(type) {
	case Int:
		h.Write([]byte{'i'})
		h.Write([]byte(v.String()))
	case Str:
		h.Write([]byte{'s'})
		h.Write([]byte(v))
	case Var:
		h.Write([]byte{'v'})
	case *Compound:
		h.Write([]byte{'c'})
		h.Write([]byte(v.Functor))
		for _, a := range v.Args {
			writeCanonical(h, a)
		}
	default:
		h.Write([]byte{'o'})
		h.Write([]byte(t.String()))
	}
}

// hashKey blake2b-256-hashes a slice of resolved terms into a comparable
// indexKey, suitable as a Go map key.
func hashKey(terms []Term) indexKey {
	hasher, _ := blake2b.New256(nil)
	for _, t := range terms {
		hasher.Write(canonicalBytes(t))
	}
	var out indexKey
	copy(out[:], hasher.Sum(nil))
	return out
}

// IndexTable maps a predicate name to a first-argument (or
// multi-argument) index: a hashed key built from resolved argument terms
// to the ordered list of clause addresses whose head matched that key at
// RegisterIndexedClause time.
//
// reverse tracks, per predicate name, which keys a given clause address
// was registered under — RetractClause only carries an address, not the
// head arguments that produced a key, so this is the only way to find
// and clean up every bucket a retracted clause lives in.
type IndexTable struct {
	buckets *orderedmap.OrderedMap[string, map[indexKey][]int]
	reverse *orderedmap.OrderedMap[string, map[int][]indexKey]
}

// NewIndexTable returns an empty index.
func NewIndexTable() *IndexTable {
	return &IndexTable{
		buckets: orderedmap.New[string, map[indexKey][]int](),
		reverse: orderedmap.New[string, map[int][]indexKey](),
	}
}

// Add registers address under name's bucket for key (the hashed,
// resolved head arguments). This is the only way an entry enters the
// index: AssertClause/RegisterPredicate alone never do, per the Open
// Question resolution recorded in SPEC_FULL.md (plain assert is not
// automatically indexed; only RegisterIndexedClause is).
func (t *IndexTable) Add(name string, key []Term, address int) {
	m, ok := t.buckets.Get(name)
	if !ok {
		m = map[indexKey][]int{}
	}
	k := hashKey(key)
	m[k] = append(m[k], address)
	t.buckets.Set(name, m)

	rev, ok := t.reverse.Get(name)
	if !ok {
		rev = map[int][]indexKey{}
	}
	rev[address] = append(rev[address], k)
	t.reverse.Set(name, rev)
}

// Lookup returns the clause addresses registered under name for key, and
// whether the predicate has an index entry at all versus the bucket
// simply being empty (distinguishing PredicateNotInIndexError from
// NoIndexEntryError/NoIndexedClauseError at the call site).
func (t *IndexTable) Lookup(name string, key []Term) (addrs []int, hasPredicate bool, hasBucket bool) {
	m, ok := t.buckets.Get(name)
	if !ok {
		return nil, false, false
	}
	k := hashKey(key)
	addrs, hasBucket = m[k]
	return addrs, true, hasBucket
}

// Remove deletes address from name's bucket for key, if present, and
// drops the corresponding entry from the reverse lookup.
func (t *IndexTable) Remove(name string, key []Term, address int) {
	m, ok := t.buckets.Get(name)
	if !ok {
		return
	}
	k := hashKey(key)
	addrs, ok := m[k]
	if !ok {
		return
	}
	if i := slices.Index(addrs, address); i >= 0 {
		m[k] = slices.Delete(addrs, i, i+1)
	}
	t.removeReverseEntry(name, address, k)
}

// RemoveByAddress deletes address from every bucket it was registered
// under for name, using the reverse lookup populated by Add. This is
// what RetractClause calls, since the opcode carries only an address,
// not the head arguments a key would be recomputed from.
func (t *IndexTable) RemoveByAddress(name string, address int) {
	rev, ok := t.reverse.Get(name)
	if !ok {
		return
	}
	keys, ok := rev[address]
	if !ok {
		return
	}
	m, _ := t.buckets.Get(name)
	for _, k := range keys {
		if addrs, ok := m[k]; ok {
			if i := slices.Index(addrs, address); i >= 0 {
				m[k] = slices.Delete(addrs, i, i+1)
			}
		}
	}
	delete(rev, address)
	t.reverse.Set(name, rev)
}

func (t *IndexTable) removeReverseEntry(name string, address int, k indexKey) {
	rev, ok := t.reverse.Get(name)
	if !ok {
		return
	}
	keys, ok := rev[address]
	if !ok {
		return
	}
	if i := slices.Index(keys, k); i >= 0 {
		keys = slices.Delete(keys, i, i+1)
	}
	if len(keys) == 0 {
		delete(rev, address)
	} else {
		rev[address] = keys
	}
	t.reverse.Set(name, rev)
}
