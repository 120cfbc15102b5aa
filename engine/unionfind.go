package engine

// UnionFind is the variable binding store: a disjoint-set forest over
// variable ids (parent, with path compression) plus a binding map from
// representative to Term, and a trail of undo records that lets a
// choice-point roll either map back to an earlier state in O(changes)
// time. This is grounded on the teacher's own Env (engine/env.go in the
// teacher), but replaces its persistent red-black tree — appropriate for
// the teacher's CPS/Promise control flow, where "undo" is just discarding
// a reference — with the explicit mutable trail spec.md requires, since
// this VM's control flow is an explicit choice-point stack instead.
type UnionFind struct {
	parent  map[Var]Var
	binding map[Var]Term
	trail   []trailRecord
}

type trailKind uint8

const (
	trailParentSet trailKind = iota
	trailBindingSet
)

// trailRecord is one undo record. hadPrior distinguishes "the key had no
// entry before this mutation" (undo removes the entry) from "the key had
// a prior value" (undo restores it) — spec.md's
// ParentSet(id, prior_parent_or_none) / BindingSet(rep, prior_binding_or_none).
type trailRecord struct {
	kind    trailKind
	id      Var
	hadPrior bool
	priorVar Var
	priorTerm Term
}

// NewUnionFind creates an empty UnionFind.
func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent:  map[Var]Var{},
		binding: map[Var]Term{},
	}
}

// Mark returns the current trail length, the snapshot handle a
// choice-point stores as trail_mark.
func (u *UnionFind) Mark() int { return len(u.trail) }

func (u *UnionFind) setParent(id, parent Var) {
	prior, had := u.parent[id]
	u.trail = append(u.trail, trailRecord{kind: trailParentSet, id: id, hadPrior: had, priorVar: prior})
	u.parent[id] = parent
}

func (u *UnionFind) setBinding(rep Var, t Term) {
	prior, had := u.binding[rep]
	u.trail = append(u.trail, trailRecord{kind: trailBindingSet, id: rep, hadPrior: had, priorTerm: prior})
	u.binding[rep] = t
}

// Find returns the representative of v's equivalence class, compressing
// paths as it walks. A variable with no parent entry is its own
// representative (it has never been unioned with anything).
func (u *UnionFind) Find(v Var) Var {
	parent, ok := u.parent[v]
	if !ok || parent == v {
		return v
	}
	rep := u.Find(parent)
	if rep != parent {
		u.setParent(v, rep)
	}
	return rep
}

// Resolve follows v through find and binding until it reaches a
// non-variable term or an unbound representative. Non-variable terms are
// returned unchanged: resolution inside a Compound's arguments happens at
// unify time, not here (spec.md §4.1).
func (u *UnionFind) Resolve(t Term) Term {
	v, ok := t.(Var)
	if !ok {
		return t
	}
	rep := u.Find(v)
	bound, ok := u.binding[rep]
	if !ok {
		return rep
	}
	return u.Resolve(bound)
}

// Bind binds v's representative to term, which must already be resolved
// one level by the caller. It runs the occurs-check before mutating
// anything. Binding v to a variable of its own class succeeds with no
// change; any other success appends exactly one BindingSet undo record.
func (u *UnionFind) Bind(v Var, term Term) error {
	rep := u.Find(v)
	if w, ok := term.(Var); ok && u.Find(w) == rep {
		return nil
	}
	if u.occursCheck(term, rep) {
		return &OccursCheckError{Var: rep, Term: term}
	}
	u.setBinding(rep, term)
	return nil
}

// occursCheck reports whether term contains a variable whose
// representative is rep. It walks iteratively (a stack, not recursion)
// following compound arguments, and descends into Lambda/App bodies but
// skips a Lambda's own bound parameter — exactly the rule spec.md §4.1
// states and the original source's `UnionFind::occurs_check` implements.
func (u *UnionFind) occursCheck(term Term, rep Var) bool {
	stack := []Term{term}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]

		switch t := cur.(type) {
		case Var:
			if u.Find(t) == rep {
				return true
			}
			if bound, ok := u.binding[u.Find(t)]; ok {
				stack = append(stack, bound)
			}
		case *Compound:
			stack = append(stack, t.Args...)
		case *Lambda:
			stack = append(stack, t.Body)
		case *App:
			stack = append(stack, t.Fun, t.Arg)
		case *Constraint:
			stack = append(stack, t.Args...)
		case *Modal:
			stack = append(stack, t.Body)
		case *Temporal:
			stack = append(stack, t.Body)
		case *HigherOrder:
			stack = append(stack, t.Inner)
		}
	}
	return false
}

// UndoTrail rewinds parent and binding to their state at trail length
// mark, removing and restoring entries exactly as they were recorded.
func (u *UnionFind) UndoTrail(mark int) {
	for len(u.trail) > mark {
		last := len(u.trail) - 1
		rec := u.trail[last]
		u.trail = u.trail[:last]

		switch rec.kind {
		case trailParentSet:
			if rec.hadPrior {
				u.parent[rec.id] = rec.priorVar
			} else {
				delete(u.parent, rec.id)
			}
		case trailBindingSet:
			if rec.hadPrior {
				u.binding[rec.id] = rec.priorTerm
			} else {
				delete(u.binding, rec.id)
			}
		}
	}
}

// Unify unifies a and b under u, mutating bindings and appending trail
// records as it goes. It does not roll back on failure — spec.md §4.2 is
// explicit that the caller (the dispatcher, on Fail) owns that via the
// trail.
func (u *UnionFind) Unify(a, b Term) error {
	ra, rb := u.Resolve(a), u.Resolve(b)

	if va, ok := ra.(Var); ok {
		return u.Bind(va, rb)
	}
	if vb, ok := rb.(Var); ok {
		return u.Bind(vb, ra)
	}

	if isInert(ra) || isInert(rb) {
		if structurallyEqual(ra, rb) {
			return nil
		}
		return &UnificationFailedError{Reason: "inert terms are not structurally equal"}
	}

	switch x := ra.(type) {
	case Int:
		y, ok := rb.(Int)
		if !ok || x != y {
			return &UnificationFailedError{Reason: "integers do not match"}
		}
		return nil
	case Str:
		y, ok := rb.(Str)
		if !ok || x != y {
			return &UnificationFailedError{Reason: "atoms do not match"}
		}
		return nil
	case *Compound:
		y, ok := rb.(*Compound)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return &UnificationFailedError{Reason: "compound terms do not match"}
		}
		for i := range x.Args {
			if err := u.Unify(x.Args[i], y.Args[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return &UnificationFailedError{Reason: "terms are not unifiable"}
	}
}
