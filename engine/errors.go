package engine

import "fmt"

// This file is the §7 error taxonomy. Each kind is its own Go type so a
// caller can recover it with errors.As even after Step/Run have wrapped it
// with github.com/pkg/errors for stack-trace context (see machine.go).

// RegisterOutOfBoundsError is returned for a read or write past the
// register array.
type RegisterOutOfBoundsError struct{ Index int }

func (e *RegisterOutOfBoundsError) Error() string {
	return fmt.Sprintf("register %d is out of bounds", e.Index)
}

// UninitializedRegisterError is returned for a read of an empty register
// where a value is required.
type UninitializedRegisterError struct{ Index int }

func (e *UninitializedRegisterError) Error() string {
	return fmt.Sprintf("register %d is uninitialized", e.Index)
}

// UnificationFailedError is returned when structural unification
// disagrees.
type UnificationFailedError struct{ Reason string }

func (e *UnificationFailedError) Error() string {
	return fmt.Sprintf("unification failed: %s", e.Reason)
}

// OccursCheckError is returned when a bind would create a cyclic
// structure.
type OccursCheckError struct {
	Var  Var
	Term Term
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.Term)
}

// EnvironmentMissingError is returned by Deallocate, SetLocal or GetLocal
// with no active environment frame.
type EnvironmentMissingError struct{}

func (e *EnvironmentMissingError) Error() string { return "environment frame missing" }

// PredicateNotFoundError is returned when a call target is undefined.
type PredicateNotFoundError struct{ Name string }

func (e *PredicateNotFoundError) Error() string {
	return fmt.Sprintf("predicate not found: %s", e.Name)
}

// PredicateClauseNotFoundError is returned when a predicate's clause
// table exists but is empty, or a retract targeted a missing address.
type PredicateClauseNotFoundError struct{ Name string }

func (e *PredicateClauseNotFoundError) Error() string {
	return fmt.Sprintf("predicate has no clauses: %s", e.Name)
}

// NoChoicePointError is returned by Fail with an empty choice-point
// stack: the query has no more alternatives. The embedder MAY treat this
// as a non-error "false." result, per spec.md §7.
type NoChoicePointError struct{}

func (e *NoChoicePointError) Error() string { return "no choice point to backtrack to" }

// StructureMismatchError is returned by GetStructure when the resolved
// register term does not have the expected functor/arity.
type StructureMismatchError struct {
	ExpectedFunctor string
	ExpectedArity   int
	FoundFunctor    string
	FoundArity      int
}

func (e *StructureMismatchError) Error() string {
	return fmt.Sprintf("structure mismatch: expected %s/%d but found %s/%d",
		e.ExpectedFunctor, e.ExpectedArity, e.FoundFunctor, e.FoundArity)
}

// NotACompoundTermError is returned by GetStructure when the resolved
// register term is not a Compound at all.
type NotACompoundTermError struct{ Register int }

func (e *NotACompoundTermError) Error() string {
	return fmt.Sprintf("register %d does not hold a compound term", e.Register)
}

// NoIndexEntryError is returned when the index table has a predicate
// but no bucket for the given key.
type NoIndexEntryError struct {
	Predicate string
	Key       []Term
}

func (e *NoIndexEntryError) Error() string {
	return fmt.Sprintf("no index entry for predicate %s with key %v", e.Predicate, e.Key)
}

// NoIndexedClauseError is returned when the index bucket for a key
// exists but is empty.
type NoIndexedClauseError struct {
	Predicate string
	Key       []Term
}

func (e *NoIndexedClauseError) Error() string {
	return fmt.Sprintf("no indexed clause for predicate %s with key %v", e.Predicate, e.Key)
}

// PredicateNotInIndexError is returned when the predicate has no index
// table entry at all.
type PredicateNotInIndexError struct{ Predicate string }

func (e *PredicateNotInIndexError) Error() string {
	return fmt.Sprintf("predicate %s is not in the index", e.Predicate)
}

// ArithmeticDomainError is returned for division by zero or overflow in
// ArithmeticIs (see arithmetic.go for the chosen overflow policy).
type ArithmeticDomainError struct{ Reason string }

func (e *ArithmeticDomainError) Error() string {
	return fmt.Sprintf("arithmetic domain error: %s", e.Reason)
}

// NoMoreInstructionsError is returned by a fetch past the end of code
// without a prior Halt.
type NoMoreInstructionsError struct{}

func (e *NoMoreInstructionsError) Error() string { return "no more instructions" }
