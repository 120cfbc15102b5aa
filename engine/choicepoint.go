package engine

// ChoicePoint is a snapshot the dispatcher can restore on Fail: copies
// of the registers and control stack at the moment the choice was made,
// the remaining clause addresses still untried for the call that created
// it (Fail resumes at the first of these), and the trail mark to undo
// bindings back to. The dispatcher does not fill in SavedPC. CallLevel records the control-stack
// depth at creation time, which is what makes Cut level-scoped rather
// than "clear every choice point" (spec.md §9 Open Question, resolved in
// SPEC_FULL.md).
type ChoicePoint struct {
	SavedPC            int
	SavedRegisters     []Term
	SavedControlStack  []Frame
	AlternativeClauses []int
	TrailMark          int
	CallLevel          int
}

// nextAlternative pops and returns the next untried clause address, and
// reports whether one was available.
func (cp *ChoicePoint) nextAlternative() (int, bool) {
	if len(cp.AlternativeClauses) == 0 {
		return 0, false
	}
	addr := cp.AlternativeClauses[0]
	cp.AlternativeClauses = cp.AlternativeClauses[1:]
	return addr, true
}

func cloneRegisters(regs []Term) []Term {
	out := make([]Term, len(regs))
	copy(out, regs)
	return out
}

func cloneControlStack(cs []Frame) []Frame {
	out := make([]Frame, len(cs))
	copy(out, cs)
	return out
}
