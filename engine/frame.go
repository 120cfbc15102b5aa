package engine

// Frame is one entry in the control stack: the return address a Proceed
// resumes at. Allocate/Deallocate-managed locals live on Machine.Locals,
// not in Frame.
type Frame struct {
	ReturnPC int
}
