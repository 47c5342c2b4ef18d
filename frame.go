// frame.go: evaluation holds as stack discipline
//
// While an evaluator runs a block, the block must not be structurally
// mutated, not even by its own code. The evaluator marks the series held
// on frame entry and must clear it on every exit path, including error
// unwind. Frame packages that discipline: holds are acquired through a
// Frame and released in reverse order of acquisition, and RunHeld wraps
// the acquire/release pair around a function with a deferred release, so
// a panic inside the function still clears the hold.
//
// A hold is a nesting count on the Series, not a flag: a series held by
// two frames (recursion through the same body) stays held until the
// outermost frame releases. This package is single-threaded by contract;
// an embedding that evaluates on several goroutines needs one Frame chain
// per goroutine and synchronized Series access, which is out of scope
// here.
package loom

// Frame tracks the series held by one active evaluation frame.
type Frame struct {
	held []*Series
}

// NewFrame returns an empty frame.
func NewFrame() *Frame { return &Frame{} }

// Hold marks s as under evaluation. Holding the same series twice in one
// frame is a no-op; holds from different frames nest.
func (f *Frame) Hold(s *Series) {
	for _, h := range f.held {
		if h == s {
			return
		}
	}
	s.holds++
	f.held = append(f.held, s)
}

// Release clears this frame's holds in reverse order of acquisition.
// Calling it again is a no-op, so it is safe both deferred and on an
// explicit early-exit path.
func (f *Frame) Release() {
	for i := len(f.held) - 1; i >= 0; i-- {
		f.held[i].holds--
	}
	f.held = nil
}

// RunHeld executes fn while s is held, releasing on every exit path
// including panic unwind.
func RunHeld(s *Series, fn func() error) error {
	f := NewFrame()
	f.Hold(s)
	defer f.Release()
	return fn()
}
