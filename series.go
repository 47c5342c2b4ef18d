// series.go: the shared, ordered backing store behind composite values
//
// A Series is what a block, group, path, tuple, sym-block, or sym-group
// actually points at. Series are shared by reference: however many Value
// slots alias one Series, they all observe every mutation, and a Series may
// reach itself through its own elements. Reclamation of unreferenced
// series is the Go runtime's job; this package never frees anything.
//
// Alongside the elements a Series carries:
//
//   - marks: one new-line-before flag per position, including the
//     position one past the last element, so len(marks) == Len()+1 always
//     holds. Markers belong to positions, never to the values stored
//     there; structural mutations shift them with their positions, and
//     only the molder consumes them.
//   - protected / hidden: the permanent mutation lock and the
//     enumeration-visibility flag set through protect.go.
//   - holds: the nesting count behind the transient evaluation hold
//     (frame.go). The series counts as held while holds > 0.
//
// Every operation below that alters contents or markers passes through
// the single guard chokepoint in protect.go before touching anything, and
// performs no partial work on refusal. Out-of-range positions are clamped
// (an insert past the tail appends, a remove count is cut at the tail)
// rather than reported, except Swap, which ignores out-of-range indexes.
package loom

// Series is the mutable ordered sequence backing composite Values. The
// zero value is not usable; construct with NewSeries.
type Series struct {
	elems []Value
	marks []bool // len(elems)+1 positions; marks[i] asks for a break before position i

	protected bool
	hidden    bool
	holds     int // evaluation-hold nesting count; held while > 0
}

// NewSeries builds a fresh Series holding the given elements, all markers
// clear and all flags clear.
func NewSeries(elems ...Value) *Series {
	return &Series{
		elems: append([]Value(nil), elems...),
		marks: make([]bool, len(elems)+1),
	}
}

/* ===========================
   READ ACCESS
   =========================== */

// Len returns the number of elements.
func (s *Series) Len() int { return len(s.elems) }

// Pick returns the element at position i, or (Blank, false) when i is out
// of range.
func (s *Series) Pick(i int) (Value, bool) {
	if i < 0 || i >= len(s.elems) {
		return Blank, false
	}
	return s.elems[i], true
}

// Values returns a copy of the element slice. Mutating the returned slice
// does not affect the Series; use the mutation operations for that.
func (s *Series) Values() []Value {
	return append([]Value(nil), s.elems...)
}

// Mark reports the new-line-before marker at position i. Positions run
// from 0 to Len() inclusive; out-of-range positions report false.
func (s *Series) Mark(i int) bool {
	if i < 0 || i >= len(s.marks) {
		return false
	}
	return s.marks[i]
}

// Protected reports the permanent mutation lock.
func (s *Series) Protected() bool { return s.protected }

// Hidden reports the enumeration-visibility flag. Hiding never blocks
// mutation or access through a reference already in hand; it only tells
// name-enumeration machinery to skip the slot.
func (s *Series) Hidden() bool { return s.hidden }

// Held reports whether the series is under an active evaluation hold.
func (s *Series) Held() bool { return s.holds > 0 }

/* ===========================
   MUTATION (all guarded)
   =========================== */

// SetMark sets or clears the new-line-before marker at position i.
// Out-of-range positions are ignored. Markers are formatting state, but
// they still belong to the series, so the guard applies.
func (s *Series) SetMark(i int, on bool) error {
	if err := s.mutable("set new-line marker"); err != nil {
		return err
	}
	if i >= 0 && i < len(s.marks) {
		s.marks[i] = on
	}
	return nil
}

// Insert places vals before position i; i past the tail appends. Markers
// at and after i shift right with the elements; the new positions start
// unmarked.
func (s *Series) Insert(i int, vals ...Value) error {
	if err := s.mutable("insert"); err != nil {
		return err
	}
	s.insert(s.clamp(i), vals)
	return nil
}

// Append places vals after the last element. The terminal marker stays on
// the one-past-last position, after the appended values.
func (s *Series) Append(vals ...Value) error {
	if err := s.mutable("append"); err != nil {
		return err
	}
	s.insert(len(s.elems), vals)
	return nil
}

// ChangeAt overwrites the element at position i; changing at the tail
// appends. Markers do not move: the position keeps its marker regardless
// of the value now stored there.
func (s *Series) ChangeAt(i int, v Value) error {
	if err := s.mutable("change"); err != nil {
		return err
	}
	i = s.clamp(i)
	if i == len(s.elems) {
		s.insert(i, []Value{v})
		return nil
	}
	s.elems[i] = v
	return nil
}

// insert does the splice after the guard has already passed.
func (s *Series) insert(i int, vals []Value) {
	elems := make([]Value, 0, len(s.elems)+len(vals))
	elems = append(elems, s.elems[:i]...)
	elems = append(elems, vals...)
	elems = append(elems, s.elems[i:]...)

	marks := make([]bool, 0, len(s.marks)+len(vals))
	marks = append(marks, s.marks[:i]...)
	marks = append(marks, make([]bool, len(vals))...)
	marks = append(marks, s.marks[i:]...)

	s.elems, s.marks = elems, marks
}

// Remove deletes count elements starting at position i, clamped to the
// tail. The removed positions' markers disappear with them; the terminal
// marker survives.
func (s *Series) Remove(i, count int) error {
	if err := s.mutable("remove"); err != nil {
		return err
	}
	i = s.clamp(i)
	if count > len(s.elems)-i {
		count = len(s.elems) - i
	}
	if count <= 0 {
		return nil
	}
	s.elems = append(s.elems[:i], s.elems[i+count:]...)
	s.marks = append(s.marks[:i], s.marks[i+count:]...)
	return nil
}

// Swap exchanges the elements at positions i and j. Markers stay with
// their positions, not with the moved values. Out-of-range indexes make
// the call a no-op.
func (s *Series) Swap(i, j int) error {
	if err := s.mutable("swap"); err != nil {
		return err
	}
	if i < 0 || i >= len(s.elems) || j < 0 || j >= len(s.elems) {
		return nil
	}
	s.elems[i], s.elems[j] = s.elems[j], s.elems[i]
	return nil
}

// Clear removes every element and resets every marker.
func (s *Series) Clear() error {
	if err := s.mutable("clear"); err != nil {
		return err
	}
	s.elems = nil
	s.marks = make([]bool, 1)
	return nil
}

// clamp bounds an element position to [0, Len()].
func (s *Series) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(s.elems) {
		return len(s.elems)
	}
	return i
}
