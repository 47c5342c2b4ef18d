// series_test.go
package loom

import "testing"

func wordSeries(t *testing.T, spellings ...string) *Series {
	t.Helper()
	vals := make([]Value, len(spellings))
	for i, sp := range spellings {
		vals[i] = Word(sp)
	}
	return NewSeries(vals...)
}

func mustMutate(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("mutation failed: %v", err)
	}
}

func pickWord(t *testing.T, s *Series, i int) string {
	t.Helper()
	v, ok := s.Pick(i)
	if !ok {
		t.Fatalf("Pick(%d) out of range, len %d", i, s.Len())
	}
	if v.Kind != KWord {
		t.Fatalf("Pick(%d): want word!, got %s", i, v.Kind)
	}
	return v.Spelling()
}

func Test_Series_NewStartsUnmarked(t *testing.T) {
	s := wordSeries(t, "a", "b")
	if s.Len() != 2 {
		t.Fatalf("len: %d", s.Len())
	}
	for i := 0; i <= s.Len(); i++ {
		if s.Mark(i) {
			t.Fatalf("position %d should start unmarked", i)
		}
	}
}

func Test_Series_Insert_ShiftsMarkers(t *testing.T) {
	s := wordSeries(t, "a", "b")
	mustMutate(t, s.SetMark(1, true))
	mustMutate(t, s.Insert(1, Word("x")))

	if got := pickWord(t, s, 1); got != "x" {
		t.Fatalf("insert position holds %q", got)
	}
	if s.Mark(1) {
		t.Fatalf("new position should start unmarked")
	}
	if !s.Mark(2) {
		t.Fatalf("marker should shift right with the element it preceded")
	}
}

func Test_Series_Insert_PastTailAppends(t *testing.T) {
	s := wordSeries(t, "a")
	mustMutate(t, s.Insert(99, Word("b")))
	if s.Len() != 2 || pickWord(t, s, 1) != "b" {
		t.Fatalf("insert past the tail should append, got len %d", s.Len())
	}
}

func Test_Series_Append_TerminalMarkerStaysAtTail(t *testing.T) {
	s := wordSeries(t, "a")
	mustMutate(t, s.SetMark(1, true))
	mustMutate(t, s.Append(Word("b")))

	if s.Mark(1) {
		t.Fatalf("appended element should not inherit the terminal marker")
	}
	if !s.Mark(2) {
		t.Fatalf("terminal marker should stay one past the last element")
	}
}

func Test_Series_ChangeAt_KeepsMarker(t *testing.T) {
	s := wordSeries(t, "a", "b")
	mustMutate(t, s.SetMark(0, true))
	mustMutate(t, s.ChangeAt(0, Word("z")))

	if pickWord(t, s, 0) != "z" {
		t.Fatalf("change should overwrite in place")
	}
	if !s.Mark(0) {
		t.Fatalf("markers belong to positions, not values")
	}
}

func Test_Series_ChangeAt_TailAppends(t *testing.T) {
	s := wordSeries(t, "a")
	mustMutate(t, s.ChangeAt(1, Word("b")))
	if s.Len() != 2 || pickWord(t, s, 1) != "b" {
		t.Fatalf("change at the tail should append, got len %d", s.Len())
	}
}

func Test_Series_Remove_ClampsAndKeepsTerminal(t *testing.T) {
	s := wordSeries(t, "a", "b", "c")
	mustMutate(t, s.SetMark(1, true))
	mustMutate(t, s.SetMark(3, true))
	mustMutate(t, s.Remove(1, 10))

	if s.Len() != 1 || pickWord(t, s, 0) != "a" {
		t.Fatalf("remove should clamp the count to the tail, got len %d", s.Len())
	}
	if s.Mark(0) {
		t.Fatalf("surviving position should keep its own marker state")
	}
	if !s.Mark(1) {
		t.Fatalf("terminal marker should survive a tail removal")
	}
}

func Test_Series_Remove_PastTailIsNoOp(t *testing.T) {
	s := wordSeries(t, "a")
	mustMutate(t, s.Remove(5, 1))
	if s.Len() != 1 {
		t.Fatalf("remove past the tail should do nothing, got len %d", s.Len())
	}
}

func Test_Series_Swap_MarkersStayWithPositions(t *testing.T) {
	s := wordSeries(t, "a", "b")
	mustMutate(t, s.SetMark(1, true))
	mustMutate(t, s.Swap(0, 1))

	if pickWord(t, s, 0) != "b" || pickWord(t, s, 1) != "a" {
		t.Fatalf("swap should exchange the elements")
	}
	if s.Mark(0) || !s.Mark(1) {
		t.Fatalf("markers should not travel with the swapped values")
	}
}

func Test_Series_Swap_OutOfRangeIsNoOp(t *testing.T) {
	s := wordSeries(t, "a", "b")
	mustMutate(t, s.Swap(0, 9))
	if pickWord(t, s, 0) != "a" || pickWord(t, s, 1) != "b" {
		t.Fatalf("out-of-range swap should leave the series alone")
	}
}

func Test_Series_Clear(t *testing.T) {
	s := wordSeries(t, "a", "b")
	mustMutate(t, s.SetMark(2, true))
	mustMutate(t, s.Clear())

	if s.Len() != 0 {
		t.Fatalf("clear should empty the series, got len %d", s.Len())
	}
	if s.Mark(0) {
		t.Fatalf("clear should reset the terminal marker")
	}
	if _, ok := s.Pick(0); ok {
		t.Fatalf("nothing to pick after clear")
	}
}

func Test_Series_Pick_OutOfRange(t *testing.T) {
	s := wordSeries(t, "a")
	for _, i := range []int{-1, 1, 50} {
		if v, ok := s.Pick(i); ok || !v.IsBlank() {
			t.Fatalf("Pick(%d): want blank and false, got %v %v", i, v, ok)
		}
	}
}

func Test_Series_Values_IsACopy(t *testing.T) {
	s := wordSeries(t, "a", "b")
	vs := s.Values()
	vs[0] = Word("zzz")
	if pickWord(t, s, 0) != "a" {
		t.Fatalf("mutating the returned slice must not touch the series")
	}
}

func Test_Series_SetMark_OutOfRangeIgnored(t *testing.T) {
	s := wordSeries(t, "a")
	mustMutate(t, s.SetMark(99, true))
	mustMutate(t, s.SetMark(-1, true))
	for i := 0; i <= s.Len(); i++ {
		if s.Mark(i) {
			t.Fatalf("no marker should have been set")
		}
	}
}
