// protect_test.go
package loom

import "testing"

func mustRefuse(t *testing.T, err error, wantID string) *ProtectionError {
	t.Helper()
	if err == nil {
		t.Fatalf("mutation should have been refused with %s", wantID)
	}
	pe, ok := err.(*ProtectionError)
	if !ok {
		t.Fatalf("want *ProtectionError, got %T: %v", err, err)
	}
	if pe.ID != wantID {
		t.Fatalf("want ID %s, got %s", wantID, pe.ID)
	}
	return pe
}

func Test_Protect_BlocksMutation(t *testing.T) {
	v := scanOne(t, "[a b]")
	Protect(v, ProtectOpts{})

	err := v.Series().Append(Word("c"))
	pe := mustRefuse(t, err, ErrProtected)
	if pe.Error() != "PROTECTION ERROR: cannot append: series is protected" {
		t.Fatalf("message: %q", pe.Error())
	}
	if v.Series().Len() != 2 {
		t.Fatalf("refused mutation must leave the series untouched, len %d", v.Series().Len())
	}

	Unprotect(v, UnprotectOpts{})
	if err := v.Series().Append(Word("c")); err != nil {
		t.Fatalf("unprotect should re-enable mutation: %v", err)
	}
	if v.Series().Len() != 3 {
		t.Fatalf("len after append: %d", v.Series().Len())
	}
}

func Test_Protect_Shallow_LeavesNestedMutable(t *testing.T) {
	v := scanOne(t, "[a [b]]")
	Protect(v, ProtectOpts{})

	inner, _ := v.Series().Pick(1)
	if err := inner.Series().Append(Word("c")); err != nil {
		t.Fatalf("shallow protect must not reach nested series: %v", err)
	}
}

func Test_Protect_Deep_ReachesNested(t *testing.T) {
	v := scanOne(t, "[a [b (c)]]")
	Protect(v, ProtectOpts{Deep: true})

	inner, _ := v.Series().Pick(1)
	mustRefuse(t, inner.Series().Append(Word("x")), ErrProtected)

	group, _ := inner.Series().Pick(1)
	mustRefuse(t, group.Series().Append(Word("x")), ErrProtected)
}

func Test_Protect_Deep_CyclicGraphTerminates(t *testing.T) {
	b := Block(Word("a"))
	if err := b.Series().Append(b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	Protect(b, ProtectOpts{Deep: true})
	mustRefuse(t, b.Series().Clear(), ErrProtected)
}

func Test_Protect_DeepThenShallowUnprotect(t *testing.T) {
	v := scanOne(t, "[a [b]]")
	Protect(v, ProtectOpts{Deep: true})
	Unprotect(v, UnprotectOpts{})

	if err := v.Series().Append(Word("c")); err != nil {
		t.Fatalf("outer should be mutable again: %v", err)
	}
	inner, _ := v.Series().Pick(1)
	mustRefuse(t, inner.Series().Append(Word("x")), ErrProtected)
}

func Test_Protect_Hide_SurvivesUnprotect(t *testing.T) {
	v := scanOne(t, "[a]")
	Protect(v, ProtectOpts{Hide: true})
	if !v.Series().Hidden() {
		t.Fatalf("Hide should set the hidden flag")
	}

	Unprotect(v, UnprotectOpts{})
	if v.Series().Protected() {
		t.Fatalf("protection should be cleared")
	}
	if !v.Series().Hidden() {
		t.Fatalf("unprotect must not unhide")
	}
}

func Test_Protect_CheckedBeforeHeld(t *testing.T) {
	v := scanOne(t, "[a]")
	f := NewFrame()
	f.Hold(v.Series())
	defer f.Release()

	// Flag flips are not structural mutations; they work on a held series.
	Protect(v, ProtectOpts{})
	if !v.Series().Protected() {
		t.Fatalf("protect should succeed on a held series")
	}

	mustRefuse(t, v.Series().Append(Word("b")), ErrProtected)
}

func Test_Protect_NonCompositeIsNoOp(t *testing.T) {
	Protect(Int(5), ProtectOpts{Deep: true})
	Protect(Blank, ProtectOpts{})
	Unprotect(Text("x"), UnprotectOpts{Deep: true})
}

func Test_Frame_HoldBlocksMutation(t *testing.T) {
	v := scanOne(t, "[a]")
	s := v.Series()

	f := NewFrame()
	f.Hold(s)
	if !s.Held() {
		t.Fatalf("series should report held")
	}
	mustRefuse(t, s.Append(Word("b")), ErrSeriesHeld)

	f.Release()
	if s.Held() {
		t.Fatalf("release should clear the hold")
	}
	if err := s.Append(Word("b")); err != nil {
		t.Fatalf("mutation after release: %v", err)
	}
}

func Test_Frame_HoldIdempotentWithinFrame(t *testing.T) {
	s := NewSeries(Word("a"))
	f := NewFrame()
	f.Hold(s)
	f.Hold(s)
	f.Release()
	if s.Held() {
		t.Fatalf("double hold in one frame must count once")
	}
}

func Test_Frame_HoldsNestAcrossFrames(t *testing.T) {
	s := NewSeries(Word("a"))
	outer, inner := NewFrame(), NewFrame()
	outer.Hold(s)
	inner.Hold(s)

	inner.Release()
	if !s.Held() {
		t.Fatalf("outer hold should still pin the series")
	}
	mustRefuse(t, s.Append(Word("b")), ErrSeriesHeld)

	outer.Release()
	if s.Held() {
		t.Fatalf("all frames released, series should be free")
	}
}

func Test_Frame_ReleaseTwiceIsSafe(t *testing.T) {
	s := NewSeries(Word("a"))
	f := NewFrame()
	f.Hold(s)
	f.Release()
	f.Release()

	// A negative count would make the next hold invisible.
	g := NewFrame()
	g.Hold(s)
	if !s.Held() {
		t.Fatalf("hold count went negative on double release")
	}
	g.Release()
}

func Test_RunHeld_MutationInsideFails(t *testing.T) {
	s := NewSeries(Word("a"))
	err := RunHeld(s, func() error {
		return s.Append(Word("b"))
	})
	mustRefuse(t, err, ErrSeriesHeld)

	if s.Held() {
		t.Fatalf("RunHeld should release on return")
	}
	if err := s.Append(Word("b")); err != nil {
		t.Fatalf("series should be mutable afterwards: %v", err)
	}
}

func Test_RunHeld_ReleasesOnPanic(t *testing.T) {
	s := NewSeries(Word("a"))
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the panic to propagate")
			}
		}()
		_ = RunHeld(s, func() error { panic("boom") })
	}()

	if s.Held() {
		t.Fatalf("panic unwind must still release the hold")
	}
}
