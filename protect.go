// protect.go: the mutation guard
//
// Every structural mutation in series.go funnels through (*Series).mutable
// before touching anything. That single chokepoint is what makes the
// protection and hold invariants uniform: there is no mutation path that
// can forget to check, whether the mutation comes from the assembler, a
// host embedding, or evaluated code changing its own body.
//
// protected is checked before held, so a series that is both reports
// "protected". Refusal leaves the series untouched; the callers in
// series.go clamp and validate only after the guard passes, so a refused
// call performs no partial work.
//
// Protect and Unprotect flip the flags. They are not structural mutations
// themselves (they change no contents), so they succeed even on a held
// series; the evaluator relies on that to seal a body it is about to run.
package loom

// ProtectOpts selects how far Protect reaches and whether it also hides.
type ProtectOpts struct {
	Deep bool // apply to every composite reachable from the value
	Hide bool // additionally suppress the slot from name enumeration
}

// UnprotectOpts selects how far Unprotect reaches. There is no unhide:
// clearing protection deliberately leaves hidden state alone.
type UnprotectOpts struct {
	Deep bool
}

// Protect sets the protected flag (and, with Hide, the hidden flag) on the
// Series backing v. With Deep it walks the whole reachable graph; the walk
// carries a visited set, so aliased and cyclic graphs terminate. Values
// without a backing Series are untouched.
func Protect(v Value, opts ProtectOpts) {
	setProtection(v, opts.Deep, func(s *Series) {
		s.protected = true
		if opts.Hide {
			s.hidden = true
		}
	})
}

// Unprotect clears the protected flag on the Series backing v, deeply when
// asked. Hidden and hold state are not affected.
func Unprotect(v Value, opts UnprotectOpts) {
	setProtection(v, opts.Deep, func(s *Series) {
		s.protected = false
	})
}

func setProtection(v Value, deep bool, apply func(*Series)) {
	s := v.Series()
	if s == nil {
		return
	}
	if !deep {
		apply(s)
		return
	}
	seen := map[*Series]bool{}
	var walk func(*Series)
	walk = func(s *Series) {
		if seen[s] {
			return
		}
		seen[s] = true
		apply(s)
		for _, e := range s.elems {
			if es := e.Series(); es != nil {
				walk(es)
			}
		}
	}
	walk(s)
}

// mutable is the guard chokepoint. op names the refused operation for the
// error message.
func (s *Series) mutable(op string) error {
	if s.protected {
		return &ProtectionError{ID: ErrProtected, Op: op}
	}
	if s.holds > 0 {
		return &ProtectionError{ID: ErrSeriesHeld, Op: op}
	}
	return nil
}
