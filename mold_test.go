// mold_test.go
package loom

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func moldOf(t *testing.T, v Value, opts MoldOpts) string {
	t.Helper()
	out, truncated := Mold(v, opts)
	if truncated {
		t.Fatalf("unexpected truncation molding %v", v)
	}
	return out
}

func remold(t *testing.T, src string) string {
	t.Helper()
	return moldOf(t, scanOne(t, src), MoldOpts{})
}

func Test_Mold_Canonical_Grid(t *testing.T) {
	cases := []struct{ in, want string }{
		{"[ a  b ]", "[a b]"},
		{"( a )", "(a)"},
		{"@[ x ]", "@[x]"},
		{"@( x )", "@(x)"},
		{"a/b.c", "a/b.c"},
		{"1.2", "1.2"},
		{"#{deadbeef}", "#{DEADBEEF}"},
		{"<a b>", "<a b>"},
		{"#x", "#x"},
		{"#", "#"},
		{":get", ":get"},
		{"'q", "q"},
		{"-42", "-42"},
		{"_", "_"},
		{"[a [b] (c 1)]", "[a [b] (c 1)]"},
	}
	for _, tc := range cases {
		if got := remold(t, tc.in); got != tc.want {
			t.Fatalf("mold mismatch\nin:   %q\nwant: %q\ngot:  %q", tc.in, tc.want, got)
		}
	}
}

func Test_Mold_Text_QuotedEscapes(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`say "hi"`, `"say ^"hi^""`},
		{"a\tb", `"a^-b"`},
		{"a^b", `"a^^b"`},
		{"a\x01b", `"a^(1)b"`},
	}
	for _, tc := range cases {
		got := moldOf(t, Text(tc.payload), MoldOpts{})
		if got != tc.want {
			t.Fatalf("text %q molds as %q, want %q", tc.payload, got, tc.want)
		}
		back := scanOne(t, got)
		if back.Kind != KText || back.Spelling() != tc.payload {
			t.Fatalf("molded text %q does not scan back to %q: %v", got, tc.payload, back)
		}
	}
}

func Test_Mold_Text_BracedWhenMultiline(t *testing.T) {
	got := moldOf(t, Text("a\nb"), MoldOpts{})
	if got != "{a\nb}" {
		t.Fatalf("multi-line text should mold braced, got %q", got)
	}
	back := scanOne(t, got)
	if back.Spelling() != "a\nb" {
		t.Fatalf("braced mold does not round trip: %q", back.Spelling())
	}

	got = moldOf(t, Text("x{y}\nz"), MoldOpts{})
	back = scanOne(t, got)
	if back.Spelling() != "x{y}\nz" {
		t.Fatalf("braces in the payload must survive the round trip, got %q", back.Spelling())
	}
}

func Test_Mold_Truncation(t *testing.T) {
	out, truncated := Mold(Text("abcdefg"), MoldOpts{Limit: 3})
	if out != `"ab` || !truncated {
		t.Fatalf("limit 3: want %q truncated, got %q (%v)", `"ab`, out, truncated)
	}

	out, truncated = Mold(Text("abcdefg"), MoldOpts{Limit: 300})
	if out != `"abcdefg"` || truncated {
		t.Fatalf("limit 300: want full mold, got %q (%v)", out, truncated)
	}

	// A cut that lands exactly on the output length is not a cut.
	out, truncated = Mold(Word("abc"), MoldOpts{Limit: 3})
	if out != "abc" || truncated {
		t.Fatalf("exact-length mold should not be truncated: %q (%v)", out, truncated)
	}

	// No completion of open brackets: the output is a literal head.
	out, truncated = Mold(scanOne(t, "[a b c]"), MoldOpts{Limit: 4})
	if out != "[a b" || !truncated {
		t.Fatalf("want literal head %q, got %q (%v)", "[a b", out, truncated)
	}
}

func Test_Mold_Truncation_RuneBoundary(t *testing.T) {
	out, truncated := Mold(Text("héllo"), MoldOpts{Limit: 3})
	if !truncated {
		t.Fatalf("expected truncation")
	}
	if out != `"h` {
		t.Fatalf("cut should back off to the rune boundary: got %q", out)
	}
	if !utf8.ValidString(out) {
		t.Fatalf("truncated output is not valid UTF-8: %q", out)
	}
}

func Test_Mold_Markers_Indent(t *testing.T) {
	got := remold(t, "[a\n    b\n]")
	if got != "[a\n    b\n]" {
		t.Fatalf("marker layout should round trip, got %q", got)
	}

	got = remold(t, "[a [\nb]]")
	if got != "[a [\n        b]]" {
		t.Fatalf("nested markers indent by depth, got %q", got)
	}
}

func Test_Mold_Flat_SuppressesMarkers(t *testing.T) {
	v := scanOne(t, "[a\nb\n]")
	got := moldOf(t, v, MoldOpts{Flat: true})
	if got != "[a b]" {
		t.Fatalf("flat mold should be single-line, got %q", got)
	}
	if def := moldOf(t, v, MoldOpts{}); !strings.Contains(def, "\n") {
		t.Fatalf("default mold should render the markers, got %q", def)
	}
}

func Test_Mold_Only_OmitsLeadingMarker(t *testing.T) {
	s := NewSeries(Word("a"))
	if err := s.SetMark(0, true); err != nil {
		t.Fatalf("SetMark: %v", err)
	}
	v := Seq(KBlock, s)

	if got := moldOf(t, v, MoldOpts{}); got != "[\n    a]" {
		t.Fatalf("default mold should break before the first element, got %q", got)
	}
	if got := moldOf(t, v, MoldOpts{Only: true}); got != "[a]" {
		t.Fatalf("Only should omit the leading break, got %q", got)
	}

	// Only applies to the outermost call; nested children keep theirs.
	outer := Block(v)
	if got := moldOf(t, outer, MoldOpts{Only: true}); got != "[[\n        a]]" {
		t.Fatalf("nested leading marker should survive Only, got %q", got)
	}
}

func Test_Mold_All_LogicConstruction(t *testing.T) {
	if got := moldOf(t, Logic(true), MoldOpts{}); got != "true" {
		t.Fatalf("plain logic mold: %q", got)
	}
	got := moldOf(t, Logic(false), MoldOpts{All: true})
	if got != "#[false]" {
		t.Fatalf("All should use construction syntax, got %q", got)
	}
	back := scanOne(t, got)
	if !Equal(back, Logic(false)) {
		t.Fatalf("construction mold should load back, got %v", back)
	}
}

func Test_Mold_Error_RoundTrip(t *testing.T) {
	v := ErrVal("syntax", "")
	got := moldOf(t, v, MoldOpts{})
	if got != "#[error! syntax]" {
		t.Fatalf("error mold: %q", got)
	}
	if !Equal(scanOne(t, got), v) {
		t.Fatalf("error mold should load back")
	}

	v = ErrVal("syntax", "oops")
	got = moldOf(t, v, MoldOpts{})
	if got != `#[error! syntax "oops"]` {
		t.Fatalf("error mold with argument: %q", got)
	}
	if !Equal(scanOne(t, got), v) {
		t.Fatalf("error mold with argument should load back")
	}
}

func Test_Mold_Handle_IsOpaque(t *testing.T) {
	v := HandleVal(&Handle{Name: "port", Payload: struct{}{}})
	if got := moldOf(t, v, MoldOpts{}); got != "#[handle! port]" {
		t.Fatalf("handle mold: %q", got)
	}
}

func Test_Mold_Cycle_SelfReferentialBlock(t *testing.T) {
	b := Block(Word("a"))
	if err := b.Series().Append(b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	out, truncated := Mold(b, MoldOpts{})
	if out != "[a [...]]" || truncated {
		t.Fatalf("cyclic block mold: %q (%v)", out, truncated)
	}
}

func Test_Mold_Cycle_ThroughPath(t *testing.T) {
	p := PathVal(Word("a"), Word("b"))
	g := Group(p)
	if err := p.Series().ChangeAt(1, g); err != nil {
		t.Fatalf("ChangeAt: %v", err)
	}
	out, truncated := Mold(p, MoldOpts{})
	if out != "a/(...)" || truncated {
		t.Fatalf("cyclic path mold: %q (%v)", out, truncated)
	}
}

func Test_Mold_SharedSeries_NotACycle(t *testing.T) {
	inner := Block(Word("x"))
	outer := Block(inner, inner)
	if got := moldOf(t, outer, MoldOpts{}); got != "[[x] [x]]" {
		t.Fatalf("a shared series off the descent stack renders twice: %q", got)
	}
}

func Test_Mold_Path_BlankSlotsRenderEmpty(t *testing.T) {
	v := PathVal(Blank, Word("a"), Blank)
	if got := moldOf(t, v, MoldOpts{}); got != "/a/" {
		t.Fatalf("blank slots render empty: %q", got)
	}
}
