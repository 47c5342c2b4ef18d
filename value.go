// value.go — the Loom value model.
//
// OVERVIEW
// ========
// Loom values form a shared, possibly cyclic graph. A Value is a small
// tagged variant: the Kind discriminant says which Go payload lives in
// Data. Atomic kinds carry their payload inline (int64, bool, string,
// []byte); the six composite kinds (block, group, path, tuple, sym-block,
// sym-group) all carry a *Series, the mutable ordered backing store defined
// in series.go. Any number of Value slots may reference the same Series,
// and a Series may reach itself transitively, so every traversal in this
// package (Equal, Copy, Protect, Mold) carries an explicit visited set and
// terminates on any finite graph.
//
// What you get in this file:
//   - The Kind enum and its display names ("word!", "block!", ...).
//   - Value and the constructors (Logic/Int/Word/Text/Block/Path/...).
//   - The blank singleton and kind predicates.
//   - ErrorValue (symbolic id + optional argument) and Handle, the opaque
//     extension point for host-provided payloads.
//   - Structural equality and graph-preserving deep copy.
//
// Scanning text into values lives in lexer.go/parser.go; rendering values
// back to text lives in mold.go; mutation control lives in series.go,
// protect.go and frame.go; coercions live in convert.go.
//
// EQUALITY & COPY SEMANTICS
// -------------------------
// Equal compares structure: kind, payload, and elements recursively.
// Series identity does not matter (two distinct series with equal elements
// compare equal), and per-position new-line markers never participate.
// Copy duplicates every reachable Series exactly once, so aliasing and
// cycles survive the copy; the duplicates start with all flags clear.
package loom

import (
	"bytes"
	"unicode/utf8"
)

////////////////////////////////////////////////////////////////////////////////
//                              KINDS
////////////////////////////////////////////////////////////////////////////////

// Kind enumerates all value kinds a Value may hold.
// The kind determines which Go type Value.Data carries (see Value docs).
type Kind int

const (
	KBlank    Kind = iota // no payload
	KLogic                // bool
	KInteger              // int64
	KWord                 // string spelling
	KGetWord              // string spelling
	KIssue                // string payload (may be empty: the zero-length issue)
	KText                 // string
	KBinary               // []byte
	KTag                  // string body between the angle brackets
	KBlock                // *Series
	KGroup                // *Series
	KPath                 // *Series
	KTuple                // *Series
	KSymBlock             // *Series
	KSymGroup             // *Series
	KError                // *ErrorValue
	KHandle               // *Handle (opaque host payload)
)

// kindNames are the display names used in error messages and construction
// syntax. They follow the notation's own convention of a "!" suffix.
var kindNames = [...]string{
	KBlank:    "blank!",
	KLogic:    "logic!",
	KInteger:  "integer!",
	KWord:     "word!",
	KGetWord:  "get-word!",
	KIssue:    "issue!",
	KText:     "text!",
	KBinary:   "binary!",
	KTag:      "tag!",
	KBlock:    "block!",
	KGroup:    "group!",
	KPath:     "path!",
	KTuple:    "tuple!",
	KSymBlock: "sym-block!",
	KSymGroup: "sym-group!",
	KError:    "error!",
	KHandle:   "handle!",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown!"
	}
	return kindNames[k]
}

////////////////////////////////////////////////////////////////////////////////
//                              VALUE & CTORS
////////////////////////////////////////////////////////////////////////////////

// Value is the universal carrier for everything Loom scans, molds, and
// guards.
//
// Fields:
//   - Kind — discriminant indicating which case is active.
//   - Data — Go value appropriate for Kind (see the Kind constants).
//
// Invariants:
//   - When Kind==KBlank, Data is nil.
//   - When Kind is one of the six composite kinds, Data is a *Series and
//     the Series is shared, not owned: assigning a Value copies the
//     reference, never the elements.
type Value struct {
	Kind Kind
	Data interface{}
}

// Blank is the singleton blank Value, the explicit "elided element"
// placeholder.
var Blank = Value{Kind: KBlank}

// Atomic constructors.
func Logic(b bool) Value            { return Value{Kind: KLogic, Data: b} }
func Int(n int64) Value             { return Value{Kind: KInteger, Data: n} }
func Word(spelling string) Value    { return Value{Kind: KWord, Data: spelling} }
func GetWord(spelling string) Value { return Value{Kind: KGetWord, Data: spelling} }
func Issue(payload string) Value    { return Value{Kind: KIssue, Data: payload} }
func Text(s string) Value           { return Value{Kind: KText, Data: s} }
func Bin(bs []byte) Value           { return Value{Kind: KBinary, Data: bs} }
func TagVal(body string) Value      { return Value{Kind: KTag, Data: body} }

// Composite constructors. Each builds a fresh Series around the given
// elements; use Seq to wrap an existing (shared) Series instead.
func Block(elems ...Value) Value    { return Value{Kind: KBlock, Data: NewSeries(elems...)} }
func Group(elems ...Value) Value    { return Value{Kind: KGroup, Data: NewSeries(elems...)} }
func PathVal(elems ...Value) Value  { return Value{Kind: KPath, Data: NewSeries(elems...)} }
func TupleVal(elems ...Value) Value { return Value{Kind: KTuple, Data: NewSeries(elems...)} }
func SymBlock(elems ...Value) Value { return Value{Kind: KSymBlock, Data: NewSeries(elems...)} }
func SymGroup(elems ...Value) Value { return Value{Kind: KSymGroup, Data: NewSeries(elems...)} }

// Seq wraps an existing Series in a composite Value of the given flavor.
// The Series is shared, not copied; this is how aliases and cycles are
// built programmatically. kind must be one of the six composite kinds.
func Seq(kind Kind, s *Series) Value { return Value{Kind: kind, Data: s} }

// ErrorValue carries a symbolic identifier and an optional argument, the
// payload of an error! value.
type ErrorValue struct {
	ID  string
	Arg string
}

// ErrVal builds an error! value. arg may be "".
func ErrVal(id, arg string) Value {
	return Value{Kind: KError, Data: &ErrorValue{ID: id, Arg: arg}}
}

// Handle is an opaque host payload. Loom never inspects Payload; the
// molder renders only the name, and equality is handle identity. Hosts use
// handles to pass extension values (checksums, connections, ...) through
// blocks untouched.
type Handle struct {
	Name    string
	Payload interface{}
}

// HandleVal wraps a host payload in a handle! value.
func HandleVal(h *Handle) Value { return Value{Kind: KHandle, Data: h} }

////////////////////////////////////////////////////////////////////////////////
//                              ACCESSORS
////////////////////////////////////////////////////////////////////////////////

// Series returns the backing Series of a composite Value, or nil for
// atomic kinds.
func (v Value) Series() *Series {
	if s, ok := v.Data.(*Series); ok {
		return s
	}
	return nil
}

// IsComposite reports whether v is backed by a Series.
func (v Value) IsComposite() bool { return v.Series() != nil }

// IsBlank reports whether v is the blank value.
func (v Value) IsBlank() bool { return v.Kind == KBlank }

// Spelling returns the string payload of word-like and text-like kinds
// (word, get-word, issue, text, tag) and "" for everything else.
func (v Value) Spelling() string {
	if s, ok := v.Data.(string); ok {
		return s
	}
	return ""
}

// Int64 returns the payload of an integer value, 0 otherwise.
func (v Value) Int64() int64 {
	if n, ok := v.Data.(int64); ok {
		return n
	}
	return 0
}

// Bool returns the payload of a logic value, false otherwise.
func (v Value) Bool() bool {
	if b, ok := v.Data.(bool); ok {
		return b
	}
	return false
}

// Bytes returns the payload of a binary value, nil otherwise. The slice is
// the live payload, not a copy.
func (v Value) Bytes() []byte {
	if bs, ok := v.Data.([]byte); ok {
		return bs
	}
	return nil
}

// IssueCodepoint returns the code point value of an issue: the first rune
// of its payload, or 0 for the zero-length issue. Rendering a zero-length
// issue as text is what fails with illegal-zero-byte (see convert.go).
func IssueCodepoint(v Value) rune {
	p := v.Spelling()
	if p == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p)
	return r
}

// String renders a short, single-line debug representation. Mold is the
// canonical renderer; this exists for %v formatting and test output.
func (v Value) String() string {
	s, _ := Mold(v, MoldOpts{Flat: true, Limit: 120})
	return s
}

////////////////////////////////////////////////////////////////////////////////
//                              EQUALITY & COPY
////////////////////////////////////////////////////////////////////////////////

// Equal reports structural equality: same kind, same payload, and for
// composites the same length and pairwise-equal elements. New-line markers
// and protection flags never participate. Pairs of series already under
// comparison are assumed equal, so comparison terminates on cyclic graphs.
func Equal(a, b Value) bool {
	return equalRec(a, b, map[seriesPair]bool{})
}

type seriesPair struct{ a, b *Series }

func equalRec(a, b Value, seen map[seriesPair]bool) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KBlank:
		return true
	case KLogic:
		return a.Bool() == b.Bool()
	case KInteger:
		return a.Int64() == b.Int64()
	case KWord, KGetWord, KIssue, KText, KTag:
		return a.Spelling() == b.Spelling()
	case KBinary:
		return bytes.Equal(a.Bytes(), b.Bytes())
	case KError:
		ea, eb := a.Data.(*ErrorValue), b.Data.(*ErrorValue)
		return ea.ID == eb.ID && ea.Arg == eb.Arg
	case KHandle:
		return a.Data == b.Data
	}

	sa, sb := a.Series(), b.Series()
	if sa == nil || sb == nil {
		return sa == sb
	}
	if sa == sb {
		return true
	}
	pair := seriesPair{sa, sb}
	if seen[pair] {
		return true
	}
	seen[pair] = true
	if len(sa.elems) != len(sb.elems) {
		return false
	}
	for i := range sa.elems {
		if !equalRec(sa.elems[i], sb.elems[i], seen) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of v. Every Series reachable from v is
// duplicated exactly once, so shared series stay shared and cycles stay
// cyclic in the copy. Per-position markers travel with each duplicated
// Series; protection, hiding, and hold state do not (copies start clear).
// Binary payloads are duplicated; handles are shared by reference.
func Copy(v Value) Value {
	return copyRec(v, map[*Series]*Series{})
}

func copyRec(v Value, dup map[*Series]*Series) Value {
	s := v.Series()
	if s == nil {
		if v.Kind == KBinary {
			return Bin(append([]byte(nil), v.Bytes()...))
		}
		return v
	}
	if d, ok := dup[s]; ok {
		return Value{Kind: v.Kind, Data: d}
	}
	d := &Series{
		elems: make([]Value, len(s.elems)),
		marks: append([]bool(nil), s.marks...),
	}
	dup[s] = d
	for i, e := range s.elems {
		d.elems[i] = copyRec(e, dup)
	}
	return Value{Kind: v.Kind, Data: d}
}
