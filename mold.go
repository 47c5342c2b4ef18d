// mold.go — values back to canonical source text.
package loom

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"
)

/* ---------- options & entry point ---------- */

// MoldOpts adjusts molding. The zero value renders markers, plain logic
// forms, and unbounded output.
type MoldOpts struct {
	Limit int  // cap output at Limit bytes; 0 or negative means no cap
	Flat  bool // suppress all new-line markers; single-line output
	All   bool // construction syntax for values whose plain form is ambiguous
	Only  bool // omit a leading new-line marker on the outermost sequence
}

// Mold renders a value as source text that scans back to an equal value
// (except opaque handles, and logic words unless All is set). truncated
// reports whether the Limit cut anything; the output is the literal head
// of the untruncated mold, never completed with closing brackets.
//
// Molding never fails. A Series already being rendered further up the
// call stack is not descended into again; its position renders as "..."
// inside the flavor's brackets, so cyclic graphs mold in bounded space.
func Mold(v Value, opts MoldOpts) (string, bool) {
	m := &molder{opts: opts, active: make(map[*Series]bool)}
	if opts.Only {
		switch v.Kind {
		case KBlock, KGroup, KSymBlock, KSymGroup:
			m.omitLead = true
		}
	}
	m.moldValue(v)
	return m.b.String(), m.truncated
}

//// END_OF_PUBLIC

/* ---------- the molder ---------- */

type molder struct {
	b         strings.Builder
	opts      MoldOpts
	active    map[*Series]bool // Series on the descent stack
	depth     int
	omitLead  bool // consume a position-0 marker once (Only)
	truncated bool
}

// write appends s, honoring the byte limit. A cut lands on a rune
// boundary at or below the limit; after the first cut nothing more is
// written.
func (m *molder) write(s string) {
	if m.truncated {
		return
	}
	if m.opts.Limit > 0 {
		room := m.opts.Limit - m.b.Len()
		if len(s) > room {
			cut := room
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			m.b.WriteString(s[:cut])
			m.truncated = true
			return
		}
	}
	m.b.WriteString(s)
}

func (m *molder) indent() {
	m.write("\n")
	for i := 0; i < m.depth; i++ {
		m.write("    ")
	}
}

// marker reports whether position i renders with a line break.
func (m *molder) marker(s *Series, i int) bool {
	return !m.opts.Flat && s.Mark(i)
}

func (m *molder) moldValue(v Value) {
	if m.truncated {
		return
	}
	switch v.Kind {
	case KBlank:
		m.write("_")
	case KLogic:
		if m.opts.All {
			m.write("#[" + strconv.FormatBool(v.Bool()) + "]")
		} else {
			m.write(strconv.FormatBool(v.Bool()))
		}
	case KInteger:
		m.write(strconv.FormatInt(v.Int64(), 10))
	case KWord:
		m.write(v.Spelling())
	case KGetWord:
		m.write(":" + v.Spelling())
	case KIssue:
		m.write("#" + v.Spelling())
	case KText:
		m.moldText(v.Spelling())
	case KBinary:
		m.write("#{" + strings.ToUpper(hex.EncodeToString(v.Bytes())) + "}")
	case KTag:
		m.write("<" + v.Spelling() + ">")
	case KBlock:
		m.moldSeq(v.Series(), "[", "]")
	case KGroup:
		m.moldSeq(v.Series(), "(", ")")
	case KSymBlock:
		m.moldSeq(v.Series(), "@[", "]")
	case KSymGroup:
		m.moldSeq(v.Series(), "@(", ")")
	case KPath:
		m.moldRun(v.Series(), "/")
	case KTuple:
		m.moldRun(v.Series(), ".")
	case KError:
		e := v.Data.(*ErrorValue)
		m.write("#[error! " + e.ID)
		if e.Arg != "" {
			m.write(" ")
			m.moldText(e.Arg)
		}
		m.write("]")
	case KHandle:
		m.write("#[handle! " + v.Data.(*Handle).Name + "]")
	}
}

// moldSeq renders a bracketed sequence, honoring new-line markers: a set
// marker at position i emits a break and the nesting indentation before
// element i, and a marker on the one-past-last position breaks before the
// closing bracket.
func (m *molder) moldSeq(s *Series, open, close string) {
	if m.active[s] {
		m.write(open + "..." + close)
		return
	}
	m.active[s] = true
	lead := m.omitLead
	m.omitLead = false
	m.write(open)
	m.depth++
	n := s.Len()
	for i := 0; i < n; i++ {
		switch {
		case m.marker(s, i) && !(i == 0 && lead):
			m.indent()
		case i > 0:
			m.write(" ")
		}
		el, _ := s.Pick(i)
		m.moldValue(el)
	}
	m.depth--
	if m.marker(s, n) {
		m.indent()
	}
	m.write(close)
	delete(m.active, s)
}

// moldRun renders a path or tuple. Runs are always single-line (a break
// between an element and its separator would split the run on rescan) and
// blanks render as empty slots, so [blank a blank] joins to "/a/".
func (m *molder) moldRun(s *Series, sep string) {
	if m.active[s] {
		m.write("...")
		return
	}
	m.active[s] = true
	n := s.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			m.write(sep)
		}
		el, _ := s.Pick(i)
		if el.Kind == KBlank {
			continue
		}
		m.moldValue(el)
	}
	delete(m.active, s)
}

/* ---------- text forms ---------- */

// moldText picks the quoted form, or the braced form when the payload
// holds a line break (a quoted string may not cross lines).
func (m *molder) moldText(s string) {
	if strings.ContainsRune(s, '\n') {
		m.write(escapeBraced(s))
		return
	}
	m.write(escapeQuoted(s))
}

func escapeQuoted(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteString(`^"`)
		case r == '^':
			b.WriteString("^^")
		case r == '\n':
			b.WriteString("^/")
		case r == '\t':
			b.WriteString("^-")
		case r == 0:
			b.WriteString("^@")
		case r < 0x20 || r == 0x7f:
			b.WriteString("^(" + strconv.FormatInt(int64(r), 16) + ")")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func escapeBraced(s string) string {
	var b strings.Builder
	b.WriteByte('{')
	for _, r := range s {
		switch r {
		case '^':
			b.WriteString("^^")
		case '{':
			b.WriteString("^{")
		case '}':
			b.WriteString("^}")
		case 0:
			b.WriteString("^@")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('}')
	return b.String()
}
