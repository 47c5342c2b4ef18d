// parser.go — the sequence assembler: tokens to values.
//
// OVERVIEW
// ========
// Scan and ScanBlock drive the lexer and assemble its tokens into values.
// Most tokens map one-to-one onto atomic values; the assembler's real work
// is the separator-joined run grammar shared by paths and tuples:
//
//   - A run is a maximal alternation of elements and *adjacent* "/" or "."
//     separators. Whitespace ends the run: "a/b" is one path, "a /b" is a
//     word followed by a path.
//   - Every slot a separator implies but no token fills materializes as a
//     blank, so N separators always yield N+1 slots: "/a" is [blank a],
//     "a.." is (a blank blank), "/" alone is the two-blank path.
//   - "." binds tighter than "/": a mixed run splits on "/" into segments,
//     and a segment containing "." becomes one tuple element of the path.
//   - Paths and tuples accept only integers, words, groups, blocks, texts,
//     tags, and blanks as elements. A tuple may sit inside a path; a path
//     can never sit inside a tuple. Violations fail the scan with the
//     invalid-sequence identifier, never coerce.
//
// The assembler also records the author's line structure: an element whose
// token followed a line break gets a new-line marker on its position, and
// a line break before a closing bracket marks the one-past-last position.
// The molder reproduces those breaks (mold.go).
//
// Construction syntax #[...] is decoded here as well; the accepted forms
// are #[true], #[false], #[error! id], and #[error! id "arg"].
package loom

import "fmt"

/* ===========================
   PUBLIC API
   =========================== */

// Scan converts source text into the values it denotes, in order. It
// stops at the first malformed token or sequence and returns a *ScanError
// carrying the stable identifier, line, and column; no partial result is
// returned.
func Scan(src string) ([]Value, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &assembler{toks: toks}
	var out []Value
	for p.peek().Type != EOF {
		v, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ScanBlock scans source text into a single block value, preserving the
// author's line structure as per-position new-line markers (including one
// on the one-past-last position when a line break precedes the end of
// input).
func ScanBlock(src string) (Value, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return Blank, err
	}
	p := &assembler{toks: toks}
	s := NewSeries()
	for p.peek().Type != EOF {
		first := p.peek()
		v, err := p.parseItem()
		if err != nil {
			return Blank, err
		}
		appendScanned(s, v, first.NewlineBefore)
	}
	s.marks[len(s.elems)] = p.peek().NewlineBefore
	return Seq(KBlock, s), nil
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: assembly
   =========================== */

type assembler struct {
	toks []Token
	pos  int
}

func (p *assembler) peek() Token {
	return p.toks[p.pos]
}

func (p *assembler) next() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *assembler) errAt(tok Token, msg string) error {
	return &ScanError{ID: ErrScanInvalid, Line: tok.Line, Col: tok.Col, Msg: msg}
}

func (p *assembler) errSeq(tok Token, msg string) error {
	return &ScanError{ID: ErrInvalidSequence, Line: tok.Line, Col: tok.Col, Msg: msg}
}

func (p *assembler) errIncomplete(tok Token, msg string) error {
	return &ScanError{ID: ErrScanInvalid, Line: tok.Line, Col: tok.Col, Msg: msg, Incomplete: true}
}

// appendScanned grows an under-construction series by one element,
// marking its position when the element's first token followed a line
// break. The series is still private to the assembler, so the fields are
// touched directly rather than through the guarded operations.
func appendScanned(s *Series, v Value, newline bool) {
	i := len(s.elems)
	s.elems = append(s.elems, v)
	s.marks = append(s.marks, false)
	s.marks[i] = newline
}

// parseItem parses one element and, when an adjacent separator follows,
// the whole separator-joined run it begins.
func (p *assembler) parseItem() (Value, error) {
	tok := p.peek()
	if tok.Type == SEP {
		// A leading separator elides the first slot.
		p.next()
		return p.parseRun(tok, Blank, sepChar(tok))
	}
	v, err := p.parseElement()
	if err != nil {
		return Blank, err
	}
	if n := p.peek(); n.Type == SEP && n.Adjacent {
		p.next()
		return p.parseRun(tok, v, sepChar(n))
	}
	return v, nil
}

func sepChar(t Token) byte { return t.Lexeme[0] }

// parseElement parses exactly one value, without looking for a run.
func (p *assembler) parseElement() (Value, error) {
	tok := p.next()
	switch tok.Type {
	case WORD, QUOTED:
		// Quoting is an evaluator-level distinction; the scanned value is
		// the word itself.
		return Word(tok.Literal.(string)), nil
	case GETWORD:
		return GetWord(tok.Literal.(string)), nil
	case INTEGER:
		return Int(tok.Literal.(int64)), nil
	case TEXT:
		return Text(tok.Literal.(string)), nil
	case ISSUE:
		return Issue(tok.Literal.(string)), nil
	case BINARY:
		return Bin(tok.Literal.([]byte)), nil
	case TAG:
		return TagVal(tok.Literal.(string)), nil
	case BLANK:
		return Blank, nil
	case LBLOCK:
		return p.parseSeq(tok, RBLOCK, KBlock)
	case LGROUP:
		return p.parseSeq(tok, RGROUP, KGroup)
	case LSYMBLOCK:
		return p.parseSeq(tok, RBLOCK, KSymBlock)
	case LSYMGROUP:
		return p.parseSeq(tok, RGROUP, KSymGroup)
	case CONSTRUCT:
		return p.parseConstruct(tok)
	case RBLOCK:
		return Blank, p.errAt(tok, "unexpected ']'")
	case RGROUP:
		return Blank, p.errAt(tok, "unexpected ')'")
	case SEP:
		return Blank, p.errAt(tok, "unexpected separator")
	default:
		return Blank, p.errIncomplete(tok, "unexpected end of input")
	}
}

// parseSeq assembles a bracketed sequence after its opener was consumed.
func (p *assembler) parseSeq(open Token, close TokenType, kind Kind) (Value, error) {
	s := NewSeries()
	for {
		tok := p.peek()
		if tok.Type == close {
			p.next()
			s.marks[len(s.elems)] = tok.NewlineBefore
			return Seq(kind, s), nil
		}
		if tok.Type == EOF {
			return Blank, p.errIncomplete(open, "unterminated "+kind.String())
		}
		v, err := p.parseItem()
		if err != nil {
			return Blank, err
		}
		appendScanned(s, v, tok.NewlineBefore)
	}
}

// parseRun assembles a separator-joined run. first fills the first slot
// (Blank when the run began with a separator); pending is the separator
// already consumed by the caller.
func (p *assembler) parseRun(at Token, first Value, pending byte) (Value, error) {
	parts := []Value{first}
	seps := []byte{pending}
	for {
		tok := p.peek()
		switch {
		case tok.Type == SEP && tok.Adjacent:
			// Doubled separator: the slot between is elided.
			p.next()
			parts = append(parts, Blank)
			seps = append(seps, sepChar(tok))
			continue
		case elementStart(tok.Type) && tok.Adjacent:
			v, err := p.parseElement()
			if err != nil {
				return Blank, err
			}
			parts = append(parts, v)
		default:
			// The run ends right after a separator: trailing elision.
			parts = append(parts, Blank)
			return p.assembleRun(at, parts, seps)
		}
		tok = p.peek()
		if tok.Type == SEP && tok.Adjacent {
			p.next()
			seps = append(seps, sepChar(tok))
			continue
		}
		return p.assembleRun(at, parts, seps)
	}
}

// elementStart reports whether a token can begin a run element.
func elementStart(tt TokenType) bool {
	switch tt {
	case WORD, QUOTED, GETWORD, INTEGER, TEXT, ISSUE, BINARY, TAG, BLANK,
		LBLOCK, LGROUP, LSYMBLOCK, LSYMGROUP, CONSTRUCT:
		return true
	}
	return false
}

// assembleRun turns slots and separators into a path or tuple value.
// "." binds tighter than "/": a mixed run is a path whose "/"-separated
// segments become tuple elements when they contain a ".".
func (p *assembler) assembleRun(at Token, parts []Value, seps []byte) (Value, error) {
	allDots := true
	for _, c := range seps {
		if c != '.' {
			allDots = false
			break
		}
	}
	if allDots {
		return p.finishSeq(at, KTuple, parts)
	}

	var elems []Value
	seg := []Value{parts[0]}
	for i, c := range seps {
		if c == '/' {
			v, err := p.finishSegment(at, seg)
			if err != nil {
				return Blank, err
			}
			elems = append(elems, v)
			seg = []Value{parts[i+1]}
			continue
		}
		seg = append(seg, parts[i+1])
	}
	v, err := p.finishSegment(at, seg)
	if err != nil {
		return Blank, err
	}
	elems = append(elems, v)
	return p.finishSeq(at, KPath, elems)
}

// finishSegment reduces one "/"-delimited segment: a single slot stays
// itself; several dot-joined slots become a tuple.
func (p *assembler) finishSegment(at Token, seg []Value) (Value, error) {
	if len(seg) == 1 {
		return seg[0], nil
	}
	return p.finishSeq(at, KTuple, seg)
}

// finishSeq validates element legality and builds the sequence.
func (p *assembler) finishSeq(at Token, kind Kind, elems []Value) (Value, error) {
	for _, e := range elems {
		if !legalSeqElement(kind, e) {
			return Blank, p.errSeq(at, fmt.Sprintf("%s cannot hold %s", kind, e.Kind))
		}
	}
	return Seq(kind, NewSeries(elems...)), nil
}

// legalSeqElement enforces the sequence element rules: paths and tuples
// hold integers, words, groups, blocks, texts, tags, and blanks, and a
// tuple may sit inside a path but never the other way around.
func legalSeqElement(kind Kind, e Value) bool {
	switch e.Kind {
	case KInteger, KWord, KGroup, KBlock, KText, KTag, KBlank:
		return true
	case KTuple:
		return kind == KPath
	default:
		return false
	}
}

// parseConstruct decodes construction syntax after a consumed "#[". The
// accepted forms are #[true], #[false], #[error! id], #[error! id "arg"].
func (p *assembler) parseConstruct(open Token) (Value, error) {
	word := func() (string, bool) {
		if p.peek().Type == WORD {
			return p.next().Literal.(string), true
		}
		return "", false
	}

	var v Value
	w, ok := word()
	if !ok {
		return Blank, p.errConstruct(open)
	}
	switch w {
	case "true":
		v = Logic(true)
	case "false":
		v = Logic(false)
	case "error!":
		id, ok := word()
		if !ok {
			return Blank, p.errConstruct(open)
		}
		arg := ""
		if p.peek().Type == TEXT {
			arg = p.next().Literal.(string)
		}
		v = ErrVal(id, arg)
	default:
		return Blank, p.errConstruct(open)
	}

	if p.peek().Type != RBLOCK {
		return Blank, p.errConstruct(open)
	}
	p.next()
	return v, nil
}

func (p *assembler) errConstruct(open Token) error {
	if p.peek().Type == EOF {
		return p.errIncomplete(p.peek(), "unterminated construction")
	}
	return p.errAt(open, "invalid construction syntax")
}
