// lexer.go: source text to tokens
package loom

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Word-likes and literals
	WORD    // bare word, including operator words like < >= =
	QUOTED  // 'word
	GETWORD // :word
	INTEGER // [+-]?digits, decoded to int64
	TEXT    // "..." or {...}
	ISSUE   // #payload; bare # is the zero-length issue
	BINARY  // #{hex}
	TAG     // <...>
	BLANK   // _

	// Structure
	SEP       // "/" or "." joining a sequence run
	LBLOCK    // "["
	RBLOCK    // "]"
	LGROUP    // "("
	RGROUP    // ")"
	LSYMBLOCK // "@["
	LSYMGROUP // "@("
	CONSTRUCT // "#[" construction-syntax opener
)

// Token is a lexical token with optional decoded literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // decoded payload for literals
	Line    int         // 1-based
	Col     int         // 0-based

	// Adjacent is true when no whitespace separated this token from the
	// previous one. The assembler uses it to bound separator-joined runs:
	// "a/b" is one run, "a /b" is two items.
	Adjacent bool

	// NewlineBefore is true when at least one line break occurred in the
	// whitespace (or comments) before this token. The assembler turns it
	// into a per-position new-line marker for the molder.
	NewlineBefore bool
}

// Lexer scans a source string into tokens.
type Lexer struct {
	src              string
	start            int // start index of current token
	cur              int // current index
	line             int // 1-based
	col              int // 0-based column within line
	tokens           []Token
	whitespaceBefore bool
	newlineBefore    bool

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) rewindToStart() {
	// Rewind only within the current token; tokStartLine/Col were recorded
	// at the token start, so the position can be restored exactly.
	l.cur = l.start
	l.line = l.tokStartLine
	l.col = l.tokStartCol
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:          tt,
		Lexeme:        lex,
		Literal:       lit,
		Line:          l.tokStartLine,
		Col:           l.tokStartCol,
		Adjacent:      !l.whitespaceBefore && len(l.tokens) > 0,
		NewlineBefore: l.newlineBefore,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.whitespaceBefore = false
	l.newlineBefore = false
	return tok
}

// skipWhitespace also eats comments: a ';' starts a line comment only
// here, between tokens. A ';' glued to an in-progress word-like span is
// consumed into that span by wordSpan instead and rejected by
// validateSpelling, which is what makes `'a;` one invalid token rather
// than a quoted word followed by a comment.
func (l *Lexer) skipWhitespace() {
	l.whitespaceBefore = false
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\t':
			l.whitespaceBefore = true
			l.advance()
			l.start = l.cur
		case '\n':
			l.whitespaceBefore = true
			l.newlineBefore = true
			l.advance()
			l.start = l.cur
		case ';':
			l.whitespaceBefore = true
			l.ignoreUntilNewline()
			l.start = l.cur
		default:
			return
		}
	}
}

// ignoreUntilNewline eats until '\n' or EOF.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// isHardStop reports a byte that always ends a word-like span.
func isHardStop(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '[', ']', '(', ')', '{', '}', '"', '/', '.', ',', 0:
		return true
	}
	return false
}

// badSpanChars are consumed into a word-like span when glued to it but can
// never be part of a valid spelling; validateSpelling rejects the span.
const badSpanChars = ";:@#'<>="

// validateSpelling rejects spellings containing characters that cannot
// appear in a word (or issue payload). forWord additionally rejects empty
// spellings, a leading digit, and the blank literal.
func (l *Lexer) validateSpelling(spelling string, forWord bool) error {
	if strings.ContainsAny(spelling, badSpanChars) {
		return l.errSpan(fmt.Sprintf("invalid word %q", l.src[l.start:l.cur]))
	}
	if forWord {
		if spelling == "" {
			return l.errSpan("missing word")
		}
		if spelling == "_" {
			return l.errSpan("blank cannot be quoted or fetched")
		}
		if isDigit(spelling[0]) {
			return l.errSpan(fmt.Sprintf("invalid word %q", spelling))
		}
	}
	return nil
}

// ----- errors -----

// err reports a scan failure at the current position.
func (l *Lexer) err(msg string) error {
	return &ScanError{ID: ErrScanInvalid, Line: l.line, Col: l.col, Msg: msg}
}

// errSpan reports a scan failure at the start of the current token.
func (l *Lexer) errSpan(msg string) error {
	return &ScanError{ID: ErrScanInvalid, Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

// errIncomplete reports input that ended mid-token.
func (l *Lexer) errIncomplete(msg string) error {
	return &ScanError{ID: ErrScanInvalid, Line: l.line, Col: l.col, Msg: msg, Incomplete: true}
}

// ----- scanners -----

// wordSpan consumes bytes up to the next hard stop and returns the span
// from the token start. Glued characters from badSpanChars are consumed
// too; the caller validates.
func (l *Lexer) wordSpan() string {
	for {
		b, ok := l.peek()
		if !ok || isHardStop(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanWord handles bare words and the blank literal.
func (l *Lexer) scanWord() (Token, error) {
	span := l.wordSpan()
	if span == "_" {
		return l.addToken(BLANK, nil), nil
	}
	if err := l.validateSpelling(span, true); err != nil {
		return Token{}, err
	}
	return l.addToken(WORD, span), nil
}

// scanPrefixed handles the ':' and '\'' prefixed word forms. The prefix
// has already been consumed.
func (l *Lexer) scanPrefixed(tt TokenType) (Token, error) {
	l.wordSpan()
	spelling := l.src[l.start+1 : l.cur]
	if err := l.validateSpelling(spelling, true); err != nil {
		return Token{}, err
	}
	return l.addToken(tt, spelling), nil
}

// scanNumber parses [+-]?digits into an int64. Anything glued after the
// digits invalidates the span; there is no float form, so "1.2" scans as
// the tuple run 1 . 2 instead.
func (l *Lexer) scanNumber() (Token, error) {
	if b, ok := l.peek(); ok && (b == '+' || b == '-') {
		l.advance()
	}
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && !isHardStop(b) {
		l.wordSpan()
		return Token{}, l.errSpan(fmt.Sprintf("invalid integer %q", l.src[l.start:l.cur]))
	}
	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseInt(lex, 10, 64)
	if convErr != nil {
		return Token{}, l.errSpan(fmt.Sprintf("integer out of range: %s", lex))
	}
	return l.addToken(INTEGER, v), nil
}

// scanOperatorWord handles words made of comparison characters: < > <= >=
// <> =. Anything else glued to the run invalidates the span.
func (l *Lexer) scanOperatorWord() (Token, error) {
	for {
		b, ok := l.peek()
		if !ok || (b != '<' && b != '>' && b != '=') {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && !isHardStop(b) {
		l.wordSpan()
		return Token{}, l.errSpan(fmt.Sprintf("invalid word %q", l.src[l.start:l.cur]))
	}
	return l.addToken(WORD, l.src[l.start:l.cur]), nil
}

// operatorAhead reports whether the '<' just consumed begins an operator
// word rather than a tag: the run of comparison characters must end at a
// hard stop.
func (l *Lexer) operatorAhead() bool {
	n := 0
	for {
		b, ok := l.peekN(n)
		if !ok {
			return true
		}
		if b == '<' || b == '>' || b == '=' {
			n++
			continue
		}
		return isHardStop(b)
	}
}

// scanCaretEscape decodes one escape after a consumed '^'.
func (l *Lexer) scanCaretEscape() (rune, error) {
	b, ok := l.peek()
	if !ok {
		return 0, l.errIncomplete("unfinished caret escape")
	}
	l.advance()
	switch b {
	case '/':
		return '\n', nil
	case '-':
		return '\t', nil
	case '^':
		return '^', nil
	case '"':
		return '"', nil
	case '{':
		return '{', nil
	case '}':
		return '}', nil
	case '@':
		return 0, nil
	case '(':
		var digits string
		for {
			h, ok := l.peek()
			if !ok {
				return 0, l.errIncomplete("unfinished caret escape")
			}
			if h == ')' {
				l.advance()
				break
			}
			if !isHex(h) || len(digits) >= 6 {
				return 0, l.err("invalid hex escape")
			}
			digits += string(h)
			l.advance()
		}
		if digits == "" {
			return 0, l.err("empty hex escape")
		}
		v, convErr := strconv.ParseInt(digits, 16, 32)
		if convErr != nil || !utf8.ValidRune(rune(v)) {
			return 0, l.err("hex escape is not a valid code point")
		}
		return rune(v), nil
	default:
		if b >= 'A' && b <= 'Z' {
			return rune(b - 'A' + 1), nil
		}
		if b >= 'a' && b <= 'z' {
			return rune(b - 'a' + 1), nil
		}
		return 0, l.err(fmt.Sprintf("invalid caret escape: ^%c", b))
	}
}

// appendSourceRune appends the already-consumed byte b to out, stepping
// back to decode a full rune when b is not ASCII.
func (l *Lexer) appendSourceRune(out []rune, b byte) ([]rune, error) {
	if b < utf8.RuneSelf {
		return append(out, rune(b)), nil
	}
	// Non-ASCII: back up one byte and decode the rune from its start.
	l.cur--
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	if r == utf8.RuneError && size == 1 {
		return nil, l.err("invalid UTF-8 in source")
	}
	l.cur += size
	l.col += size - 1
	return append(out, r), nil
}

// scanQuoted parses a single-line "..." string with caret escapes. The
// caller has rewound to the opening quote.
func (l *Lexer) scanQuoted() (string, error) {
	l.advance() // opening '"'
	var out []rune
	for {
		b, ok := l.peek()
		if !ok {
			return "", l.errIncomplete("string was not terminated")
		}
		if b == '\n' {
			return "", l.err("string crosses a line break; use {braces} for multi-line text")
		}
		if b == 0 {
			return "", l.err("illegal NUL byte in string")
		}
		l.advance()
		if b == '"' {
			return string(out), nil
		}
		if b == '^' {
			r, err := l.scanCaretEscape()
			if err != nil {
				return "", err
			}
			out = append(out, r)
			continue
		}
		var err error
		out, err = l.appendSourceRune(out, b)
		if err != nil {
			return "", err
		}
	}
}

// scanBraced parses a {...} string. Braces nest, caret escapes apply, and
// line breaks are kept literally. The caller has rewound to the opening
// brace.
func (l *Lexer) scanBraced() (string, error) {
	l.advance() // opening '{'
	depth := 1
	var out []rune
	for {
		b, ok := l.peek()
		if !ok {
			return "", l.errIncomplete("braced string was not terminated")
		}
		if b == 0 {
			return "", l.err("illegal NUL byte in string")
		}
		l.advance()
		switch b {
		case '{':
			depth++
			out = append(out, '{')
		case '}':
			depth--
			if depth == 0 {
				return string(out), nil
			}
			out = append(out, '}')
		case '^':
			r, err := l.scanCaretEscape()
			if err != nil {
				return "", err
			}
			out = append(out, r)
		default:
			var err error
			out, err = l.appendSourceRune(out, b)
			if err != nil {
				return "", err
			}
		}
	}
}

// scanBinary parses the body of #{hex}; the '#' and '{' have been
// consumed. Whitespace may separate digit pairs; the digit count must be
// even.
func (l *Lexer) scanBinary() ([]byte, error) {
	var digits []byte
	for {
		b, ok := l.peek()
		if !ok {
			return nil, l.errIncomplete("binary was not terminated")
		}
		l.advance()
		switch {
		case b == '}':
			if len(digits)%2 != 0 {
				return nil, l.errSpan("binary needs an even number of hex digits")
			}
			out, convErr := hex.DecodeString(string(digits))
			if convErr != nil {
				return nil, l.errSpan("invalid binary")
			}
			return out, nil
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			// digit grouping
		case isHex(b):
			digits = append(digits, b)
		default:
			return nil, l.err(fmt.Sprintf("invalid hex digit in binary: %q", b))
		}
	}
}

// scanTag parses <...> after the opening '<' has been consumed. A tag may
// contain spaces but not line breaks.
func (l *Lexer) scanTag() (string, error) {
	for {
		b, ok := l.peek()
		if !ok {
			return "", l.errIncomplete("tag was not terminated")
		}
		if b == '\n' {
			return "", l.err("tag crosses a line break")
		}
		l.advance()
		if b == '>' {
			return l.src[l.start+1 : l.cur-1], nil
		}
	}
}

// scanIssue parses the payload after a consumed '#'. An empty payload is
// the zero-length issue.
func (l *Lexer) scanIssue() (Token, error) {
	l.wordSpan()
	payload := l.src[l.start+1 : l.cur]
	if err := l.validateSpelling(payload, false); err != nil {
		return Token{}, err
	}
	return l.addToken(ISSUE, payload), nil
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespace()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case 0:
		return Token{}, l.errSpan("illegal NUL byte in source")
	case '[':
		return l.addToken(LBLOCK, nil), nil
	case ']':
		return l.addToken(RBLOCK, nil), nil
	case '(':
		return l.addToken(LGROUP, nil), nil
	case ')':
		return l.addToken(RGROUP, nil), nil
	case '/', '.':
		return l.addToken(SEP, string(ch)), nil
	case ',':
		return Token{}, l.errSpan("unexpected ','")
	case '}':
		return Token{}, l.errSpan("unexpected '}'")
	case '"':
		l.rewindToStart()
		text, err := l.scanQuoted()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(TEXT, text), nil
	case '{':
		l.rewindToStart()
		text, err := l.scanBraced()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(TEXT, text), nil
	case ':':
		return l.scanPrefixed(GETWORD)
	case '\'':
		return l.scanPrefixed(QUOTED)
	case '@':
		if b, ok := l.peek(); ok && b == '[' {
			l.advance()
			return l.addToken(LSYMBLOCK, nil), nil
		}
		if b, ok := l.peek(); ok && b == '(' {
			l.advance()
			return l.addToken(LSYMGROUP, nil), nil
		}
		return Token{}, l.errSpan("unexpected '@'")
	case '#':
		if b, ok := l.peek(); ok && b == '{' {
			l.advance()
			bs, err := l.scanBinary()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(BINARY, bs), nil
		}
		if b, ok := l.peek(); ok && b == '[' {
			l.advance()
			return l.addToken(CONSTRUCT, nil), nil
		}
		return l.scanIssue()
	case '<':
		if l.operatorAhead() {
			l.rewindToStart()
			return l.scanOperatorWord()
		}
		body, err := l.scanTag()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(TAG, body), nil
	case '>', '=':
		l.rewindToStart()
		return l.scanOperatorWord()
	}

	// Numbers: a digit, or a sign directly followed by a digit.
	if isDigit(ch) {
		l.rewindToStart()
		return l.scanNumber()
	}
	if ch == '+' || ch == '-' {
		if b, ok := l.peek(); ok && isDigit(b) {
			l.rewindToStart()
			return l.scanNumber()
		}
	}

	// Everything else begins a word.
	l.rewindToStart()
	return l.scanWord()
}
