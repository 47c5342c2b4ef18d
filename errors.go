// errors.go: typed failures and caret-snippet rendering
//
// What this file does
// -------------------
// Every failure this package can produce belongs to one of three families:
//
//   - *ScanError:       malformed source text, raised by the lexer and the
//     sequence assembler. Carries a 1-based line, a 0-based
//     column, and an Incomplete flag for input that merely
//     ended too early (so a REPL can ask for another line).
//   - *ConversionError: an illegal coercion between value kinds.
//   - *ProtectionError: a structural mutation refused by the guard.
//
// Each error carries a stable symbolic identifier (the ID field, one of the
// Err* constants below) so callers can match failures without parsing
// message text. `ErrorID` extracts that identifier from any of the three
// families.
//
// `WrapErrorWithSource` recognizes *ScanError and returns a new error whose
// message is a multi-line, Python-style snippet with a caret under the
// offending column:
//
//	SCAN ERROR at 2:5: unterminated string
//
//	   1 | print [
//	   2 |     "abc
//	       |     ^
//
// Other error kinds pass through unchanged. The renderer clamps line and
// column to the source bounds, so malformed coordinates never crash it.
package loom

import (
	"fmt"
	"strings"
)

// Stable error identifiers surfaced to callers.
const (
	ErrScanInvalid     = "scan-invalid"     // malformed token
	ErrInvalidSequence = "invalid-sequence" // illegal path/tuple element or nesting
	ErrIllegalZeroByte = "illegal-zero-byte"
	ErrProtected       = "protected"
	ErrSeriesHeld      = "series-held"
	ErrBadCast         = "bad-cast" // unsupported conversion pairing
)

/* ===========================
   ERROR TYPES
   =========================== */

// ScanError reports malformed source text. ID is ErrScanInvalid for token
// failures and ErrInvalidSequence for path/tuple assembly failures. Line is
// 1-based; Col is 0-based (rendered 1-based). Incomplete marks input that
// ended mid-token or mid-bracket and could become valid with more text.
type ScanError struct {
	ID         string
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("SCAN ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ConversionError reports an illegal coercion. ID is ErrBadCast for an
// unsupported pairing, or one of the scan identifiers when the target kind's
// own validity rules rejected the payload (for example ErrIllegalZeroByte
// when rendering a zero-length issue as text).
type ConversionError struct {
	ID   string
	From Kind
	To   Kind
	Msg  string
}

func (e *ConversionError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("CONVERSION ERROR: cannot make %s from %s: %s", e.To, e.From, e.Msg)
	}
	return fmt.Sprintf("CONVERSION ERROR: cannot make %s from %s", e.To, e.From)
}

// ProtectionError reports a mutation refused by the guard. ID is
// ErrProtected or ErrSeriesHeld; Op names the refused operation.
type ProtectionError struct {
	ID string
	Op string
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("PROTECTION ERROR: cannot %s: series is %s", e.Op, e.ID)
}

/* ===========================
   PUBLIC HELPERS
   =========================== */

// ErrorID returns the stable symbolic identifier carried by err, or "" when
// err is not one of this package's error types.
func ErrorID(err error) string {
	switch e := err.(type) {
	case *ScanError:
		return e.ID
	case *ConversionError:
		return e.ID
	case *ProtectionError:
		return e.ID
	default:
		return ""
	}
}

// IsIncomplete reports whether err is a ScanError for input that ended
// mid-token or mid-bracket. REPLs use this to prompt for a continuation
// line instead of reporting a failure.
func IsIncomplete(err error) bool {
	if se, ok := err.(*ScanError); ok {
		return se.Incomplete
	}
	return false
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes *ScanError and leaves other
// errors untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with an optional source name
// (file path or REPL label) included in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	if se, ok := err.(*ScanError); ok {
		// Col is 0-based; render as 1-based.
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "SCAN ERROR", srcName, se.Line, se.Col+1, se.Msg))
	}
	return err
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: snippet rendering
   =========================== */

// prettyErrorStringLabeled builds a Python-like snippet with a header and a
// caret. It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad > len(lineTxt) {
		caretPad = len(lineTxt)
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
