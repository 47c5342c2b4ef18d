// convert.go: coercion between value kinds.
//
// What this file does
// -------------------
// To builds a value of a requested kind from an existing value. The legal
// pairings are narrow and explicit:
//
//   - word-like kinds (word, get-word, issue, text) interconvert by
//     spelling. A spelling that could not have been scanned as a word
//     refuses to become one, and the zero-length issue has no text form
//     (its payload would be a zero byte).
//   - any composite reshapes into a block, group, sym-block, or sym-group;
//     a non-composite wraps into a one-element sequence. The new value gets
//     a fresh Series (elements and markers copied, flags clear) so the
//     source's protection state never leaks.
//   - a composite becomes a path or tuple only if every element passes the
//     assembler's sequence-element rules.
//
// Everything else fails with a *ConversionError; the error's ID narrows
// the cause (bad-cast for an unsupported pairing, identifiers from the
// scan family when the target kind's own rules rejected the payload).
// A failed conversion never mutates the source.
package loom

import (
	"fmt"
	"strings"
)

// To converts v to the requested kind, or fails with a *ConversionError.
func To(kind Kind, v Value) (Value, error) {
	if v.Kind == kind {
		switch {
		case v.IsComposite():
			return Seq(kind, reshape(v.Series())), nil
		case kind == KBinary:
			return Bin(append([]byte(nil), v.Bytes()...)), nil
		default:
			return v, nil
		}
	}

	switch kind {
	case KWord, KGetWord:
		sp, ok := spellingOf(v)
		if !ok {
			break
		}
		if !validWordSpelling(sp) {
			return Blank, convErr(ErrScanInvalid, kind, v, fmt.Sprintf("%q is not a valid word spelling", sp))
		}
		if kind == KWord {
			return Word(sp), nil
		}
		return GetWord(sp), nil

	case KIssue:
		sp, ok := spellingOf(v)
		if !ok {
			break
		}
		return Issue(sp), nil

	case KText:
		switch v.Kind {
		case KIssue:
			if v.Spelling() == "" {
				return Blank, convErr(ErrIllegalZeroByte, kind, v, "zero-length issue has no text form")
			}
			return Text(v.Spelling()), nil
		case KWord, KGetWord, KTag:
			return Text(v.Spelling()), nil
		}

	case KBlock, KGroup, KSymBlock, KSymGroup:
		if v.IsComposite() {
			return Seq(kind, reshape(v.Series())), nil
		}
		return Seq(kind, NewSeries(v)), nil

	case KPath, KTuple:
		if !v.IsComposite() {
			break
		}
		s := v.Series()
		if s.Len() < 2 {
			return Blank, convErr(ErrInvalidSequence, kind, v, "needs at least 2 elements")
		}
		for i := 0; i < s.Len(); i++ {
			el, _ := s.Pick(i)
			if !legalSeqElement(kind, el) {
				return Blank, convErr(ErrInvalidSequence, kind, v, fmt.Sprintf("%s cannot hold %s", kind, el.Kind))
			}
		}
		return Seq(kind, reshape(s)), nil
	}

	return Blank, convErr(ErrBadCast, kind, v, "")
}

//// END_OF_PUBLIC

func convErr(id string, to Kind, v Value, msg string) error {
	return &ConversionError{ID: id, From: v.Kind, To: to, Msg: msg}
}

// reshape builds a fresh Series from src: elements are shared (shallow),
// markers copied, flags left clear.
func reshape(src *Series) *Series {
	ns := NewSeries(src.Values()...)
	for i := 0; i <= ns.Len(); i++ {
		ns.marks[i] = src.Mark(i)
	}
	return ns
}

func spellingOf(v Value) (string, bool) {
	switch v.Kind {
	case KWord, KGetWord, KText, KIssue:
		return v.Spelling(), true
	}
	return "", false
}

// validWordSpelling reports whether the scanner would read s back as one
// word token: non-empty, not the blank literal, no leading digit or
// signed digit, and no delimiter or reserved character anywhere.
func validWordSpelling(s string) bool {
	if s == "" || s == "_" || isDigit(s[0]) {
		return false
	}
	if (s[0] == '+' || s[0] == '-') && len(s) > 1 && isDigit(s[1]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if isHardStop(s[i]) || strings.IndexByte(badSpanChars, s[i]) >= 0 {
			return false
		}
	}
	return true
}
