// errors.go: user-facing error wrapping and caret-snippet rendering
//
// This module turns lexer/parser/evaluator diagnostics into readable,
// Python-style error snippets with a caret pointing at the offending column.
// The primary entry point is `WrapErrorWithSource`, which recognizes *Error
// values, formats them, and returns a new error containing a multi-line
// snippet:
//
//	PARSE ERROR at 2:14: expected ')'
//
//	   1 | let x 5 in
//	   2 |   x + (1 * 2
//	     |              ^
//
// The snippet includes up to one line of context before and after the error,
// numbers the lines, and places a caret under the 1-based column.
//
// Diagnostics carry byte-offset spans (`Span`), not line/column pairs; the
// renderer computes lines and columns from the span and the source text, and
// clamps out-of-range positions so the caret can always be drawn.
package eurydice

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [StartByte, EndByte) into the source text.
// Spans are attached to tokens, expression nodes, and diagnostics, and are
// invariant once parsed.
type Span struct {
	StartByte int
	EndByte   int
}

// DiagKind classifies a diagnostic by the stage that produced it.
type DiagKind int

const (
	DiagLex   DiagKind = iota // unrecognized input bytes
	DiagParse                 // expected token/production not found
	DiagEval                  // runtime failure (unbound name, type error, ...)
)

func (k DiagKind) String() string {
	switch k {
	case DiagLex:
		return "LEXICAL ERROR"
	case DiagParse:
		return "PARSE ERROR"
	case DiagEval:
		return "EVAL ERROR"
	default:
		return "ERROR"
	}
}

// Error is the single structured diagnostic type produced by Tokenize, Parse
// and Eval. Pos points at the offending token or sub-expression.
type Error struct {
	Kind DiagKind
	Msg  string
	Pos  Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos.StartByte, e.Msg)
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes *Error values and leaves
// other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	line, col := lineCol(src, e.Pos.StartByte)
	return fmt.Errorf("%s", prettyErrorString(src, e.Kind.String(), line, col, e.Msg))
}

// lineCol converts a byte offset into 1-based (line, col) coordinates,
// clamping the offset to the source bounds.
func lineCol(src string, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line := 1 + strings.Count(src[:offset], "\n")
	lastNL := strings.LastIndex(src[:offset], "\n")
	if lastNL < 0 {
		return line, offset + 1
	}
	return line, offset - lastNL
}

// prettyErrorString builds a Python-like snippet with a header and a caret.
// It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorString(src, header string, line, col int, msg string) string {
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
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
