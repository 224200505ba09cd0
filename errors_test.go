package eurydice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Errors_KindHeaders(t *testing.T) {
	require.Equal(t, "LEXICAL ERROR", DiagLex.String())
	require.Equal(t, "PARSE ERROR", DiagParse.String())
	require.Equal(t, "EVAL ERROR", DiagEval.String())
}

func Test_Errors_CaretSnippet(t *testing.T) {
	src := "let x 5 in\n  x + (1 * 2"
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	require.Error(t, err)

	msg := err.Error()
	require.Contains(t, msg, "PARSE ERROR at 2:")
	require.Contains(t, msg, "x + (1 * 2")
	require.Contains(t, msg, "^")
	// Context line before the error is shown with its number.
	require.Contains(t, msg, "1 | let x 5 in")
}

func Test_Errors_CaretColumn(t *testing.T) {
	src := "1 + nope"
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	require.Error(t, err)

	lines := strings.Split(err.Error(), "\n")
	var srcLine, caretLine string
	for i, ln := range lines {
		if strings.Contains(ln, "| 1 + nope") {
			srcLine = ln
			caretLine = lines[i+1]
		}
	}
	require.NotEmpty(t, srcLine, "snippet missing source line:\n%s", err)
	// The caret sits under the "n" of nope.
	require.Equal(t, strings.Index(srcLine, "nope"), strings.Index(caretLine, "^"))
}

func Test_Errors_LexicalPosition(t *testing.T) {
	ip := NewInterpreter()
	_, err := ip.EvalSource("1 + $")
	require.Error(t, err)
	require.Contains(t, err.Error(), "LEXICAL ERROR at 1:5")
}

func Test_Errors_WrapLeavesForeignErrorsAlone(t *testing.T) {
	err := WrapErrorWithSource(stringErr("boom"), "src")
	require.EqualError(t, err, "boom")
}

type stringErr string

func (e stringErr) Error() string { return string(e) }

func Test_Errors_OffsetClamping(t *testing.T) {
	e := &Error{Kind: DiagEval, Msg: "late", Pos: Span{StartByte: 9999, EndByte: 10000}}
	wrapped := WrapErrorWithSource(e, "short")
	require.Contains(t, wrapped.Error(), "EVAL ERROR")
	require.Contains(t, wrapped.Error(), "late")
}
