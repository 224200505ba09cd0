package eurydice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err, "source: %s", src)
	return e
}

// asApply asserts e is an application and returns its parts.
func asApply(t *testing.T, e Expr) (Expr, Expr) {
	t.Helper()
	app, ok := e.(*ApplyExpr)
	require.True(t, ok, "want application, got %T", e)
	return app.Callee, app.Arg
}

func asVar(t *testing.T, e Expr) string {
	t.Helper()
	v, ok := e.(*VarRef)
	require.True(t, ok, "want variable, got %T", e)
	return v.Name
}

func asNum(t *testing.T, e Expr) float64 {
	t.Helper()
	n, ok := e.(*NumberLit)
	require.True(t, ok, "want number literal, got %T", e)
	return n.Value
}

func Test_Parser_OperatorDesugaring(t *testing.T) {
	// 1 + 2  →  Apply(Apply(Var("+"), 1), 2)
	callee, arg := asApply(t, mustParse(t, "1 + 2"))
	require.Equal(t, 2.0, asNum(t, arg))
	op, lhs := asApply(t, callee)
	require.Equal(t, "+", asVar(t, op))
	require.Equal(t, 1.0, asNum(t, lhs))
}

func Test_Parser_JuxtapositionNestsRight(t *testing.T) {
	// 5 d 20  →  Apply(5, Apply(d, 20))
	callee, arg := asApply(t, mustParse(t, "5 d 20"))
	require.Equal(t, 5.0, asNum(t, callee))
	inner, sides := asApply(t, arg)
	require.Equal(t, "d", asVar(t, inner))
	require.Equal(t, 20.0, asNum(t, sides))
}

func Test_Parser_CommaIsLowPrecedenceApplication(t *testing.T) {
	// highest 2, rolls  →  Apply(Apply(highest, 2), rolls)
	callee, arg := asApply(t, mustParse(t, "highest 2, rolls"))
	require.Equal(t, "rolls", asVar(t, arg))
	inner, n := asApply(t, callee)
	require.Equal(t, "highest", asVar(t, inner))
	require.Equal(t, 2.0, asNum(t, n))
}

func Test_Parser_CallParens(t *testing.T) {
	// f(1, 2)  →  Apply(Apply(f, 1), 2)
	callee, arg := asApply(t, mustParse(t, "f(1, 2)"))
	require.Equal(t, 2.0, asNum(t, arg))
	inner, first := asApply(t, callee)
	require.Equal(t, "f", asVar(t, inner))
	require.Equal(t, 1.0, asNum(t, first))

	// f() applies the unit value.
	callee, arg = asApply(t, mustParse(t, "f()"))
	require.Equal(t, "f", asVar(t, callee))
	_, ok := arg.(*UnitLit)
	require.True(t, ok, "want unit argument, got %T", arg)
}

func Test_Parser_GroupingParensDoNotCall(t *testing.T) {
	// With whitespace before "(", this is juxtaposition of a grouped
	// expression, which means the same thing here but must not consume
	// commas as an argument list.
	_, err := Parse("f (1, 2)")
	require.NoError(t, err)
}

func Test_Parser_UnaryDesugaring(t *testing.T) {
	callee, arg := asApply(t, mustParse(t, "-5"))
	require.Equal(t, "__neg", asVar(t, callee))
	require.Equal(t, 5.0, asNum(t, arg))

	callee, _ = asApply(t, mustParse(t, "!x"))
	require.Equal(t, "__not", asVar(t, callee))
}

func Test_Parser_ArrayLiterals(t *testing.T) {
	arr, ok := mustParse(t, "[1. 2. 3]").(*ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 3)

	// Trailing separator is allowed.
	arr, ok = mustParse(t, "[1. 2.]").(*ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 2)

	arr, ok = mustParse(t, "[]").(*ArrayLit)
	require.True(t, ok)
	require.Empty(t, arr.Elems)
}

func Test_Parser_FunLitBodyStopsAtComma(t *testing.T) {
	// reroll @_ d 20, @x x < 5  →  Apply(Apply(reroll, fn), fn)
	callee, arg := asApply(t, mustParse(t, "reroll @_ d 20, @x x < 5"))
	cond, ok := arg.(*FunLit)
	require.True(t, ok, "want function literal, got %T", arg)
	require.Equal(t, "x", cond.Param)

	inner, roll := asApply(t, callee)
	require.Equal(t, "reroll", asVar(t, inner))
	rollFn, ok := roll.(*FunLit)
	require.True(t, ok, "want function literal, got %T", roll)
	require.Equal(t, "_", rollFn.Param)
}

func Test_Parser_LetAndIf(t *testing.T) {
	le, ok := mustParse(t, "let x 1 and y 2 in x + y").(*LetExpr)
	require.True(t, ok)
	require.Len(t, le.Bindings, 2)
	require.Equal(t, "x", le.Bindings[0].Name)
	require.Equal(t, "y", le.Bindings[1].Name)

	ie, ok := mustParse(t, "if x then 1 else 2").(*IfExpr)
	require.True(t, ok)
	require.Equal(t, "x", asVar(t, ie.Cond))
}

func Test_Parser_SummationIsAVariable(t *testing.T) {
	callee, _ := asApply(t, mustParse(t, "...[1. 2]"))
	require.Equal(t, "...", asVar(t, callee))
}

func Test_Parser_Errors(t *testing.T) {
	for _, src := range []string{
		"",
		"1 +",
		"(1",
		"[1. 2",
		"let x in x",
		"if 1 then 2",
		"@ x",
		"1)",
		"1 + 2]",
	} {
		_, err := Parse(src)
		require.Error(t, err, "source: %s", src)
	}
}

func Test_Parser_SpansCoverSource(t *testing.T) {
	e := mustParse(t, "1 + 2 * 3")
	require.Equal(t, 0, e.Span().StartByte)
	require.Equal(t, 9, e.Span().EndByte)
}
