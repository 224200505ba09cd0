package eurydice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FormatValue_Scalars(t *testing.T) {
	require.Equal(t, "42", FormatValue(Num(42)))
	require.Equal(t, "-3", FormatValue(Num(-3)))
	require.Equal(t, "2.5", FormatValue(Num(2.5)))
	require.Equal(t, "0.1", FormatValue(Num(0.1)))
	require.Equal(t, "1e+21", FormatValue(Num(1e21)))
	require.Equal(t, "()", FormatValue(Null))
	require.Equal(t, `"hi"`, FormatValue(Str("hi")))
}

func Test_FormatValue_StringEscapes(t *testing.T) {
	require.Equal(t, `"a\nb"`, FormatValue(Str("a\nb")))
	require.Equal(t, `"say \"hi\""`, FormatValue(Str(`say "hi"`)))
	require.Equal(t, `"tab\there"`, FormatValue(Str("tab\there")))
}

func Test_FormatValue_Arrays(t *testing.T) {
	require.Equal(t, "[]", FormatValue(Arr(nil)))
	require.Equal(t, "[1. 2. 3]", FormatValue(Arr([]Value{Num(1), Num(2), Num(3)})))
	require.Equal(t, `[1. "a". [2. ()]]`, FormatValue(Arr([]Value{
		Num(1),
		Str("a"),
		Arr([]Value{Num(2), Null}),
	})))
}

func Test_FormatValue_Functions(t *testing.T) {
	require.Equal(t, "[function]", FormatValue(FunVal(&Fun{Param: "x"})))
}

func Test_FormatValue_RoundTripsThroughParser(t *testing.T) {
	// Function-free output is itself a valid expression.
	src := `[1. 2.5. "a\nb". [(). 3]]`
	v := evalSrc(t, src)
	again := evalSrc(t, FormatValue(v))
	require.True(t, deepEqual(v, again), "%s did not round-trip", FormatValue(v))
}
