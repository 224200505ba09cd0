package eurydice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Run_Success(t *testing.T) {
	ip := NewInterpreter()
	res := ip.Run("3 + 4")
	require.True(t, res.Success)
	require.Equal(t, "7", res.Output)
}

func Test_Run_FailuresFoldIntoOutput(t *testing.T) {
	ip := NewInterpreter()

	res := ip.Run("1 + $")
	require.False(t, res.Success)
	require.Contains(t, res.Output, "LEXICAL ERROR")

	res = ip.Run("(1 + 2")
	require.False(t, res.Success)
	require.Contains(t, res.Output, "PARSE ERROR")

	res = ip.Run("nope + 1")
	require.False(t, res.Success)
	require.Contains(t, res.Output, "EVAL ERROR")
	require.Contains(t, res.Output, "Undefined variable: nope")
}

func Test_Run_WireShape(t *testing.T) {
	ip := NewInterpreter()
	raw, err := json.Marshal(ip.Run(`"ok"`))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, map[string]interface{}{
		"success": true,
		"output":  `"ok"`,
	}, decoded)
}
