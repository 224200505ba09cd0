// printer.go — rendering runtime Values back to surface syntax.
//
// FormatValue is the canonical, test-stable rendering used by the CLI, the
// REPL, and every "Expected X, got Y" runtime error. Arrays print with the
// language's own period separator so output is itself a valid expression
// wherever it contains no functions.
package eurydice

import (
	"math"
	"strconv"
	"strings"
)

// FormatValue returns the canonical string form of a runtime value.
func FormatValue(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Tag {
	case VTNull:
		b.WriteString("()")
	case VTNum:
		b.WriteString(formatNumber(v.Data.(float64)))
	case VTStr:
		b.WriteString(quoteString(v.Data.(string)))
	case VTArray:
		b.WriteByte('[')
		for i, x := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(". ")
			}
			writeValue(b, x)
		}
		b.WriteByte(']')
	case VTFun:
		b.WriteString("[function]")
	default:
		b.WriteString("<unknown>")
	}
}

// formatNumber prints integral values without a decimal point and
// everything else in Go's shortest round-trip form. Very large integral
// floats fall through to the exponent form rather than printing a long
// run of zero digits.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
