// builtins.go — the core (non-dice) builtin library.
//
// Every operator in the surface syntax desugars to an application of a
// builtin bound in Core under the operator's own spelling: `a + b` is
// Apply(Apply(Var("+"), a), b). The builtins here are therefore ordinary
// curried function values; `+ 1` is a legal partial application and can be
// passed to map or reduce like any user function.
//
// Builtins that never invoke user code run to completion inside their impl
// and Yield once. map and reduce invoke their function arguments through
// the Machine's Call/PushCont protocol so that deeply nested callbacks
// cannot exhaust the Go stack.
package eurydice

import (
	"math"
	"sort"
)

// ───────────────────────── argument guards ─────────────────────────

func needNum(m *Machine, v Value) float64 {
	if v.Tag != VTNum {
		m.Fail("Expected number, got %s", FormatValue(v))
	}
	return v.Data.(float64)
}

func needArr(m *Machine, v Value) []Value {
	if v.Tag != VTArray {
		m.Fail("Expected array, got %s", FormatValue(v))
	}
	return v.Data.([]Value)
}

func needFun(m *Machine, v Value) Value {
	if v.Tag != VTFun {
		m.Fail("Expected function, got %s", FormatValue(v))
	}
	return v
}

// needNums checks every element of an array is a number and copies them out.
func needNums(m *Machine, v Value) []float64 {
	xs := needArr(m, v)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = needNum(m, x)
	}
	return out
}

// ───────────────────────── equality & truth ─────────────────────────

// deepEqual is the language's structural equality. Functions are opaque:
// two function values are never equal, not even a value to itself.
func deepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTNum:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !deepEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTFun:
		return false
	}
	return false
}

func boolNum(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// ───────────────────────── polymorphic + ─────────────────────────

// addValues implements `+` for one pair of operands. Numbers add, strings
// concatenate, arrays concatenate; an array plus a non-array appends (or
// prepends) the scalar. The summation builtin reuses this for its fold.
func addValues(m *Machine, a, b Value) Value {
	switch {
	case a.Tag == VTNum && b.Tag == VTNum:
		return Num(a.Data.(float64) + b.Data.(float64))
	case a.Tag == VTStr && b.Tag == VTStr:
		return Str(a.Data.(string) + b.Data.(string))
	case a.Tag == VTArray && b.Tag == VTArray:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		out := make([]Value, 0, len(xs)+len(ys))
		out = append(out, xs...)
		out = append(out, ys...)
		return Arr(out)
	case a.Tag == VTArray:
		xs := a.Data.([]Value)
		out := make([]Value, 0, len(xs)+1)
		out = append(out, xs...)
		out = append(out, b)
		return Arr(out)
	case b.Tag == VTArray:
		ys := b.Data.([]Value)
		out := make([]Value, 0, len(ys)+1)
		out = append(out, a)
		out = append(out, ys...)
		return Arr(out)
	}
	m.Fail("Cannot add %s and %s", FormatValue(a), FormatValue(b))
	return Null
}

// ───────────────────────── registration ─────────────────────────

func registerCore(ip *Interpreter) {
	reg := ip.RegisterBuiltin

	// numBinop registers a strict numeric binary operator.
	numBinop := func(name string, f func(m *Machine, a, b float64) float64) {
		reg(name, 2, func(_ *Interpreter, m *Machine, args []Value) {
			a, b := needNum(m, args[0]), needNum(m, args[1])
			m.Yield(Num(f(m, a, b)))
		})
	}
	// cmpOp registers a numeric comparison yielding 1 or 0.
	cmpOp := func(name string, f func(a, b float64) bool) {
		reg(name, 2, func(_ *Interpreter, m *Machine, args []Value) {
			a, b := needNum(m, args[0]), needNum(m, args[1])
			m.Yield(boolNum(f(a, b)))
		})
	}
	// numUnop registers a strict numeric unary function.
	numUnop := func(name string, f func(a float64) float64) {
		reg(name, 1, func(_ *Interpreter, m *Machine, args []Value) {
			m.Yield(Num(f(needNum(m, args[0]))))
		})
	}

	reg("+", 2, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(addValues(m, args[0], args[1]))
	})
	numBinop("-", func(_ *Machine, a, b float64) float64 { return a - b })
	numBinop("*", func(_ *Machine, a, b float64) float64 { return a * b })
	numBinop("/", func(m *Machine, a, b float64) float64 {
		if b == 0 {
			m.Fail("Division by zero")
		}
		return a / b
	})
	numBinop("%", func(m *Machine, a, b float64) float64 {
		if b == 0 {
			m.Fail("Division by zero")
		}
		return math.Mod(a, b)
	})
	numBinop("**", func(_ *Machine, a, b float64) float64 { return math.Pow(a, b) })

	cmpOp("<", func(a, b float64) bool { return a < b })
	cmpOp("<=", func(a, b float64) bool { return a <= b })
	cmpOp(">", func(a, b float64) bool { return a > b })
	cmpOp(">=", func(a, b float64) bool { return a >= b })

	reg("=", 2, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(boolNum(deepEqual(args[0], args[1])))
	})
	reg("!=", 2, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(boolNum(!deepEqual(args[0], args[1])))
	})

	// | and & test truthiness of both operands; there is no short circuit,
	// the desugaring to curried application has evaluated both already.
	reg("|", 2, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(boolNum(valueTruthy(args[0]) || valueTruthy(args[1])))
	})
	reg("&", 2, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(boolNum(valueTruthy(args[0]) && valueTruthy(args[1])))
	})

	numUnop("__pos", func(a float64) float64 { return a })
	numUnop("__neg", func(a float64) float64 { return -a })
	reg("__not", 1, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(boolNum(!valueTruthy(args[0])))
	})

	numUnop("floor", math.Floor)
	numUnop("ceil", math.Ceil)
	numUnop("round", math.Round)
	numUnop("abs", math.Abs)

	reg("len", 1, func(_ *Interpreter, m *Machine, args []Value) {
		m.Yield(Num(float64(len(needArr(m, args[0])))))
	})

	reg("sort", 1, func(_ *Interpreter, m *Machine, args []Value) {
		ns := needNums(m, args[0])
		sort.Float64s(ns)
		out := make([]Value, len(ns))
		for i, n := range ns {
			out[i] = Num(n)
		}
		m.Yield(Arr(out))
	})

	reg("min", 1, func(_ *Interpreter, m *Machine, args []Value) {
		ns := needNums(m, args[0])
		if len(ns) == 0 {
			m.Fail("min of an empty array")
		}
		best := ns[0]
		for _, n := range ns[1:] {
			best = math.Min(best, n)
		}
		m.Yield(Num(best))
	})
	reg("max", 1, func(_ *Interpreter, m *Machine, args []Value) {
		ns := needNums(m, args[0])
		if len(ns) == 0 {
			m.Fail("max of an empty array")
		}
		best := ns[0]
		for _, n := range ns[1:] {
			best = math.Max(best, n)
		}
		m.Yield(Num(best))
	})

	reg("map", 2, func(_ *Interpreter, m *Machine, args []Value) {
		fn := needFun(m, args[0])
		xs := needArr(m, args[1])
		out := make([]Value, 0, len(xs))
		var next func()
		next = func() {
			if len(out) == len(xs) {
				m.Yield(Arr(out))
				return
			}
			x := xs[len(out)]
			m.PushCont(func(v Value) { out = append(out, v); next() })
			m.Call(fn, x)
		}
		next()
	})

	// reduce f init xs: f is curried binary, applied as (f acc) x.
	reg("reduce", 3, func(_ *Interpreter, m *Machine, args []Value) {
		fn := needFun(m, args[0])
		acc := args[1]
		xs := needArr(m, args[2])
		i := 0
		var next func()
		next = func() {
			if i == len(xs) {
				m.Yield(acc)
				return
			}
			x := xs[i]
			i++
			m.PushCont(func(partial Value) {
				m.PushCont(func(v Value) { acc = v; next() })
				m.Call(partial, x)
			})
			m.Call(fn, acc)
		}
		next()
	})

	// "..." sums an array by folding +, so it inherits +'s polymorphism:
	// it totals numbers, concatenates strings, and flattens one level of
	// nested arrays. The empty array sums to the unit value.
	reg("...", 1, func(_ *Interpreter, m *Machine, args []Value) {
		xs := needArr(m, args[0])
		if len(xs) == 0 {
			m.Yield(Null)
			return
		}
		acc := xs[0]
		for _, x := range xs[1:] {
			acc = addValues(m, acc, x)
		}
		m.Yield(acc)
	})
}
