// eval.go — the evaluation engine: an explicit-stack, continuation-passing
// tree walker.
//
// Evaluation is deliberately not recursive. The Machine keeps two stacks:
//
//   - a work stack of pending (expression, environment) frames, and
//   - a continuation stack of one-argument callbacks, each consuming the
//     value produced by the frame pushed most recently above it.
//
// The driving loop pops one work frame and dispatches on its node kind.
// Leaves yield a value immediately; composite nodes push a sub-expression
// plus a continuation describing what to do with its result. Exactly one
// continuation fires per completed work frame, and a yielded value is always
// consumed by the top of the continuation stack.
//
// The point of the indirection is that builtins are first-class participants
// in control flow: map, reduce, reroll and explode invoke their function
// arguments by pushing work and continuations through the same loop rather
// than calling back into the evaluator natively. Stack depth therefore stays
// bounded by expression nesting, not by how many times a builtin re-enters
// user code.
//
// Failures panic a *Error carrying the failing node's span; run recovers it
// at the top and returns it as an ordinary error.
package eurydice

import (
	"fmt"
	"math"
)

// Machine executes one evaluation run. It is created per Eval call and
// never shared; see interpreter.go for the entry points.
type Machine struct {
	ip    *Interpreter
	work  []frame
	conts []func(Value)

	pending    Value
	hasPending bool

	at Span // span of the node or application currently executing
}

type frame struct {
	expr Expr
	env  *Env
}

// Yield delivers the result of the current work frame to the innermost
// pending continuation. Every step — including every builtin invocation —
// must produce exactly one result, either by yielding or by pushing work
// whose eventual value yields in its place.
func (m *Machine) Yield(v Value) {
	if m.hasPending {
		panic(&Error{Kind: DiagEval, Msg: "internal: step produced two results", Pos: m.at})
	}
	m.pending = v
	m.hasPending = true
}

// PushCont registers the consumer for the value produced by whatever work
// is pushed next.
func (m *Machine) PushCont(k func(Value)) { m.conts = append(m.conts, k) }

// Call schedules the application of fn to an already-evaluated argument.
// The continuation pushed most recently receives the result. Suspending
// builtins use this to invoke their function arguments.
func (m *Machine) Call(fn Value, arg Value) {
	if fn.Tag != VTFun {
		m.Fail("Expected function, got %s", FormatValue(fn))
	}
	m.applyFun(fn.Data.(*Fun), arg, m.at)
}

// Fail aborts the evaluation with an error attributed to the currently
// executing node.
func (m *Machine) Fail(format string, args ...interface{}) {
	m.failAt(m.at, format, args...)
}

func (m *Machine) failAt(sp Span, format string, args ...interface{}) {
	panic(&Error{Kind: DiagEval, Msg: fmt.Sprintf(format, args...), Pos: sp})
}

func (m *Machine) pushEval(e Expr, env *Env) {
	m.work = append(m.work, frame{expr: e, env: env})
}

// run drives the loop to completion for one expression tree.
func (m *Machine) run(expr Expr, env *Env) (out Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				out, err = Value{}, e
				return
			}
			panic(r)
		}
	}()

	var result Value
	done := false
	m.PushCont(func(v Value) { result = v; done = true })
	m.pushEval(expr, env)

	for !done {
		if m.hasPending {
			m.hasPending = false
			if len(m.conts) == 0 {
				panic(&Error{Kind: DiagEval, Msg: "internal: value with no consumer", Pos: m.at})
			}
			k := m.conts[len(m.conts)-1]
			m.conts = m.conts[:len(m.conts)-1]
			k(m.pending)
			continue
		}
		f := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]
		m.at = f.expr.Span()
		m.step(f)
	}
	return result, nil
}

// valueTruthy implements the language's conditional test: only strictly
// positive numbers are true. Zero, negative numbers, and every non-number
// value are false.
func valueTruthy(v Value) bool {
	return v.Tag == VTNum && v.Data.(float64) > 0
}

// step evaluates one work frame by a single dispatch.
func (m *Machine) step(f frame) {
	switch e := f.expr.(type) {
	case *NumberLit:
		m.Yield(Num(e.Value))

	case *StringLit:
		m.Yield(Str(e.Value))

	case *UnitLit:
		m.Yield(Null)

	case *VarRef:
		v, ok := f.env.Get(e.Name)
		if !ok {
			m.failAt(e.Span(), "Undefined variable: %s", e.Name)
		}
		m.Yield(v)

	case *FunLit:
		m.Yield(FunVal(&Fun{Param: e.Param, Body: e.Body, Env: f.env}))

	case *ArrayLit:
		m.stepArray(e, f.env)

	case *LetExpr:
		m.stepLet(e, f.env)

	case *IfExpr:
		m.PushCont(func(c Value) {
			if valueTruthy(c) {
				m.pushEval(e.Then, f.env)
			} else {
				m.pushEval(e.Else, f.env)
			}
		})
		m.pushEval(e.Cond, f.env)

	case *ApplyExpr:
		m.stepApply(e, f.env)

	default:
		m.failAt(f.expr.Span(), "internal: unknown expression node %T", f.expr)
	}
}

// stepArray evaluates elements strictly left to right; each element is fully
// evaluated before the next begins, so side-effecting builtins like dice
// rolls execute in source order.
func (m *Machine) stepArray(e *ArrayLit, env *Env) {
	if len(e.Elems) == 0 {
		m.Yield(Arr([]Value{}))
		return
	}
	out := make([]Value, 0, len(e.Elems))
	var next func()
	next = func() {
		if len(out) == len(e.Elems) {
			m.Yield(Arr(out))
			return
		}
		elem := e.Elems[len(out)]
		m.PushCont(func(v Value) { out = append(out, v); next() })
		m.pushEval(elem, env)
	}
	next()
}

// stepLet evaluates every binding initializer against the child frame while
// it is still empty: lookups fall through to the enclosing scope, so
// same-block bindings cannot see each other, while function literals capture
// the child and resolve sibling names correctly by the time they are called.
func (m *Machine) stepLet(e *LetExpr, env *Env) {
	child := NewEnv(env)
	vals := make([]Value, 0, len(e.Bindings))
	var next func()
	next = func() {
		if len(vals) == len(e.Bindings) {
			for i, b := range e.Bindings {
				child.Define(b.Name, vals[i])
			}
			m.pushEval(e.Body, child)
			return
		}
		binding := e.Bindings[len(vals)]
		m.PushCont(func(v Value) { vals = append(vals, v); next() })
		m.pushEval(binding.Value, child)
	}
	next()
}

// stepApply evaluates the callee first, then branches on its runtime type:
// functions are applied once, numbers replicate their argument expression,
// arrays index into themselves.
func (m *Machine) stepApply(e *ApplyExpr, env *Env) {
	m.PushCont(func(cv Value) {
		switch cv.Tag {
		case VTFun:
			fn := cv.Data.(*Fun)
			m.PushCont(func(av Value) { m.applyFun(fn, av, e.Span()) })
			m.pushEval(e.Arg, env)

		case VTNum:
			// "n expr" re-evaluates expr max(round(n), 0) times, each run
			// independent; n ≤ 0 produces [] without touching expr at all.
			n := int(math.Round(cv.Data.(float64)))
			if n <= 0 {
				m.Yield(Arr([]Value{}))
				return
			}
			out := make([]Value, 0, n)
			var next func()
			next = func() {
				if len(out) == n {
					m.Yield(Arr(out))
					return
				}
				m.PushCont(func(v Value) { out = append(out, v); next() })
				m.pushEval(e.Arg, env)
			}
			next()

		case VTArray:
			xs := cv.Data.([]Value)
			m.PushCont(func(iv Value) {
				if iv.Tag != VTNum {
					m.failAt(e.Arg.Span(), "Expected number index, got %s", FormatValue(iv))
				}
				idx := int(math.Round(iv.Data.(float64)))
				if idx < 0 || idx >= len(xs) {
					m.failAt(e.Arg.Span(), "Index %d out of bounds for array of length %d", idx, len(xs))
				}
				m.Yield(xs[idx])
			})
			m.pushEval(e.Arg, env)

		default:
			m.failAt(e.Callee.Span(), "Cannot apply %s as a function", FormatValue(cv))
		}
	})
	m.pushEval(e.Callee, env)
}

// applyFun applies one argument value to a function value. User closures
// get a fresh child of their captured environment; natives curry until
// their declared arity is met, then run.
func (m *Machine) applyFun(f *Fun, arg Value, sp Span) {
	if f.NativeName != "" {
		args := make([]Value, len(f.Applied), len(f.Applied)+1)
		copy(args, f.Applied)
		args = append(args, arg)
		if len(args) < f.Arity {
			m.Yield(FunVal(&Fun{NativeName: f.NativeName, Arity: f.Arity, Applied: args}))
			return
		}
		impl, ok := m.ip.natives[f.NativeName]
		if !ok {
			m.failAt(sp, "internal: unregistered builtin %q", f.NativeName)
		}
		m.at = sp
		impl(m.ip, m, args)
		return
	}

	child := NewEnv(f.Env)
	child.Define(f.Param, arg)
	m.pushEval(f.Body, child)
}
