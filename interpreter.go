// interpreter.go — public API surface for the eurydice interpreter.
//
// This file exposes the runtime value model (`Value`, `ValueTag`,
// constructors like `Num`/`Str`/`Arr`), lexical environments (`Env`),
// functions/closures (`Fun`), and the `Interpreter` with its canonical entry
// points:
//
//   - `Parse` (parser.go) + `Eval`/`EvalSource` — evaluate one expression
//     tree to a single Value,
//   - `RegisterBuiltin` — install host natives (tests use this to inject
//     deterministic dice),
//   - `WithRand`/`WithMaxRerolls` — construction options.
//
// EXECUTION MODEL
// ---------------
// Each Eval call is a fresh, self-contained run: a new child environment of
// Core, new machine stacks, no state shared with previous runs. The
// evaluation engine itself (an explicit work/continuation stack machine)
// lives in eval.go; builtins live in builtins.go and dice.go.
//
// ERRORS
// ------
// All entry points return (Value, error). On failure the error is a *Error
// carrying the failing sub-expression's span; EvalSource additionally wraps
// it with a caret-style source snippet. Inside the engine, failures
// propagate as panics and are recovered at the entry point; there is no
// catch-and-continue within the language.
package eurydice

import (
	"fmt"
	"math/rand"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
//                              VALUES
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull  ValueTag = iota // unit (no payload)
	VTNum                   // float64
	VTStr                   // string
	VTArray                 // []Value
	VTFun                   // *Fun (closure or curried native)
)

func (t ValueTag) String() string {
	switch t {
	case VTNull:
		return "null"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTArray:
		return "array"
	case VTFun:
		return "function"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier used by the interpreter. The tag
// determines which Go type Data holds (float64, string, []Value or *Fun).
//
// Arrays and functions are reference-like: copying a Value copies the
// reference. Builtins never mutate an input array; every array-producing
// operation allocates a fresh one.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// String renders a short debug representation. Use FormatValue (printer.go)
// for the canonical user-facing rendering.
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "()"
	case VTNum:
		return formatNumber(v.Data.(float64))
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTArray:
		return fmt.Sprintf("<array len=%d>", len(v.Data.([]Value)))
	case VTFun:
		return "<fun>"
	default:
		return "<unknown>"
	}
}

// Null is the singleton unit Value.
var Null = Value{Tag: VTNull}

// Primitive constructors for convenience.
func Num(f float64) Value  { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value   { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value { return Value{Tag: VTArray, Data: xs} }

// Fun represents a function value. Exactly one of the two shapes is active:
//
//   - user closure: Param/Body/Env are set; invoking it binds Param in a new
//     child of Env (the environment captured at the literal, which is what
//     makes lexical closures work),
//   - curried native: NativeName/Arity are set; Applied accumulates argument
//     values across applications until Arity is reached, at which point the
//     registered implementation runs.
type Fun struct {
	Param string
	Body  Expr
	Env   *Env

	NativeName string
	Arity      int
	Applied    []Value
}

// FunVal wraps *Fun into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

////////////////////////////////////////////////////////////////////////////////
//                              ENVIRONMENTS
////////////////////////////////////////////////////////////////////////////////

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward; a binding in a child totally shadows the same name in any
// ancestor. Environments are shared by reference: a closure may keep its
// defining frame alive long after the let/call that created it returned.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new lexical frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent, table: make(map[string]Value)} }

// Define binds name to v in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) { e.table[name] = v }

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

////////////////////////////////////////////////////////////////////////////////
//                              INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// NativeImpl is the implementation signature for builtins. It receives the
// fully collected argument values (the curry chain guarantees len(args) ==
// the declared arity) and must produce exactly one result: either by calling
// m.Yield directly (strict builtins), or by pushing evaluation work and
// continuations on the machine (suspending builtins such as map or reroll
// that call back into user functions).
type NativeImpl func(ip *Interpreter, m *Machine, args []Value)

// DefaultMaxRerolls caps reroll attempts. Reaching the cap returns the last
// roll silently rather than failing.
const DefaultMaxRerolls = 100

// Interpreter is the entry point for evaluating eurydice expressions.
// A single Interpreter is not safe for concurrent use; evaluation is
// single-threaded and synchronous.
type Interpreter struct {
	// Core holds all builtins; every evaluation runs in a fresh child of it.
	Core *Env

	// Rand is the random source used by the dice builtins. Inject a seeded
	// source for reproducible rolls.
	Rand *rand.Rand

	// MaxRerolls caps attempts made by the reroll builtin.
	MaxRerolls int

	natives map[string]NativeImpl
}

// Option configures a new Interpreter.
type Option func(*Interpreter)

// WithRand injects the random source used by the dice builtins.
func WithRand(r *rand.Rand) Option {
	return func(ip *Interpreter) { ip.Rand = r }
}

// WithMaxRerolls overrides the reroll attempt cap.
func WithMaxRerolls(n int) Option {
	return func(ip *Interpreter) { ip.MaxRerolls = n }
}

// NewInterpreter constructs an engine with all core builtins installed.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		Core:       NewEnv(nil),
		MaxRerolls: DefaultMaxRerolls,
		natives:    map[string]NativeImpl{},
	}
	for _, o := range opts {
		o(ip)
	}
	if ip.Rand == nil {
		ip.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	registerCore(ip)
	registerDice(ip)
	return ip
}

// RegisterBuiltin installs a native function into Core under name. The
// native participates in currying like every other builtin: it runs once
// arity argument values have been applied.
func (ip *Interpreter) RegisterBuiltin(name string, arity int, impl NativeImpl) {
	ip.natives[name] = impl
	ip.Core.Define(name, FunVal(&Fun{NativeName: name, Arity: arity}))
}

// Eval evaluates an expression tree to a single Value. vars optionally
// adds or overrides caller-supplied bindings visible to the expression.
// Each call is an independent run; nothing persists between calls.
func (ip *Interpreter) Eval(expr Expr, vars map[string]Value) (Value, error) {
	root := ip.Core
	if len(vars) > 0 {
		root = NewEnv(ip.Core)
		for k, v := range vars {
			root.Define(k, v)
		}
	}
	m := &Machine{ip: ip}
	return m.run(expr, NewEnv(root))
}

// EvalSource parses and evaluates src. Errors are wrapped with a
// caret-style source snippet.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	expr, err := Parse(src)
	if err != nil {
		return Value{}, WrapErrorWithSource(err, src)
	}
	v, err := ip.Eval(expr, nil)
	if err != nil {
		return Value{}, WrapErrorWithSource(err, src)
	}
	return v, nil
}
