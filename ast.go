// ast.go: the expression tree produced by the parser.
//
// Every node carries a byte-offset Span for diagnostics. The tree is
// immutable after parsing; the evaluator may walk the same tree many times
// (numeric application re-evaluates its argument expression repeatedly).
package eurydice

// Expr is an expression node. The concrete node types below form a closed
// set; the evaluator dispatches on them exhaustively.
type Expr interface {
	Span() Span
}

type node struct{ span Span }

func (n node) Span() Span { return n.span }

// NumberLit is a numeric literal. All eurydice numbers are float64.
type NumberLit struct {
	node
	Value float64
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	node
	Value string
}

// UnitLit is the explicit "no value" literal, spelled "()".
type UnitLit struct {
	node
}

// VarRef is a variable reference, resolved dynamically at evaluation time.
type VarRef struct {
	node
	Name string
}

// ArrayLit is "[a. b. c]". Elements evaluate strictly left to right.
type ArrayLit struct {
	node
	Elems []Expr
}

// ApplyExpr applies Callee to one Arg. It covers true function application,
// numeric replication ("5 d 6") and array indexing ("arr(2)"); which one it
// means is decided at evaluation time from the callee's runtime type.
type ApplyExpr struct {
	node
	Callee Expr
	Arg    Expr
}

// FunLit is "@name body": a single-parameter function literal.
// Multi-parameter functions are nested FunLits (currying).
type FunLit struct {
	node
	Param string
	Body  Expr
}

// Binding is one "name value" pair in a let expression.
type Binding struct {
	Name  string
	Value Expr
}

// LetExpr is "let a x and b y in body". All binding value expressions are
// evaluated before any name is bound, so same-block bindings cannot see each
// other; closures among them still can, once called.
type LetExpr struct {
	node
	Bindings []Binding
	Body     Expr
}

// IfExpr is "if cond then a else b". Exactly one branch is evaluated.
type IfExpr struct {
	node
	Cond Expr
	Then Expr
	Else Expr
}
