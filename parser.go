// parser.go — Pratt (operator-precedence) parser for eurydice.
//
// Grammar overview
// ----------------
// A program is a single expression. parseExpr(minBP) first parses a prefix
// term, then loops consuming infix forms whose left binding power is at
// least minBP:
//
//   - binary operators desugar immediately into builtin application:
//     a + b  →  Apply(Apply(Var("+"), a), b)
//   - a comma is low-precedence left-associative application:
//     highest 3, rolls  →  Apply(Apply(Var("highest"), 3), rolls)
//   - call parens (a "(" glued to the previous token) apply each
//     comma-separated argument in turn; "f()" applies the unit value
//   - two adjacent expressions with no operator between them are
//     juxtaposition. Juxtaposition nests to the right, which is what makes
//     "5 d 20" mean «evaluate (d 20) five times»:
//     5 d 20  →  Apply(5, Apply(Var("d"), 20))
//
// The full binding-power ladder, loosest to tightest: comma, equality
// (= !=), comparison (< <= > >=), |, &, additive, multiplicative, ** (the
// only right-associative operator), juxtaposition, call parens. Unary
// + - ! bind tighter than juxtaposition and desugar into the builtins
// __pos/__neg/__not.
//
// The grammar is strict: trailing tokens after a complete expression are a
// parse error.
package eurydice

import "fmt"

// Parse parses a complete eurydice source string and returns its expression
// tree. The error, if any, is a *Error with a byte-offset span; wrap it
// with WrapErrorWithSource for a caret snippet.
func Parse(src string) (Expr, error) {
	ts, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{ts: ts}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.ts.Peek(); t.Type != EOF {
		return nil, &Error{
			Kind: DiagParse,
			Msg:  fmt.Sprintf("unexpected input after expression: %q", t.Lexeme),
			Pos:  tokSpan(t),
		}
	}
	return e, nil
}

// ───────────────────────── binding powers ─────────────────────────

// Only the relative order matters. Comparison sits above equality so that
// "1 < 2 = 3 > 2" reads as "(1 < 2) = (3 > 2)".
const (
	bpComma = 10
	bpEq    = 20
	bpCmp   = 30
	bpOr    = 40
	bpAnd   = 50
	bpAdd   = 60
	bpMul   = 70
	bpPow   = 80
	bpJuxt  = 90
	bpCall  = 100
)

type infixOp struct {
	name       string
	bp         int
	rightAssoc bool
}

var infixOps = map[TokenType]infixOp{
	EQ:         {"=", bpEq, false},
	NEQ:        {"!=", bpEq, false},
	LESS:       {"<", bpCmp, false},
	LESS_EQ:    {"<=", bpCmp, false},
	GREATER:    {">", bpCmp, false},
	GREATER_EQ: {">=", bpCmp, false},
	PIPE:       {"|", bpOr, false},
	AMP:        {"&", bpAnd, false},
	PLUS:       {"+", bpAdd, false},
	MINUS:      {"-", bpAdd, false},
	MULT:       {"*", bpMul, false},
	DIV:        {"/", bpMul, false},
	MOD:        {"%", bpMul, false},
	POW:        {"**", bpPow, true},
}

// canStartTerm reports whether a token may begin a prefix term, which is
// what makes it a juxtaposition operand. Keywords and operators do not
// qualify; "let" and "if" need parens to appear as operands.
func canStartTerm(t TokenType) bool {
	switch t {
	case NUMBER, STRING, ID, LROUND, LSQUARE, AT, ELLIPSIS:
		return true
	default:
		return false
	}
}

// ───────────────────────── parser state ─────────────────────────

type parser struct {
	ts *TokenStream
}

func tokSpan(t Token) Span { return Span{StartByte: t.StartByte, EndByte: t.EndByte} }

func spanJoin(a, b Span) Span {
	return Span{StartByte: a.StartByte, EndByte: b.EndByte}
}

func (p *parser) need(tt TokenType, msg string) (Token, error) {
	t := p.ts.Peek()
	if t.Type != tt {
		return Token{}, &Error{Kind: DiagParse, Msg: msg, Pos: tokSpan(t)}
	}
	return p.ts.Next(), nil
}

// mkVar builds a variable reference spanning a single token.
func mkVar(name string, sp Span) *VarRef {
	return &VarRef{node: node{span: sp}, Name: name}
}

// apply1 wraps callee and arg into an application spanning both.
func apply1(callee, arg Expr) *ApplyExpr {
	return &ApplyExpr{
		node:   node{span: spanJoin(callee.Span(), arg.Span())},
		Callee: callee,
		Arg:    arg,
	}
}

// applyOp desugars a binary operator into Apply(Apply(op, lhs), rhs). The
// spans run left to right from the operands, not from the operator, so the
// whole form spans lhs through rhs.
func applyOp(name string, opSp Span, lhs, rhs Expr) *ApplyExpr {
	inner := &ApplyExpr{
		node:   node{span: spanJoin(lhs.Span(), opSp)},
		Callee: mkVar(name, opSp),
		Arg:    lhs,
	}
	return &ApplyExpr{
		node:   node{span: spanJoin(lhs.Span(), rhs.Span())},
		Callee: inner,
		Arg:    rhs,
	}
}

// ───────────────────────── core loop ─────────────────────────

func (p *parser) expr(minBP int) (Expr, error) {
	lhs, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		t := p.ts.Peek()

		if op, ok := infixOps[t.Type]; ok && op.bp >= minBP {
			p.ts.Next()
			rbp := op.bp + 1
			if op.rightAssoc {
				rbp = op.bp
			}
			rhs, err := p.expr(rbp)
			if err != nil {
				return nil, err
			}
			lhs = applyOp(op.name, tokSpan(t), lhs, rhs)
			continue
		}

		if t.Type == COMMA && bpComma >= minBP {
			p.ts.Next()
			rhs, err := p.expr(bpComma + 1)
			if err != nil {
				return nil, err
			}
			lhs = apply1(lhs, rhs)
			continue
		}

		if t.Type == CLROUND && bpCall >= minBP {
			lhs, err = p.callArgs(lhs)
			if err != nil {
				return nil, err
			}
			continue
		}

		if canStartTerm(t.Type) && bpJuxt >= minBP {
			// Right-nested on purpose: the operand itself may consume
			// further juxtapositions, so "5 d 20" becomes 5 (d 20).
			rhs, err := p.expr(bpJuxt)
			if err != nil {
				return nil, err
			}
			lhs = apply1(lhs, rhs)
			continue
		}

		return lhs, nil
	}
}

// callArgs parses "(a, b, c)" in infix position into nested applications.
// Empty parens apply the unit value, which is how zero-argument calls like
// "dF()" are spelled.
func (p *parser) callArgs(callee Expr) (Expr, error) {
	open := p.ts.Next() // CLROUND
	if p.ts.Peek().Type == RROUND {
		close := p.ts.Next()
		unit := &UnitLit{node: node{span: spanJoin(tokSpan(open), tokSpan(close))}}
		return apply1(callee, unit), nil
	}

	out := callee
	for {
		arg, err := p.expr(bpComma + 1)
		if err != nil {
			return nil, err
		}
		out = apply1(out, arg)
		if p.ts.Peek().Type == COMMA {
			p.ts.Next()
			continue
		}
		break
	}
	if _, err := p.need(RROUND, "expected ')' to close argument list"); err != nil {
		return nil, err
	}
	return out, nil
}

// ───────────────────────── prefix terms ─────────────────────────

func (p *parser) prefix() (Expr, error) {
	t := p.ts.Peek()
	switch t.Type {
	case NUMBER:
		p.ts.Next()
		return &NumberLit{node: node{span: tokSpan(t)}, Value: t.Literal.(float64)}, nil

	case STRING:
		p.ts.Next()
		return &StringLit{node: node{span: tokSpan(t)}, Value: t.Literal.(string)}, nil

	case ID:
		p.ts.Next()
		return mkVar(t.Literal.(string), tokSpan(t)), nil

	case ELLIPSIS:
		// The summation operator is an ordinary builtin applied by
		// juxtaposition: "...[1. 2. 3]" is Apply(Var("..."), array).
		p.ts.Next()
		return mkVar("...", tokSpan(t)), nil

	case LROUND, CLROUND:
		return p.parens()

	case LSQUARE:
		return p.arrayLit()

	case AT:
		return p.funLit()

	case PLUS, MINUS, BANG:
		p.ts.Next()
		// Operand binds just above juxtaposition: "-5 d 20" is (-5) d 20.
		operand, err := p.expr(bpJuxt + 1)
		if err != nil {
			return nil, err
		}
		name := map[TokenType]string{PLUS: "__pos", MINUS: "__neg", BANG: "__not"}[t.Type]
		return apply1(mkVar(name, tokSpan(t)), operand), nil

	case LET:
		return p.letExpr()

	case IF:
		return p.ifExpr()
	}

	return nil, &Error{Kind: DiagParse, Msg: "expected an expression", Pos: tokSpan(t)}
}

// parens parses "( expr )" or the unit literal "()".
func (p *parser) parens() (Expr, error) {
	open := p.ts.Next()
	if p.ts.Peek().Type == RROUND {
		close := p.ts.Next()
		return &UnitLit{node: node{span: spanJoin(tokSpan(open), tokSpan(close))}}, nil
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')'"); err != nil {
		return nil, err
	}
	return e, nil
}

// arrayLit parses "[a. b. c]" with an optional trailing separator.
func (p *parser) arrayLit() (Expr, error) {
	open := p.ts.Next() // LSQUARE
	var elems []Expr
	for p.ts.Peek().Type != RSQUARE {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.ts.Peek().Type == PERIOD {
			p.ts.Next()
			continue
		}
		break
	}
	close, err := p.need(RSQUARE, "expected ']' to close array literal")
	if err != nil {
		return nil, err
	}
	return &ArrayLit{
		node:  node{span: spanJoin(tokSpan(open), tokSpan(close))},
		Elems: elems,
	}, nil
}

// funLit parses "@name body". The body binds just above the comma level so
// that "reroll @_ d 20, @x x < 5" splits at the comma.
func (p *parser) funLit() (Expr, error) {
	at := p.ts.Next() // AT
	name, err := p.need(ID, "expected parameter name after '@'")
	if err != nil {
		return nil, err
	}
	body, err := p.expr(bpComma + 1)
	if err != nil {
		return nil, err
	}
	return &FunLit{
		node:  node{span: spanJoin(tokSpan(at), body.Span())},
		Param: name.Literal.(string),
		Body:  body,
	}, nil
}

// letExpr parses "let a x and b y in body".
func (p *parser) letExpr() (Expr, error) {
	let := p.ts.Next() // LET
	var bindings []Binding
	for {
		name, err := p.need(ID, "expected binding name after 'let'")
		if err != nil {
			return nil, err
		}
		val, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Name: name.Literal.(string), Value: val})
		if p.ts.Peek().Type == AND {
			p.ts.Next()
			continue
		}
		break
	}
	if _, err := p.need(IN, "expected 'in' after let bindings"); err != nil {
		return nil, err
	}
	body, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &LetExpr{
		node:     node{span: spanJoin(tokSpan(let), body.Span())},
		Bindings: bindings,
		Body:     body,
	}, nil
}

// ifExpr parses "if cond then a else b".
func (p *parser) ifExpr() (Expr, error) {
	ifTok := p.ts.Next() // IF
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(THEN, "expected 'then'"); err != nil {
		return nil, err
	}
	thenE, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ELSE, "expected 'else'"); err != nil {
		return nil, err
	}
	elseE, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &IfExpr{
		node: node{span: spanJoin(tokSpan(ifTok), elseE.Span())},
		Cond: cond,
		Then: thenE,
		Else: elseE,
	}, nil
}
