// lexer.go: tokenization for eurydice source text.
//
// The lexer turns a source string into a flat token slice terminated by an
// EOF token. Tokens carry their byte range in the source so that later
// stages (parser, evaluator) can point error carets at the exact spot.
//
// Scanning rules worth knowing:
//   - Multi-character operators win over their single-character prefixes:
//     "<=" before "<", "**" before "*", "!=" before "!", "..." before ".".
//   - A fraction requires a digit after the dot, so "1." lexes as the number
//     1 followed by a PERIOD token. This is what makes "[1. 2. 3]" work as an
//     array literal while "1.5" stays a single number.
//   - Identifiers are letters and underscores only — no digits. "5d20" is
//     therefore three tokens: 5, d, 20.
//   - A "(" that directly follows another token (no whitespace) is emitted as
//     CLROUND so the parser can tell a call "f(x)" apart from juxtaposition
//     with a parenthesized operand "f (x)".
//   - "#" starts a line comment; whitespace and comments are skipped.
package eurydice

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LROUND   // "(" preceded by whitespace (grouping)
	CLROUND  // "(" not preceded by whitespace (call)
	RROUND   // ")"
	LSQUARE  // "["
	RSQUARE  // "]"
	COMMA    // ","
	PERIOD   // "." (array-literal separator)
	ELLIPSIS // "..." (summation)
	AT       // "@" (function literal)

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	POW // "**"
	EQ  // "="
	NEQ // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	PIPE // "|"
	AMP  // "&"
	BANG // "!"

	// Literals & identifiers
	ID
	NUMBER
	STRING

	// Keywords
	LET
	AND
	IN
	IF
	THEN
	ELSE
)

// Token is a lexical token with optional literal value and byte span.
type Token struct {
	Type      TokenType
	Lexeme    string      // raw text slice
	Literal   interface{} // parsed value for NUMBER/STRING
	StartByte int
	EndByte   int
}

var keywords = map[string]TokenType{
	"let":  LET,
	"and":  AND,
	"in":   IN,
	"if":   IF,
	"then": THEN,
	"else": ELSE,
}

// Lexer scans a eurydice source string into tokens.
type Lexer struct {
	src              string
	start            int // start index of current token
	cur              int // current index
	tokens           []Token
	whitespaceBefore bool
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}

// TokenStream is a single-lookahead cursor over a scanned token slice.
// The parser never needs more than one token of lookahead.
type TokenStream struct {
	toks []Token
	i    int
}

// Tokenize scans src and wraps the result in a TokenStream.
func Tokenize(src string) (*TokenStream, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return &TokenStream{toks: toks}, nil
}

// Peek returns the next token without consuming it.
func (ts *TokenStream) Peek() Token {
	if ts.i >= len(ts.toks) {
		return ts.toks[len(ts.toks)-1]
	}
	return ts.toks[ts.i]
}

// Next consumes and returns the next token. Past the end it keeps returning
// the EOF token.
func (ts *TokenStream) Next() Token {
	t := ts.Peek()
	if ts.i < len(ts.toks) {
		ts.i++
	}
	return t
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	return ch, true
}

func (l *Lexer) rewindToStart() { l.cur = l.start }

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:      tt,
		Lexeme:    l.src[l.start:l.cur],
		Literal:   lit,
		StartByte: l.start,
		EndByte:   l.cur,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.whitespaceBefore = false
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	l.whitespaceBefore = false
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.whitespaceBefore = true
			l.advance()
			l.start = l.cur
		case '#':
			l.whitespaceBefore = true
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }

func (l *Lexer) err(msg string) error {
	return &Error{Kind: DiagLex, Msg: msg, Pos: Span{StartByte: l.start, EndByte: l.cur}}
}

// ----- scanners -----

// scanString parses a JSON-style double-quoted string literal.
func (l *Lexer) scanString() (string, error) {
	l.advance() // opening quote

	var out []rune
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\\' {
			if l.isAtEnd() {
				return "", l.err("unfinished escape sequence")
			}
			esc, _ := l.advance()
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case '/':
				out = append(out, '/')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				r, err := l.scanUnicodeEscape()
				if err != nil {
					return "", err
				}
				out = append(out, r)
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		if ch < utf8.RuneSelf {
			out = append(out, rune(ch))
			continue
		}
		// Non-ASCII byte: step back and decode a full rune.
		l.cur--
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if r == utf8.RuneError && size == 1 {
			return "", l.err("invalid UTF-8 in source")
		}
		out = append(out, r)
		l.cur += size
	}
	return "", l.err("string was not terminated")
}

// scanUnicodeEscape reads the 4 hex digits after "\u", pairing surrogate
// halves when a second "\uXXXX" follows.
func (l *Lexer) scanUnicodeEscape() (rune, error) {
	read4 := func() (rune, error) {
		var hex string
		for i := 0; i < 4; i++ {
			b, ok := l.peek()
			if !ok || !isHex(b) {
				return 0, l.err("unicode escape was not terminated (expect 4 hex digits)")
			}
			hex += string(b)
			l.advance()
		}
		v, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return 0, l.err("invalid unicode escape")
		}
		return rune(v), nil
	}

	r, err := read4()
	if err != nil {
		return 0, err
	}
	if 0xD800 <= r && r <= 0xDBFF {
		save := l.cur
		if b1, ok := l.peek(); ok && b1 == '\\' {
			if b2, ok := l.peekN(1); ok && b2 == 'u' {
				l.advance()
				l.advance()
				r2, err := read4()
				if err != nil {
					return 0, err
				}
				if 0xDC00 <= r2 && r2 <= 0xDFFF {
					return utf16.DecodeRune(r, r2), nil
				}
			}
		}
		l.cur = save
	}
	return r, nil
}

// scanNumber parses an integer or decimal with optional exponent. The
// fractional part requires a digit after the dot.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}

	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance() // '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}

	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		save := l.cur
		l.advance()
		if b2, ok := l.peek(); ok && (b2 == '+' || b2 == '-') {
			l.advance()
		}
		if b3, ok := l.peek(); ok && isDigit(b3) {
			for {
				b4, ok := l.peek()
				if !ok || !isDigit(b4) {
					break
				}
				l.advance()
			}
		} else {
			l.cur = save
		}
	}

	v, convErr := strconv.ParseFloat(l.src[l.start:l.cur], 64)
	if convErr != nil {
		return 0, l.err("invalid number literal")
	}
	return v, nil
}

// scanIdentifier parses [A-Za-z_]+ (no digits in names).
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlpha(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespaceAndComments()
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		if l.whitespaceBefore || len(l.tokens) == 0 {
			return l.addToken(LROUND, nil), nil
		}
		return l.addToken(CLROUND, nil), nil
	case ')':
		return l.addToken(RROUND, nil), nil
	case '[':
		return l.addToken(LSQUARE, nil), nil
	case ']':
		return l.addToken(RSQUARE, nil), nil
	case ',':
		return l.addToken(COMMA, nil), nil
	case '@':
		return l.addToken(AT, nil), nil
	case '+':
		return l.addToken(PLUS, nil), nil
	case '-':
		return l.addToken(MINUS, nil), nil
	case '/':
		return l.addToken(DIV, nil), nil
	case '%':
		return l.addToken(MOD, nil), nil
	case '|':
		return l.addToken(PIPE, nil), nil
	case '&':
		return l.addToken(AMP, nil), nil
	case '*':
		if b, ok := l.peek(); ok && b == '*' {
			l.advance()
			return l.addToken(POW, nil), nil
		}
		return l.addToken(MULT, nil), nil
	case '=':
		return l.addToken(EQ, nil), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, nil), nil
		}
		return l.addToken(BANG, nil), nil
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, nil), nil
		}
		return l.addToken(LESS, nil), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, nil), nil
		}
		return l.addToken(GREATER, nil), nil
	case '.':
		// "..." summation, else the array-literal separator. A lone "." is
		// never immediately followed by ".." in valid input, so two bytes of
		// lookahead fully disambiguate.
		if b1, ok1 := l.peek(); ok1 && b1 == '.' {
			if b2, ok2 := l.peekN(1); ok2 && b2 == '.' {
				l.advance()
				l.advance()
				return l.addToken(ELLIPSIS, nil), nil
			}
		}
		return l.addToken(PERIOD, nil), nil
	}

	if ch == '"' {
		l.rewindToStart()
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text), nil
	}

	if isDigit(ch) {
		l.rewindToStart()
		v, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(NUMBER, v), nil
	}

	if isAlpha(ch) {
		l.rewindToStart()
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			return l.addToken(tt, nil), nil
		}
		return l.addToken(ID, lex), nil
	}

	return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
}
