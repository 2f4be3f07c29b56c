package query

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenString
	TokenNumber
	TokenDateTime
	TokenBoolean
	TokenNull
	TokenOperator
	TokenLogical
	TokenNot
	TokenLParen
	TokenRParen
	TokenComma
	TokenArithmetic
	TokenSlash
	TokenColon
)

var tokenTypeNames = [...]string{
	TokenEOF:        "end of input",
	TokenIdentifier: "identifier",
	TokenString:     "string",
	TokenNumber:     "number",
	TokenDateTime:   "date-time",
	TokenBoolean:    "boolean",
	TokenNull:       "null",
	TokenOperator:   "operator",
	TokenLogical:    "logical operator",
	TokenNot:        "not",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenComma:      "','",
	TokenArithmetic: "arithmetic operator",
	TokenSlash:      "'/'",
	TokenColon:      "':'",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single token in the filter expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Tokenizer tokenizes OData filter and orderby expressions
type Tokenizer struct {
	input string
	pos   int
	ch    rune
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{
		input: input,
		pos:   0,
	}
	if len(input) > 0 {
		t.ch = rune(input[0])
	}
	return t
}

// advance moves to the next character
func (t *Tokenizer) advance() {
	t.pos++
	if t.pos >= len(t.input) {
		t.ch = 0 // EOF
	} else {
		t.ch = rune(t.input[t.pos])
	}
}

// peekAt looks ahead n characters without advancing
func (t *Tokenizer) peekAt(n int) rune {
	if t.pos+n >= len(t.input) {
		return 0
	}
	return rune(t.input[t.pos+n])
}

// skipWhitespace skips whitespace characters
func (t *Tokenizer) skipWhitespace() {
	for t.ch == ' ' || t.ch == '\t' || t.ch == '\n' || t.ch == '\r' {
		t.advance()
	}
}

// readString reads a single-quoted string, where '' stands for one quote
func (t *Tokenizer) readString() (string, error) {
	start := t.pos
	t.advance() // skip opening quote

	var result strings.Builder
	for {
		if t.ch == 0 && t.pos >= len(t.input) {
			return "", fmt.Errorf("%w: unterminated string literal at position %d", ErrSyntax, start)
		}
		if t.ch == '\'' {
			if t.peekAt(1) == '\'' {
				result.WriteByte('\'')
				t.advance()
				t.advance()
				continue
			}
			t.advance() // skip closing quote
			return result.String(), nil
		}
		result.WriteByte(byte(t.ch))
		t.advance()
	}
}

// readNumber reads a number with an optional type suffix
func (t *Tokenizer) readNumber() string {
	start := t.pos

	// Handle negative numbers
	if t.ch == '-' {
		t.advance()
	}

	// Read integer part
	for unicode.IsDigit(t.ch) {
		t.advance()
	}

	// Read decimal part
	if t.ch == '.' && unicode.IsDigit(t.peekAt(1)) {
		t.advance()
		for unicode.IsDigit(t.ch) {
			t.advance()
		}
	}

	// Read exponent part
	if (t.ch == 'e' || t.ch == 'E') && (unicode.IsDigit(t.peekAt(1)) ||
		((t.peekAt(1) == '+' || t.peekAt(1) == '-') && unicode.IsDigit(t.peekAt(2)))) {
		t.advance()
		if t.ch == '+' || t.ch == '-' {
			t.advance()
		}
		for unicode.IsDigit(t.ch) {
			t.advance()
		}
	}

	// Read type suffix (5L, 1.5M, 2.5f, 2.5d)
	switch t.ch {
	case 'l', 'L', 'm', 'M', 'f', 'F', 'd', 'D':
		if next := t.peekAt(1); !isIdentifierChar(next) {
			t.advance()
		}
	}

	return t.input[start:t.pos]
}

// isDateTimeStart reports whether the input at the current position starts
// with a YYYY-MM-DD date
func (t *Tokenizer) isDateTimeStart() bool {
	for i := 0; i < 4; i++ {
		if !unicode.IsDigit(t.peekAt(i)) {
			return false
		}
	}
	return t.peekAt(4) == '-' && unicode.IsDigit(t.peekAt(5)) && unicode.IsDigit(t.peekAt(6)) && t.peekAt(7) == '-'
}

// readDateTime reads a date or date-time literal
func (t *Tokenizer) readDateTime() string {
	start := t.pos
	for unicode.IsDigit(t.ch) || strings.ContainsRune("-:.TZ+", t.ch) {
		t.advance()
	}
	return t.input[start:t.pos]
}

// readIdentifier reads an identifier or keyword
func (t *Tokenizer) readIdentifier() string {
	start := t.pos
	for t.ch != 0 && isIdentifierChar(t.ch) {
		t.advance()
	}
	return t.input[start:t.pos]
}

func isIdentifierChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

// NextToken returns the next token
func (t *Tokenizer) NextToken() (*Token, error) {
	t.skipWhitespace()

	if t.pos >= len(t.input) {
		return &Token{Type: TokenEOF, Pos: t.pos}, nil
	}

	pos := t.pos

	// Try to tokenize based on character type
	if t.ch == '\'' {
		value, err := t.readString()
		if err != nil {
			return nil, err
		}
		return &Token{Type: TokenString, Value: value, Pos: pos}, nil
	}

	if token := t.tokenizeNumber(pos); token != nil {
		return token, nil
	}

	if token := t.tokenizeSpecialChar(pos); token != nil {
		return token, nil
	}

	if token := t.tokenizeIdentifierOrKeyword(pos); token != nil {
		return token, nil
	}

	return nil, fmt.Errorf("%w: unexpected character '%c' at position %d", ErrSyntax, t.ch, t.pos)
}

// tokenizeNumber tokenizes numeric and date-time literals
func (t *Tokenizer) tokenizeNumber(pos int) *Token {
	if t.isDateTimeStart() {
		return &Token{Type: TokenDateTime, Value: t.readDateTime(), Pos: pos}
	}
	if unicode.IsDigit(t.ch) || (t.ch == '-' && unicode.IsDigit(t.peekAt(1))) {
		return &Token{Type: TokenNumber, Value: t.readNumber(), Pos: pos}
	}
	return nil
}

// tokenizeSpecialChar tokenizes special characters (parentheses, comma, path separators)
func (t *Tokenizer) tokenizeSpecialChar(pos int) *Token {
	switch t.ch {
	case '(':
		t.advance()
		return &Token{Type: TokenLParen, Value: "(", Pos: pos}
	case ')':
		t.advance()
		return &Token{Type: TokenRParen, Value: ")", Pos: pos}
	case ',':
		t.advance()
		return &Token{Type: TokenComma, Value: ",", Pos: pos}
	case '/':
		t.advance()
		return &Token{Type: TokenSlash, Value: "/", Pos: pos}
	case ':':
		t.advance()
		return &Token{Type: TokenColon, Value: ":", Pos: pos}
	case '-':
		t.advance()
		return &Token{Type: TokenArithmetic, Value: "-", Pos: pos}
	}
	return nil
}

// tokenizeIdentifierOrKeyword tokenizes identifiers and keywords
func (t *Tokenizer) tokenizeIdentifierOrKeyword(pos int) *Token {
	if !unicode.IsLetter(t.ch) && t.ch != '_' {
		return nil
	}

	value := t.readIdentifier()

	// A keyword other than a boolean connective followed by '(' is a
	// function name (e.g. has(...))
	if t.ch == '(' && value != "and" && value != "or" && value != "not" {
		return &Token{Type: TokenIdentifier, Value: value, Pos: pos}
	}

	// Check for keywords
	if token := t.classifyKeyword(value, pos); token != nil {
		return token
	}

	// Functions like contains and tolower are identifiers
	// that will be recognized as function calls when followed by '('
	return &Token{Type: TokenIdentifier, Value: value, Pos: pos}
}

// classifyKeyword classifies a keyword and returns the appropriate token.
// Keywords are case-sensitive as in OData.
func (t *Tokenizer) classifyKeyword(value string, pos int) *Token {
	switch value {
	case "and", "or":
		return &Token{Type: TokenLogical, Value: value, Pos: pos}
	case "not":
		return &Token{Type: TokenNot, Value: value, Pos: pos}
	case "true", "false":
		return &Token{Type: TokenBoolean, Value: value, Pos: pos}
	case "null":
		return &Token{Type: TokenNull, Value: value, Pos: pos}
	case "eq", "ne", "gt", "ge", "lt", "le", "in", "has":
		return &Token{Type: TokenOperator, Value: value, Pos: pos}
	case "add", "sub", "mul", "div", "mod":
		return &Token{Type: TokenArithmetic, Value: value, Pos: pos}
	}
	return nil
}

// TokenizeAll returns all tokens from the input
func (t *Tokenizer) TokenizeAll() ([]*Token, error) {
	var tokens []*Token

	for {
		token, err := t.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
