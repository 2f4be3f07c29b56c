package query

import (
	"errors"
	"testing"
)

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "Simple comparison",
			input:    "Price gt 100",
			expected: []TokenType{TokenIdentifier, TokenOperator, TokenNumber, TokenEOF},
		},
		{
			name:     "Property path",
			input:    "ContentLink/Id eq 123",
			expected: []TokenType{TokenIdentifier, TokenSlash, TokenIdentifier, TokenOperator, TokenNumber, TokenEOF},
		},
		{
			name:  "Logical AND",
			input: "Price gt 100 and Category eq 'Electronics'",
			expected: []TokenType{
				TokenIdentifier, TokenOperator, TokenNumber, TokenLogical,
				TokenIdentifier, TokenOperator, TokenString, TokenEOF,
			},
		},
		{
			name:     "NOT operator",
			input:    "not (Price gt 100)",
			expected: []TokenType{TokenNot, TokenLParen, TokenIdentifier, TokenOperator, TokenNumber, TokenRParen, TokenEOF},
		},
		{
			name:  "Function call",
			input: "contains(Name,'Laptop')",
			expected: []TokenType{
				TokenIdentifier, // contains is an identifier (function name)
				TokenLParen, TokenIdentifier, TokenComma, TokenString, TokenRParen, TokenEOF,
			},
		},
		{
			name:  "Lambda",
			input: "Tags/any(t: t eq 'a')",
			expected: []TokenType{
				TokenIdentifier, TokenSlash, TokenIdentifier, TokenLParen, TokenIdentifier, TokenColon,
				TokenIdentifier, TokenOperator, TokenString, TokenRParen, TokenEOF,
			},
		},
		{
			name:     "Date-time literal",
			input:    "Created ge 2017-12-01T12:00:00Z",
			expected: []TokenType{TokenIdentifier, TokenOperator, TokenDateTime, TokenEOF},
		},
		{
			name:     "Arithmetic keywords",
			input:    "Price mul 2 sub -Tax",
			expected: []TokenType{TokenIdentifier, TokenArithmetic, TokenNumber, TokenArithmetic, TokenArithmetic, TokenIdentifier, TokenEOF},
		},
		{
			name:     "Boolean and null literals",
			input:    "IsActive eq true or Description eq null",
			expected: []TokenType{TokenIdentifier, TokenOperator, TokenBoolean, TokenLogical, TokenIdentifier, TokenOperator, TokenNull, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).TokenizeAll()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d", len(tt.expected), len(tokens))
			}

			for i, token := range tokens {
				if token.Type != tt.expected[i] {
					t.Errorf("Token %d: expected type %v, got %v (%q)", i, tt.expected[i], token.Type, token.Value)
				}
			}
		})
	}
}

func TestTokenizer_Values(t *testing.T) {
	tests := []struct {
		input string
		want  Token
	}{
		{"'O''Brien'", Token{Type: TokenString, Value: "O'Brien"}},
		{"''", Token{Type: TokenString, Value: ""}},
		{"5L", Token{Type: TokenNumber, Value: "5L"}},
		{"1.5M", Token{Type: TokenNumber, Value: "1.5M"}},
		{"-2.5e3", Token{Type: TokenNumber, Value: "-2.5e3"}},
		{"2.5f", Token{Type: TokenNumber, Value: "2.5f"}},
		{"2017-12-01T13:00:00+01:00", Token{Type: TokenDateTime, Value: "2017-12-01T13:00:00+01:00"}},
		{"2017-12-01", Token{Type: TokenDateTime, Value: "2017-12-01"}},
		{"has(", Token{Type: TokenIdentifier, Value: "has"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			token, err := NewTokenizer(tt.input).NextToken()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if token.Type != tt.want.Type || token.Value != tt.want.Value {
				t.Errorf("NextToken() = %v %q, want %v %q", token.Type, token.Value, tt.want.Type, tt.want.Value)
			}
		})
	}
}

func TestTokenizer_Errors(t *testing.T) {
	for _, input := range []string{"Name eq 'open", "Price gt 5 & 6", "Name eq \"x\""} {
		t.Run(input, func(t *testing.T) {
			_, err := NewTokenizer(input).TokenizeAll()
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected syntax error, got %v", err)
			}
		})
	}
}
