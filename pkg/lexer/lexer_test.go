package lexer

import (
	"testing"
)

func assertTokens(t *testing.T, input string, want []Token) {
	t.Helper()
	l := New(input)
	for i, exp := range want {
		tok := l.NextToken()
		if tok.Type != exp.Type {
			t.Fatalf("token %d: type wrong. expected=%s, got=%s (literal %q)", i, exp.Type, tok.Type, tok.Literal)
		}
		if tok.Literal != exp.Literal {
			t.Fatalf("token %d: literal wrong. expected=%q, got=%q", i, exp.Literal, tok.Literal)
		}
	}
}

func TestNextToken_BasicTokens(t *testing.T) {
	assertTokens(t, `. | := ^ ( ) [ ] ; >>`, []Token{
		{Type: TokenPeriod, Literal: "."},
		{Type: TokenPipe, Literal: "|"},
		{Type: TokenAssign, Literal: ":="},
		{Type: TokenReturn, Literal: "^"},
		{Type: TokenLParen, Literal: "("},
		{Type: TokenRParen, Literal: ")"},
		{Type: TokenLBracket, Literal: "["},
		{Type: TokenRBracket, Literal: "]"},
		{Type: TokenSemicolon, Literal: ";"},
		{Type: TokenMethodDef, Literal: ">>"},
		{Type: TokenEOF},
	})
}

func TestNextToken_BinaryOperators(t *testing.T) {
	assertTokens(t, `+ - * / // % < > <= >= = ~= ~~ , | & @`, []Token{
		{Type: TokenBinaryOp, Literal: "+"},
		{Type: TokenBinaryOp, Literal: "-"},
		{Type: TokenBinaryOp, Literal: "*"},
		{Type: TokenBinaryOp, Literal: "/"},
		{Type: TokenBinaryOp, Literal: "//"},
		{Type: TokenBinaryOp, Literal: "%"},
		{Type: TokenBinaryOp, Literal: "<"},
		{Type: TokenBinaryOp, Literal: ">"},
		{Type: TokenBinaryOp, Literal: "<="},
		{Type: TokenBinaryOp, Literal: ">="},
		{Type: TokenBinaryOp, Literal: "="},
		{Type: TokenBinaryOp, Literal: "~="},
		{Type: TokenBinaryOp, Literal: "~~"},
		{Type: TokenBinaryOp, Literal: ","},
		// A lone "|" always lexes as PIPE (block parameters, temporaries).
		{Type: TokenPipe, Literal: "|"},
		{Type: TokenBinaryOp, Literal: "&"},
		{Type: TokenBinaryOp, Literal: "@"},
		{Type: TokenEOF},
	})
}

func TestNextToken_Numbers(t *testing.T) {
	assertTokens(t, `42 3.14 -17 -2.5 100`, []Token{
		{Type: TokenInteger, Literal: "42"},
		{Type: TokenFloat, Literal: "3.14"},
		{Type: TokenInteger, Literal: "-17"},
		{Type: TokenFloat, Literal: "-2.5"},
		{Type: TokenInteger, Literal: "100"},
		{Type: TokenEOF},
	})
}

func TestNextToken_Strings(t *testing.T) {
	assertTokens(t, `"Hello, World!" "test" "" "she said ""hi"""`, []Token{
		{Type: TokenString, Literal: "Hello, World!"},
		{Type: TokenString, Literal: "test"},
		{Type: TokenString, Literal: ""},
		{Type: TokenString, Literal: `she said "hi"`},
		{Type: TokenEOF},
	})
}

func TestNextToken_Identifiers(t *testing.T) {
	assertTokens(t, `x count Point println ifTrue true false nil`, []Token{
		{Type: TokenIdentifier, Literal: "x"},
		{Type: TokenIdentifier, Literal: "count"},
		{Type: TokenIdentifier, Literal: "Point"},
		{Type: TokenIdentifier, Literal: "println"},
		{Type: TokenIdentifier, Literal: "ifTrue"},
		{Type: TokenIdentifier, Literal: "true"},
		{Type: TokenIdentifier, Literal: "false"},
		{Type: TokenIdentifier, Literal: "nil"},
		{Type: TokenEOF},
	})
}

func TestNextToken_Keywords(t *testing.T) {
	assertTokens(t, `at:put: ifTrue:ifFalse:`, []Token{
		{Type: TokenKeyword, Literal: "at:"},
		{Type: TokenKeyword, Literal: "put:"},
		{Type: TokenKeyword, Literal: "ifTrue:"},
		{Type: TokenKeyword, Literal: "ifFalse:"},
		{Type: TokenEOF},
	})
}

func TestNextToken_Symbols(t *testing.T) {
	assertTokens(t, `#foo #at:put: #(1 2) #{1 2}`, []Token{
		{Type: TokenSymbol, Literal: "foo"},
		{Type: TokenSymbol, Literal: "at:put:"},
		{Type: TokenHashLParen, Literal: "#("},
		{Type: TokenInteger, Literal: "1"},
		{Type: TokenInteger, Literal: "2"},
		{Type: TokenRParen, Literal: ")"},
		{Type: TokenHashLBrace, Literal: "#{"},
		{Type: TokenInteger, Literal: "1"},
		{Type: TokenInteger, Literal: "2"},
		{Type: TokenRBrace, Literal: "}"},
		{Type: TokenEOF},
	})
}

func TestNextToken_ScopedSuper(t *testing.T) {
	assertTokens(t, `super super<Animal> x`, []Token{
		{Type: TokenIdentifier, Literal: "super"},
		{Type: TokenScopedSuper, Literal: "Animal"},
		{Type: TokenIdentifier, Literal: "x"},
		{Type: TokenEOF},
	})
}

func TestNextToken_Comments(t *testing.T) {
	assertTokens(t, "x # this is a comment\ny", []Token{
		{Type: TokenIdentifier, Literal: "x"},
		{Type: TokenNewline, Literal: "\n"},
		{Type: TokenIdentifier, Literal: "y"},
		{Type: TokenEOF},
	})
}

func TestNextToken_HelloWorld(t *testing.T) {
	assertTokens(t, `"Hello, World!" println.`, []Token{
		{Type: TokenString, Literal: "Hello, World!"},
		{Type: TokenIdentifier, Literal: "println"},
		{Type: TokenPeriod, Literal: "."},
		{Type: TokenEOF},
	})
}

func TestNextToken_VariableDeclaration(t *testing.T) {
	input := "| x y |\nx := 10.\ny := 20."
	assertTokens(t, input, []Token{
		{Type: TokenPipe, Literal: "|"},
		{Type: TokenIdentifier, Literal: "x"},
		{Type: TokenIdentifier, Literal: "y"},
		{Type: TokenPipe, Literal: "|"},
		{Type: TokenNewline, Literal: "\n"},
		{Type: TokenIdentifier, Literal: "x"},
		{Type: TokenAssign, Literal: ":="},
		{Type: TokenInteger, Literal: "10"},
		{Type: TokenPeriod, Literal: "."},
		{Type: TokenNewline, Literal: "\n"},
		{Type: TokenIdentifier, Literal: "y"},
		{Type: TokenAssign, Literal: ":="},
		{Type: TokenInteger, Literal: "20"},
		{Type: TokenPeriod, Literal: "."},
		{Type: TokenEOF},
	})
}

func TestNextToken_Arithmetic(t *testing.T) {
	assertTokens(t, `3 + 4 * 5`, []Token{
		{Type: TokenInteger, Literal: "3"},
		{Type: TokenBinaryOp, Literal: "+"},
		{Type: TokenInteger, Literal: "4"},
		{Type: TokenBinaryOp, Literal: "*"},
		{Type: TokenInteger, Literal: "5"},
		{Type: TokenEOF},
	})
}

func TestTokenize_ValidInput(t *testing.T) {
	input := `"Hello" println.`

	l := New(input)
	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}

	expectedTypes := []TokenType{TokenString, TokenIdentifier, TokenPeriod, TokenEOF}
	for i, expectedType := range expectedTypes {
		if tokens[i].Type != expectedType {
			t.Fatalf("token %d: expected type %q, got %q", i, expectedType, tokens[i].Type)
		}
	}
}

func TestTokenize_IllegalToken(t *testing.T) {
	input := `x ~ y` // '~' alone is not a recognized binary selector

	l := New(input)
	tokens, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected error for illegal token, got nil")
	}
	if len(tokens) < 2 {
		t.Fatalf("expected at least 2 tokens, got %d", len(tokens))
	}
}

func TestLineAndColumn_Tracking(t *testing.T) {
	input := "x\ny\nz"

	l := New(input)

	tok1 := l.NextToken() // x
	if tok1.Line != 1 {
		t.Errorf("expected token on line 1, got line %d", tok1.Line)
	}

	nl1 := l.NextToken() // newline
	if nl1.Type != TokenNewline {
		t.Fatalf("expected newline, got %s", nl1.Type)
	}

	tok2 := l.NextToken() // y
	if tok2.Line != 2 {
		t.Errorf("expected token on line 2, got line %d", tok2.Line)
	}

	nl2 := l.NextToken() // newline
	if nl2.Type != TokenNewline {
		t.Fatalf("expected newline, got %s", nl2.Type)
	}

	tok3 := l.NextToken() // z
	if tok3.Line != 3 {
		t.Errorf("expected token on line 3, got line %d", tok3.Line)
	}
}

func TestNextToken_NumberBeforePeriod(t *testing.T) {
	assertTokens(t, `42.`, []Token{
		{Type: TokenInteger, Literal: "42"},
		{Type: TokenPeriod, Literal: "."},
		{Type: TokenEOF},
	})
}
