package parser

import (
	"testing"

	"github.com/kristofer/nemo/pkg/ast"
)

func TestParseIntegerLiteral(t *testing.T) {
	p := New("42")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}

	lit, ok := program.Statements[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected *ast.Literal, got %T", program.Statements[0])
	}
	if lit.Kind != ast.IntLiteral || lit.Int != 42 {
		t.Errorf("expected int literal 42, got kind=%d value=%d", lit.Kind, lit.Int)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	p := New("3.14")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	lit, ok := program.Statements[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected *ast.Literal, got %T", program.Statements[0])
	}
	if lit.Kind != ast.FloatLiteral || lit.Float != 3.14 {
		t.Errorf("expected float literal 3.14, got kind=%d value=%f", lit.Kind, lit.Float)
	}
}

func TestParseStringLiteral(t *testing.T) {
	p := New("\"Hello, World!\"")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	lit, ok := program.Statements[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected *ast.Literal, got %T", program.Statements[0])
	}
	if lit.Kind != ast.StringLiteral || lit.Str != "Hello, World!" {
		t.Errorf("expected string literal 'Hello, World!', got %q", lit.Str)
	}
}

func TestParseBooleanLiterals(t *testing.T) {
	for _, input := range []string{"true", "false"} {
		p := New(input)
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			t.Fatalf("unexpected parse errors for %q: %v", input, errs)
		}

		ident, ok := program.Statements[0].(*ast.Identifier)
		if !ok {
			t.Fatalf("expected *ast.Identifier for %q, got %T", input, program.Statements[0])
		}
		if ident.Name != input {
			t.Errorf("expected identifier %q, got %q", input, ident.Name)
		}
	}
}

func TestParseNilLiteral(t *testing.T) {
	p := New("nil")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	ident, ok := program.Statements[0].(*ast.Identifier)
	if !ok {
		t.Fatalf("expected *ast.Identifier, got %T", program.Statements[0])
	}
	if ident.Name != "nil" {
		t.Errorf("expected identifier 'nil', got %q", ident.Name)
	}
}

func TestParseIdentifier(t *testing.T) {
	p := New("println")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	ident, ok := program.Statements[0].(*ast.Identifier)
	if !ok {
		t.Fatalf("expected *ast.Identifier, got %T", program.Statements[0])
	}
	if ident.Name != "println" {
		t.Errorf("expected identifier 'println', got %s", ident.Name)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	input := "42.\n\"hello\".\ntrue."
	p := New(input)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}

	if _, ok := program.Statements[0].(*ast.Literal); !ok {
		t.Errorf("expected literal in first statement, got %T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.Literal); !ok {
		t.Errorf("expected literal in second statement, got %T", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*ast.Identifier); !ok {
		t.Errorf("expected identifier in third statement, got %T", program.Statements[2])
	}
}

func TestParseNegativeNumber(t *testing.T) {
	p := New("-17")
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	lit, ok := program.Statements[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected *ast.Literal, got %T", program.Statements[0])
	}
	if lit.Int != -17 {
		t.Errorf("expected value -17, got %d", lit.Int)
	}
}

func TestParseWithComments(t *testing.T) {
	input := "# This is a comment\n42"
	p := New(input)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}

	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	lit, ok := program.Statements[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected *ast.Literal, got %T", program.Statements[0])
	}
	if lit.Int != 42 {
		t.Errorf("expected value 42, got %d", lit.Int)
	}
}
