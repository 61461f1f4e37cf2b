// Package parser builds an AST (pkg/ast) from the token stream produced
// by pkg/lexer.
//
// Precedence within a single statement is unary > binary > keyword,
// implemented as a small layered recursive-descent chain (the Smalltalk
// family's fixed-precedence grammar needs no general Pratt infix table:
// every binary selector shares one precedence level, left-associative).
// Cascades bind to the receiver of the immediately preceding message
// send; a newline terminates a statement except when it would otherwise
// split a keyword-message chain and the next non-blank token is another
// keyword, in which case it is absorbed.
package parser

import (
	"fmt"
	"strings"

	"github.com/kristofer/nemo/pkg/ast"
	"github.com/kristofer/nemo/pkg/lexer"
)

// ParseError reports a syntax error with its source position.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes tokens from a Lexer and builds ast nodes.
type Parser struct {
	l   *lexer.Lexer
	cur lexer.Token
	pk  lexer.Token

	errors []*ParseError
}

// New creates a Parser over the given source.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.advance()
	p.advance()
	return p
}

// Errors returns every error accumulated during parsing.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    p.cur.Line,
		Column:  p.cur.Column,
	})
}

func (p *Parser) advance() {
	p.cur = p.pk
	p.pk = p.l.NextToken()
}

// ParseProgram parses the entire input as a top-level sequence of
// statements. It never stops early on error: it records diagnostics and
// attempts to recover at the next statement boundary, so a caller can
// report every error found in one pass.
func (p *Parser) ParseProgram() *ast.TopLevelSequence {
	seq := &ast.TopLevelSequence{}
	seq.Statements = p.parseStatementList(lexer.TokenEOF)
	return seq
}

// parseStatementList parses statements up to (not consuming) a token of
// type stop, or EOF.
func (p *Parser) parseStatementList(stop lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for p.cur.Type != stop && p.cur.Type != lexer.TokenEOF {
		if p.cur.Type == lexer.TokenPeriod || p.cur.Type == lexer.TokenNewline {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.cur.Type != stop && p.cur.Type != lexer.TokenPeriod &&
			p.cur.Type != lexer.TokenNewline && p.cur.Type != lexer.TokenEOF {
			p.addError("unexpected token %s (%q) after statement", p.cur.Type, p.cur.Literal)
			p.advance()
		}
	}
	return stmts
}

// parseStatement parses one statement: every nemo statement is an
// expression (assignment, return, message send, method-definition sugar,
// or class-derive sugar).
func (p *Parser) parseStatement() ast.Statement {
	return p.parseExpression()
}

// parseExpression is the top-level expression entry point: return,
// assignment, then the unary>binary>keyword chain, then method
// definitions and cascades which both attach to the result of that
// chain.
func (p *Parser) parseExpression() ast.Expression {
	if p.cur.Type == lexer.TokenReturn {
		p.advance()
		val := p.parseExpression()
		return &ast.Return{Value: val}
	}

	if p.cur.Type == lexer.TokenIdentifier && p.pk.Type == lexer.TokenAssign {
		name := p.cur.Literal
		p.advance() // identifier
		p.advance() // :=
		val := p.parseExpression()
		return &ast.Assign{Target: &ast.Identifier{Name: name}, Value: val}
	}

	expr := p.parseKeywordMessage()
	expr = p.maybeClassDerive(expr)

	if p.cur.Type == lexer.TokenMethodDef {
		return p.parseMethodDefinition(expr)
	}
	if p.cur.Type == lexer.TokenSemicolon {
		expr = p.parseCascade(expr)
	}
	return expr
}

// parseKeywordMessage parses a binary-level expression and, if followed
// by one or more keyword parts, folds them into a single compound
// keyword send. A newline between keyword parts is absorbed when the
// next token after it is itself a keyword.
func (p *Parser) parseKeywordMessage() ast.Expression {
	receiver := p.parseBinaryMessage()
	if p.cur.Type != lexer.TokenKeyword {
		return receiver
	}

	var parts []string
	var args []ast.Expression
	for {
		if p.cur.Type == lexer.TokenNewline && p.pk.Type == lexer.TokenKeyword {
			p.advance()
			continue
		}
		if p.cur.Type != lexer.TokenKeyword {
			break
		}
		parts = append(parts, p.cur.Literal)
		p.advance()
		args = append(args, p.parseBinaryMessage())
	}
	return &ast.MessageSend{Receiver: receiver, Selector: strings.Join(parts, ""), Args: args}
}

func (p *Parser) parseBinaryMessage() ast.Expression {
	left := p.parseUnaryMessage()
	for p.cur.Type == lexer.TokenBinaryOp {
		op := p.cur.Literal
		p.advance()
		right := p.parseUnaryMessage()
		left = &ast.MessageSend{Receiver: left, Selector: op, Args: []ast.Expression{right}}
	}
	return left
}

func (p *Parser) parseUnaryMessage() ast.Expression {
	receiver := p.parsePrimary()
	for p.cur.Type == lexer.TokenIdentifier {
		selector := p.cur.Literal
		p.advance()
		receiver = &ast.MessageSend{Receiver: receiver, Selector: selector}
	}
	return receiver
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case lexer.TokenInteger:
		return p.parseLiteralNumber(ast.IntLiteral)
	case lexer.TokenFloat:
		return p.parseLiteralNumber(ast.FloatLiteral)
	case lexer.TokenString:
		lit := &ast.Literal{Kind: ast.StringLiteral, Str: p.cur.Literal, Token: p.cur.Literal}
		p.advance()
		return lit
	case lexer.TokenSymbol:
		lit := &ast.Literal{Kind: ast.SymbolLiteral, Symbol: p.cur.Literal, Token: p.cur.Literal}
		p.advance()
		return lit
	case lexer.TokenScopedSuper:
		parent := p.cur.Literal
		p.advance()
		return &ast.ScopedSuperExpr{Parent: parent}
	case lexer.TokenIdentifier:
		switch p.cur.Literal {
		case "self":
			p.advance()
			return &ast.SelfExpr{}
		case "super":
			p.advance()
			return &ast.SuperExpr{}
		default:
			name := p.cur.Literal
			p.advance()
			return &ast.Identifier{Name: name}
		}
	case lexer.TokenLParen:
		p.advance()
		expr := p.parseExpression()
		if p.cur.Type == lexer.TokenRParen {
			p.advance()
		} else {
			p.addError("expected ')' to close parenthesized expression")
		}
		return expr
	case lexer.TokenLBracket:
		return p.parseBlockLiteral()
	case lexer.TokenHashLParen:
		return p.parseArrayLiteral()
	case lexer.TokenHashLBrace:
		return p.parseTableLiteral()
	default:
		tok := p.cur
		p.addError("unexpected token %s (%q)", tok.Type, tok.Literal)
		p.advance()
		return &ast.Identifier{Name: tok.Literal}
	}
}

func (p *Parser) parseLiteralNumber(kind ast.LiteralKind) ast.Expression {
	lit := &ast.Literal{Kind: kind, Token: p.cur.Literal}
	switch kind {
	case ast.IntLiteral:
		var v int64
		neg := false
		s := p.cur.Literal
		if strings.HasPrefix(s, "-") {
			neg = true
			s = s[1:]
		}
		for _, c := range s {
			v = v*10 + int64(c-'0')
		}
		if neg {
			v = -v
		}
		lit.Int = v
	case ast.FloatLiteral:
		var f float64
		fmt.Sscanf(p.cur.Literal, "%g", &f)
		lit.Float = f
	}
	p.advance()
	return lit
}

// parseBlockLiteral parses "[:p1 :p2 | | t1 t2 | stmt. stmt]".
func (p *Parser) parseBlockLiteral() *ast.Block {
	p.advance() // consume '['
	b := &ast.Block{}

	for p.cur.Type == lexer.TokenColon {
		p.advance()
		if p.cur.Type != lexer.TokenIdentifier {
			p.addError("expected parameter name after ':'")
			break
		}
		b.Parameters = append(b.Parameters, p.cur.Literal)
		p.advance()
	}
	if len(b.Parameters) > 0 {
		if p.cur.Type == lexer.TokenPipe {
			p.advance()
		} else {
			p.addError("expected '|' after block parameter list")
		}
	}

	p.skipLeadingNewlines()
	if p.cur.Type == lexer.TokenPipe {
		p.advance()
		for p.cur.Type == lexer.TokenIdentifier {
			b.Temporaries = append(b.Temporaries, p.cur.Literal)
			p.advance()
		}
		if p.cur.Type == lexer.TokenPipe {
			p.advance()
		} else {
			p.addError("expected closing '|' for block temporaries")
		}
	}

	b.Body = p.parseStatementList(lexer.TokenRBracket)
	if p.cur.Type == lexer.TokenRBracket {
		p.advance()
	} else {
		p.addError("expected ']' to close block")
	}
	return b
}

func (p *Parser) skipLeadingNewlines() {
	for p.cur.Type == lexer.TokenNewline {
		p.advance()
	}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	p.advance() // consume '#('
	arr := &ast.ArrayLiteral{}
	for p.cur.Type != lexer.TokenRParen && p.cur.Type != lexer.TokenEOF {
		p.skipLeadingNewlines()
		if p.cur.Type == lexer.TokenRParen {
			break
		}
		arr.Elements = append(arr.Elements, p.parseArrayElement())
	}
	if p.cur.Type == lexer.TokenRParen {
		p.advance()
	} else {
		p.addError("expected ')' to close array literal")
	}
	return arr
}

// parseArrayElement parses one element of a literal array: a number,
// string, symbol, nested array literal, or bare identifier (which, per
// Smalltalk literal-array convention, denotes a Symbol rather than a
// variable reference).
func (p *Parser) parseArrayElement() ast.Expression {
	switch p.cur.Type {
	case lexer.TokenInteger:
		return p.parseLiteralNumber(ast.IntLiteral)
	case lexer.TokenFloat:
		return p.parseLiteralNumber(ast.FloatLiteral)
	case lexer.TokenString:
		lit := &ast.Literal{Kind: ast.StringLiteral, Str: p.cur.Literal, Token: p.cur.Literal}
		p.advance()
		return lit
	case lexer.TokenSymbol:
		lit := &ast.Literal{Kind: ast.SymbolLiteral, Symbol: p.cur.Literal, Token: p.cur.Literal}
		p.advance()
		return lit
	case lexer.TokenIdentifier:
		name := p.cur.Literal
		p.advance()
		return &ast.Literal{Kind: ast.SymbolLiteral, Symbol: name, Token: name}
	case lexer.TokenKeyword:
		name := p.cur.Literal
		p.advance()
		return &ast.Literal{Kind: ast.SymbolLiteral, Symbol: name, Token: name}
	case lexer.TokenHashLParen:
		return p.parseArrayLiteral()
	default:
		tok := p.cur
		p.addError("unexpected token %s in array literal", tok.Type)
		p.advance()
		return &ast.Literal{Kind: ast.SymbolLiteral, Symbol: tok.Literal}
	}
}

func (p *Parser) parseTableLiteral() *ast.TableLiteral {
	p.advance() // consume '#{'
	tbl := &ast.TableLiteral{}
	for p.cur.Type != lexer.TokenRBrace && p.cur.Type != lexer.TokenEOF {
		p.skipLeadingNewlines()
		if p.cur.Type == lexer.TokenRBrace {
			break
		}
		if p.cur.Type != lexer.TokenKeyword {
			p.addError("expected 'key:' in table literal")
			p.advance()
			continue
		}
		key := strings.TrimSuffix(p.cur.Literal, ":")
		p.advance()
		val := p.parseBinaryMessage()
		tbl.Entries = append(tbl.Entries, ast.TableEntry{Key: key, Value: val})
		if p.cur.Type == lexer.TokenPeriod {
			p.advance()
		}
	}
	if p.cur.Type == lexer.TokenRBrace {
		p.advance()
	} else {
		p.addError("expected '}' to close table literal")
	}
	return tbl
}

// parseCascade absorbs a run of "; selector args" parts, all sent to the
// receiver of the message send that head already represents.
func (p *Parser) parseCascade(head ast.Expression) ast.Expression {
	ms, ok := head.(*ast.MessageSend)
	if !ok {
		p.addError("cascade ';' must follow a message send")
		ms = &ast.MessageSend{Receiver: head}
	}
	for p.cur.Type == lexer.TokenSemicolon {
		p.advance()
		selector, args := p.parseCascadePart()
		ms.Cascaded = append(ms.Cascaded, ast.CascadeMessage{Selector: selector, Args: args})
	}
	return ms
}

func (p *Parser) parseCascadePart() (string, []ast.Expression) {
	switch p.cur.Type {
	case lexer.TokenKeyword:
		var parts []string
		var args []ast.Expression
		for {
			if p.cur.Type == lexer.TokenNewline && p.pk.Type == lexer.TokenKeyword {
				p.advance()
				continue
			}
			if p.cur.Type != lexer.TokenKeyword {
				break
			}
			parts = append(parts, p.cur.Literal)
			p.advance()
			args = append(args, p.parseBinaryMessage())
		}
		return strings.Join(parts, ""), args
	case lexer.TokenBinaryOp:
		sel := p.cur.Literal
		p.advance()
		arg := p.parseUnaryMessage()
		return sel, []ast.Expression{arg}
	case lexer.TokenIdentifier:
		sel := p.cur.Literal
		p.advance()
		return sel, nil
	default:
		p.addError("expected a message after ';' in cascade")
		return "", nil
	}
}

// maybeClassDerive recognizes "SuperExpr derive" and
// "SuperExpr derive: #(slots...)" and rewrites them into a dedicated
// ClassDerive node, per the grammar's class-definition sugar.
func (p *Parser) maybeClassDerive(expr ast.Expression) ast.Expression {
	ms, ok := expr.(*ast.MessageSend)
	if !ok || len(ms.Cascaded) > 0 {
		return expr
	}
	if ms.Selector == "derive" && len(ms.Args) == 0 {
		return &ast.ClassDerive{SuperClassExpr: ms.Receiver}
	}
	if ms.Selector == "derive:" && len(ms.Args) == 1 {
		if arr, ok := ms.Args[0].(*ast.ArrayLiteral); ok {
			var slots []string
			for _, e := range arr.Elements {
				if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.SymbolLiteral {
					slots = append(slots, lit.Symbol)
				}
			}
			return &ast.ClassDerive{SuperClassExpr: ms.Receiver, SlotNames: slots}
		}
	}
	return expr
}

// parseMethodDefinition parses the tail of "ClassExpr>>selector params
// [body]" and "ClassExpr class>>selector params [body]" once the '>>'
// token has been reached.
func (p *Parser) parseMethodDefinition(left ast.Expression) *ast.MethodDefinition {
	p.advance() // consume '>>'

	target := left
	isClassMethod := false
	if ms, ok := left.(*ast.MessageSend); ok && ms.Selector == "class" && len(ms.Args) == 0 {
		target = ms.Receiver
		isClassMethod = true
	}

	selector, params := p.parseMethodSelector()
	body := p.parseMethodBody()

	return &ast.MethodDefinition{
		TargetClassExpr: target,
		Selector:        selector,
		Parameters:      params,
		Body:            body,
		IsClassMethod:   isClassMethod,
	}
}

func (p *Parser) parseMethodSelector() (string, []string) {
	switch p.cur.Type {
	case lexer.TokenKeyword:
		var sel strings.Builder
		var params []string
		for {
			if p.cur.Type == lexer.TokenNewline && p.pk.Type == lexer.TokenKeyword {
				p.advance()
				continue
			}
			if p.cur.Type != lexer.TokenKeyword {
				break
			}
			sel.WriteString(p.cur.Literal)
			p.advance()
			if p.cur.Type != lexer.TokenIdentifier {
				p.addError("expected parameter name in method selector")
				break
			}
			params = append(params, p.cur.Literal)
			p.advance()
		}
		return sel.String(), params
	case lexer.TokenBinaryOp:
		sel := p.cur.Literal
		p.advance()
		if p.cur.Type != lexer.TokenIdentifier {
			p.addError("expected parameter name after binary selector")
			return sel, nil
		}
		param := p.cur.Literal
		p.advance()
		return sel, []string{param}
	case lexer.TokenIdentifier:
		sel := p.cur.Literal
		p.advance()
		return sel, nil
	default:
		p.addError("expected method selector")
		return "", nil
	}
}

// parseMethodBody parses "[ | temps | stmt. stmt ]" — a method body has
// no leading block parameters of its own since the selector already
// supplied the formal parameter names.
func (p *Parser) parseMethodBody() *ast.Block {
	if p.cur.Type != lexer.TokenLBracket {
		p.addError("expected '[' to start method body")
		return &ast.Block{}
	}
	p.advance()

	b := &ast.Block{}
	p.skipLeadingNewlines()
	if p.cur.Type == lexer.TokenPipe {
		p.advance()
		for p.cur.Type == lexer.TokenIdentifier {
			b.Temporaries = append(b.Temporaries, p.cur.Literal)
			p.advance()
		}
		if p.cur.Type == lexer.TokenPipe {
			p.advance()
		} else {
			p.addError("expected closing '|' for method temporaries")
		}
	}

	b.Body = p.parseStatementList(lexer.TokenRBracket)
	if p.cur.Type == lexer.TokenRBracket {
		p.advance()
	} else {
		p.addError("expected ']' to close method body")
	}
	return b
}

// IsComplete reports whether src forms a lexically balanced, complete
// statement: every bracket/paren/brace is closed and no string literal
// is left open. The REPL uses it to decide whether to keep reading more
// lines, matching the parser's own delimiters rather than a separate ad
// hoc heuristic.
func IsComplete(src string) bool {
	l := lexer.New(src)
	depth := 0
	for {
		tok := l.NextToken()
		switch tok.Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenHashLParen, lexer.TokenHashLBrace:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			depth--
		case lexer.TokenIllegal:
			if strings.Contains(tok.Literal, "unterminated") {
				return false
			}
		case lexer.TokenEOF:
			return depth <= 0
		}
	}
}
