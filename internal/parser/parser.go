// Package parser implements golox's recursive-descent parser: tokens to
// statement and expression trees, with panic-mode error recovery
// (spec.md §4.1).
package parser

import (
	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/token"
)

// ErrorSink receives static-error diagnostics.
type ErrorSink interface {
	StaticError(tok *token.Token, msg string)
}

const maxParams = 255

// Parser turns a token stream into a Program via single-token lookahead.
type Parser struct {
	tokens  []token.Token
	current int
	errs    ErrorSink
}

// New creates a Parser over the given token stream, which must end in an
// EOS token (as produced by lexer.ScanTokens).
func New(tokens []token.Token, errs ErrorSink) *Parser {
	return &Parser{tokens: tokens, errs: errs}
}

// ParseProgram parses the whole token stream, attempting to produce a full
// program even in the presence of errors (spec.md §4.1 "Parsing always
// attempts to produce a full program").
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

// ---- token helpers ----

func (p *Parser) peek() token.Token  { return p.tokens[p.current] }
func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) atEnd() bool { return p.peek().Type == token.EOS }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.Type) bool {
	if p.atEnd() {
		return t == token.EOS
	}
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// parseError is the internal panic value used to unwind to the nearest
// synchronization point, mirroring the teacher's panic-mode recovery
// (internal/parser synchronize) but expressed with Go's panic/recover
// rather than a sentinel error thread through every call, since recursive
// descent here is many levels deep and the unwind target is always the
// nearest enclosing declaration() call (top level or inside a block).
type parseError struct{}

func (p *Parser) errorAt(tok token.Token, msg string) parseError {
	p.errs.StaticError(&tok, msg)
	return parseError{}
}

// expect consumes the next token if it has type t, else reports a static
// error and panics to trigger synchronization.
func (p *Parser) expect(t token.Type, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.errorAt(p.peek(), msg))
}

// synchronize discards tokens until a likely statement boundary, per
// spec.md §4.1 "Panic-mode recovery".
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Fun, token.Return, token.Var, token.Break, token.Continue,
			token.Class, token.For, token.If, token.While, token.LeftBrace:
			return
		}
		p.advance()
	}
}

// ---- declarations ----

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.Var):
		return p.varDecl()
	case p.match(token.Fun):
		return p.funDecl()
	case p.match(token.Class):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.expect(token.Identifier, "expected variable name")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.expect(token.Semicolon, "expected ';' after variable declaration")
	return &ast.VarDecl{Name: name, Init: init}
}

func (p *Parser) funDecl() *ast.FunctionDecl {
	name := p.expect(token.Identifier, "expected function name")
	p.expect(token.LeftParen, "expected '(' after function name")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxParams {
				p.errorAt(p.peek(), "can't have more than 255 parameters")
			}
			params = append(params, p.expect(token.Identifier, "expected parameter name"))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RightParen, "expected ')' after parameters")
	p.expect(token.LeftBrace, "expected '{' before function body")
	body := p.block()
	return &ast.FunctionDecl{Name: name, Params: params, Body: body}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.expect(token.Identifier, "expected class name")

	var superclass *ast.Identifier
	if p.match(token.Colon) {
		superTok := p.expect(token.Identifier, "expected superclass name")
		if superTok.Lexeme == name.Lexeme {
			p.errorAt(superTok, "a class can't extend itself")
		}
		superclass = &ast.Identifier{Name: superTok}
	}

	p.expect(token.LeftBrace, "expected '{' before class body")
	var methods []*ast.FunctionDecl
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.funDecl())
	}
	p.expect(token.RightBrace, "expected '}' after class body")

	return &ast.ClassDecl{Name: name, Superclass: superclass, Methods: methods}
}

// ---- statements ----

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.LeftBrace):
		return p.block()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.Break):
		kw := p.previous()
		p.expect(token.Semicolon, "expected ';' after 'break'")
		return &ast.Break{Keyword: kw}
	case p.match(token.Continue):
		kw := p.previous()
		p.expect(token.Semicolon, "expected ';' after 'continue'")
		return &ast.Continue{Keyword: kw}
	case p.match(token.Return):
		return p.returnStatement()
	default:
		return p.assignOrExprStatement()
	}
}

func (p *Parser) block() *ast.Block {
	b := &ast.Block{}
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			b.Statements = append(b.Statements, stmt)
		}
	}
	p.expect(token.RightBrace, "expected '}' after block")
	return b
}

func (p *Parser) ifStatement() ast.Stmt {
	stmt := &ast.If{}
	stmt.Conditions = append(stmt.Conditions, p.expression())
	stmt.Branches = append(stmt.Branches, p.bracedBlock())

	for p.match(token.Elif) {
		stmt.Conditions = append(stmt.Conditions, p.expression())
		stmt.Branches = append(stmt.Branches, p.bracedBlock())
	}

	if p.match(token.Else) {
		stmt.Else = p.bracedBlock()
	}
	return stmt
}

func (p *Parser) bracedBlock() *ast.Block {
	p.expect(token.LeftBrace, "expected '{'")
	return p.block()
}

func (p *Parser) whileStatement() ast.Stmt {
	cond := p.expression()
	body := p.bracedBlock()
	return &ast.While{Condition: cond, Body: body}
}

// forStatement desugars `for (init; cond; incr) body` into an optional
// initializer followed by a while loop whose body is a block containing the
// user body and, recorded separately, the increment statement so `continue`
// can run it before re-testing the condition (spec.md §4.1 "for desugars
// to").
func (p *Parser) forStatement() ast.Stmt {
	p.expect(token.LeftParen, "expected '(' after 'for'")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		initializer = nil
	case p.match(token.Var):
		initializer = p.varDecl()
	default:
		initializer = p.assignOrExprStatement()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.expect(token.Semicolon, "expected ';' after loop condition")

	var increment ast.Stmt
	if !p.check(token.RightParen) {
		increment = p.assignOrExprStatementNoSemicolon()
	}
	p.expect(token.RightParen, "expected ')' after for clauses")

	body := p.bracedBlock()
	body.ForIncrement = increment

	if condition == nil {
		condition = &ast.Literal{Value: true}
	}

	loop := ast.Stmt(&ast.While{Condition: condition, Body: body})

	if initializer != nil {
		wrapper := &ast.Block{Statements: []ast.Stmt{initializer, loop}}
		return wrapper
	}
	return loop
}

func (p *Parser) returnStatement() ast.Stmt {
	kw := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.expect(token.Semicolon, "expected ';' after return value")
	return &ast.Return{Keyword: kw, Value: value}
}

// assignOrExprStatement parses `expr ("=" expr)? ";"`. If the left side of
// an assignment is not an Identifier or GetField, it is a static error
// (spec.md §4.1 "Assignment is parsed by...").
func (p *Parser) assignOrExprStatement() ast.Stmt {
	stmt := p.assignOrExprStatementNoSemicolon()
	p.expect(token.Semicolon, "expected ';' after statement")
	return stmt
}

func (p *Parser) assignOrExprStatementNoSemicolon() ast.Stmt {
	expr := p.expression()

	if !p.match(token.Equal) {
		return &ast.ExprStmt{Expression: expr}
	}

	equals := p.previous()
	value := p.expression()

	switch target := expr.(type) {
	case *ast.Identifier:
		return &ast.Assign{Target: target, Value: value}
	case *ast.GetField:
		return &ast.SetField{Object: target.Object, Field: target.Field, Value: value}
	default:
		p.errorAt(equals, "invalid assignment target")
		return &ast.ExprStmt{Expression: expr}
	}
}

// ---- expressions ----

func (p *Parser) expression() ast.Expr { return p.logicOr() }

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.Or) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Minus, token.Plus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Star, token.Percent) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

// call parses chains of `(...)` and `.IDENT` suffixes in a single loop so
// `a.b().c.d(x)` parses as expected (spec.md §4.1 "Call parsing").
func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			field := p.expect(token.Identifier, "expected property name after '.'")
			expr = &ast.GetField{Object: expr, Field: field}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxParams {
				p.errorAt(p.peek(), "can't have more than 255 arguments")
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RightParen, "expected ')' after arguments")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Super):
		kw := p.previous()
		p.expect(token.Dot, "expected '.' after 'super'")
		method := p.expect(token.Identifier, "expected superclass method name")
		return &ast.Super{Keyword: kw, Method: method}
	case p.match(token.Identifier):
		return &ast.Identifier{Name: p.previous()}
	case p.match(token.Print):
		// `print` is a reserved word (spec.md §6 "Lexical surface") but is
		// called like any other native function, never as its own statement
		// form, so it parses as an ordinary identifier use.
		return &ast.Identifier{Name: p.previous()}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.expect(token.RightParen, "expected ')' after expression")
		return &ast.Grouping{Expression: expr}
	}
	panic(p.errorAt(p.peek(), "expected expression"))
}
