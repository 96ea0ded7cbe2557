package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/takoeight0821/lox/ast"
	"github.com/takoeight0821/lox/token"
	"github.com/takoeight0821/lox/utils"
)

type Parser struct {
	tokens  []token.Token
	current int
	errs    []error
}

// NewParser expects tokens terminated by an EOF token, as returned by lexer.Lex.
func NewParser(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		tokens = append(tokens, token.Token{Kind: token.EOF})
	}
	return &Parser{tokens, 0, nil}
}

// ParseProgram parses declarations until EOF.
// A malformed declaration is skipped up to the next statement boundary, so the
// returned error joins every error found. The well-formed statements are returned too.
func (p *Parser) ParseProgram() ([]ast.Stmt, error) {
	p.errs = nil
	stmts := []ast.Stmt{}
	for !p.IsAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			p.recover(err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}

	return stmts, errors.Join(p.errs...)
}

// ParseExpr parses the whole input as a single expression.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.IsAtEnd() {
		return nil, unexpectedToken(p.peek(), "end of input")
	}

	return expr, nil
}

// declaration = varDecl | statement ;
func (p *Parser) declaration() (ast.Stmt, error) {
	if p.match(token.VAR) {
		return p.varDecl()
	}

	return p.statement()
}

// varDecl = "var" IDENT ( "=" expression )? ";" ;
func (p *Parser) varDecl() (*ast.Var, error) {
	p.advance()
	name, err := p.consume(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.match(token.EQUAL) {
		p.advance()
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "`;`"); err != nil {
		return nil, err
	}

	return &ast.Var{Name: name, Init: init}, nil
}

// statement = exprStmt | printStmt | block | ifStmt | whileStmt ;
func (p *Parser) statement() (ast.Stmt, error) {
	//exhaustive:ignore
	switch p.peek().Kind {
	case token.PRINT:
		return p.printStmt()
	case token.LEFTBRACE:
		return p.block()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	default:
		return p.exprStmt()
	}
}

// exprStmt = expression ";" ;
func (p *Parser) exprStmt() (*ast.ExprStmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "`;`"); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{Expr: expr}, nil
}

// printStmt = "print" expression ";" ;
func (p *Parser) printStmt() (*ast.Print, error) {
	keyword := p.advance()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "`;`"); err != nil {
		return nil, err
	}

	return &ast.Print{Keyword: keyword, Expr: expr}, nil
}

// block = "{" declaration* "}" ;
func (p *Parser) block() (*ast.Block, error) {
	brace := p.advance()
	stmts := []ast.Stmt{}
	for !p.match(token.RIGHTBRACE) && !p.IsAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RIGHTBRACE, "`}`"); err != nil {
		return nil, err
	}

	return &ast.Block{Brace: brace, Stmts: stmts}, nil
}

// ifStmt = "if" "(" expression ")" statement ( "else" statement )? ;
func (p *Parser) ifStmt() (*ast.If, error) {
	keyword := p.advance()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	// The nearest if takes the else.
	var els ast.Stmt
	if p.match(token.ELSE) {
		p.advance()
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}

	return &ast.If{Keyword: keyword, Cond: cond, Then: then, Else: els}, nil
}

// whileStmt = "while" "(" expression ")" statement ;
func (p *Parser) whileStmt() (*ast.While, error) {
	keyword := p.advance()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	return &ast.While{Keyword: keyword, Cond: cond, Body: body}, nil
}

// condition = "(" expression ")" ;
func (p *Parser) condition() (ast.Expr, error) {
	open, err := p.consume(token.LEFTPAREN, "`(`")
	if err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.match(token.RIGHTPAREN) {
		return nil, missingClosingParen(p.peek(), open)
	}
	p.advance()

	return cond, nil
}

// expression = assignment ;
func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment = IDENT "=" assignment | logicOr ;
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}

	if p.match(token.EQUAL) {
		equals := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}

		return nil, utils.PosError{Where: equals, Err: InvalidAssignmentTargetError{Target: expr}}
	}

	return expr, nil
}

// logicOr = logicAnd ( "or" logicAnd )* ;
func (p *Parser) logicOr() (ast.Expr, error) {
	return p.leftAssoc(p.logicAnd, logical, token.OR)
}

// logicAnd = equality ( "and" equality )* ;
func (p *Parser) logicAnd() (ast.Expr, error) {
	return p.leftAssoc(p.equality, logical, token.AND)
}

// equality = comparison ( ( "!=" | "==" ) comparison )* ;
func (p *Parser) equality() (ast.Expr, error) {
	return p.leftAssoc(p.comparison, binary, token.BANGEQUAL, token.EQUALEQUAL)
}

// comparison = term ( ( ">" | ">=" | "<" | "<=" ) term )* ;
func (p *Parser) comparison() (ast.Expr, error) {
	return p.leftAssoc(p.term, binary, token.GREATER, token.GREATEREQUAL, token.LESS, token.LESSEQUAL)
}

// term = factor ( ( "-" | "+" ) factor )* ;
func (p *Parser) term() (ast.Expr, error) {
	return p.leftAssoc(p.factor, binary, token.MINUS, token.PLUS)
}

// factor = unary ( ( "/" | "*" ) unary )* ;
func (p *Parser) factor() (ast.Expr, error) {
	return p.leftAssoc(p.unary, binary, token.SLASH, token.STAR)
}

func binary(left ast.Expr, op token.Token, right ast.Expr) ast.Expr {
	return &ast.Binary{Left: left, Op: op, Right: right}
}

func logical(left ast.Expr, op token.Token, right ast.Expr) ast.Expr {
	return &ast.Logical{Left: left, Op: op, Right: right}
}

// leftAssoc parses `next ( op next )*` for op in kinds, folding to the left.
func (p *Parser) leftAssoc(
	next func() (ast.Expr, error),
	build func(ast.Expr, token.Token, ast.Expr) ast.Expr,
	kinds ...token.Kind,
) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(kinds...) {
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = build(expr, op, right)
	}

	return expr, nil
}

// unary = ( "!" | "-" ) unary | primary ;
func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.BANG, token.MINUS) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Right: right}, nil
	}

	return p.primary()
}

// primary = "true" | "false" | "nil" | NUMBER | STRING | IDENT | "(" expression ")" ;
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	//exhaustive:ignore
	switch tok.Kind {
	case token.FALSE:
		p.advance()
		return &ast.Literal{Token: tok, Value: false}, nil
	case token.TRUE:
		p.advance()
		return &ast.Literal{Token: tok, Value: true}, nil
	case token.NIL:
		p.advance()
		return &ast.Literal{Token: tok, Value: nil}, nil
	case token.NUMBER, token.STRING:
		p.advance()
		return &ast.Literal{Token: tok, Value: tok.Literal}, nil
	case token.IDENT:
		p.advance()
		return &ast.Variable{Name: tok}, nil
	case token.LEFTPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.match(token.RIGHTPAREN) {
			return nil, missingClosingParen(p.peek(), tok)
		}
		p.advance()
		return &ast.Grouping{Expr: expr}, nil
	default:
		return nil, unexpectedToken(tok, "expression")
	}
}

// synchronize discards tokens until the start of the next statement.
func (p *Parser) synchronize() {
	if !p.IsAtEnd() {
		p.advance()
	}
	for !p.IsAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		//exhaustive:ignore
		switch p.peek().Kind {
		case token.CLASS, token.FUNC, token.VAR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

func (p *Parser) recover(err error) {
	p.errs = append(p.errs, err)
}

func (p Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) advance() token.Token {
	if !p.IsAtEnd() {
		p.current++
	}

	return p.previous()
}

func (p Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p Parser) IsAtEnd() bool {
	return p.peek().Kind == token.EOF
}

// match reports whether the current token is one of kinds. It does not consume.
func (p Parser) match(kinds ...token.Kind) bool {
	if p.IsAtEnd() {
		return false
	}
	for _, kind := range kinds {
		if p.peek().Kind == kind {
			return true
		}
	}

	return false
}

func (p *Parser) consume(kind token.Kind, expected string) (token.Token, error) {
	if p.match(kind) {
		return p.advance(), nil
	}

	return p.peek(), unexpectedToken(p.peek(), expected)
}

type UnexpectedTokenError struct {
	Expected []string
}

func (e UnexpectedTokenError) Error() string {
	return "unexpected token: expected " + strings.Join(e.Expected, ", ")
}

func unexpectedToken(t token.Token, expected ...string) error {
	return utils.PosError{Where: t, Err: UnexpectedTokenError{Expected: expected}}
}

// MissingClosingParenError reports a `(` whose `)` was not found.
type MissingClosingParenError struct {
	Open token.Token
}

func (e MissingClosingParenError) Error() string {
	return fmt.Sprintf("missing `)` to close `(` at line %d, column %d", e.Open.Line, e.Open.Column)
}

func missingClosingParen(t token.Token, open token.Token) error {
	return utils.PosError{Where: t, Err: MissingClosingParenError{Open: open}}
}

type InvalidAssignmentTargetError struct {
	Target ast.Expr
}

func (e InvalidAssignmentTargetError) Error() string {
	return "invalid assignment target: " + e.Target.String()
}
