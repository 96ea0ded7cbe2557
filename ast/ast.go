package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/takoeight0821/lox/token"
)

// AST

// Node is implemented by every expression and statement.
type Node interface {
	fmt.Stringer
	// Base returns the token that best locates the node in the source.
	Base() token.Token
}

// Expr is the closed set of expression nodes.
type Expr interface {
	Node
	expr()
}

// Stmt is the closed set of statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expressions

type Literal struct {
	token.Token
	// Value is float64, string, bool or nil.
	Value any
}

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "(literal nil)"
	case string:
		return "(literal " + strconv.Quote(v) + ")"
	case float64:
		return "(literal " + strconv.FormatFloat(v, 'f', -1, 64) + ")"
	default:
		return fmt.Sprintf("(literal %v)", v)
	}
}

func (l *Literal) Base() token.Token {
	return l.Token
}

func (*Literal) expr() {}

var _ Expr = &Literal{}

type Grouping struct {
	Expr Expr
}

func (g Grouping) String() string {
	return parenthesize("group", g.Expr).String()
}

func (g *Grouping) Base() token.Token {
	return g.Expr.Base()
}

func (*Grouping) expr() {}

var _ Expr = &Grouping{}

type Unary struct {
	Op    token.Token
	Right Expr
}

func (u Unary) String() string {
	return parenthesize("unary", lexeme(u.Op), u.Right).String()
}

func (u *Unary) Base() token.Token {
	return u.Op
}

func (*Unary) expr() {}

var _ Expr = &Unary{}

type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (b Binary) String() string {
	return parenthesize("binary", b.Left, lexeme(b.Op), b.Right).String()
}

func (b *Binary) Base() token.Token {
	return b.Op
}

func (*Binary) expr() {}

var _ Expr = &Binary{}

// Logical is a short-circuiting `and` or `or`.
type Logical struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (l Logical) String() string {
	return parenthesize("logical", l.Left, lexeme(l.Op), l.Right).String()
}

func (l *Logical) Base() token.Token {
	return l.Op
}

func (*Logical) expr() {}

var _ Expr = &Logical{}

type Assign struct {
	Name  token.Token
	Value Expr
}

func (a Assign) String() string {
	return parenthesize("assign", lexeme(a.Name), a.Value).String()
}

func (a *Assign) Base() token.Token {
	return a.Name
}

func (*Assign) expr() {}

var _ Expr = &Assign{}

type Variable struct {
	Name token.Token
}

func (v Variable) String() string {
	return parenthesize("var", lexeme(v.Name)).String()
}

func (v *Variable) Base() token.Token {
	return v.Name
}

func (*Variable) expr() {}

var _ Expr = &Variable{}

// Statements

type ExprStmt struct {
	Expr Expr
}

func (e ExprStmt) String() string {
	return parenthesize("expr", e.Expr).String()
}

func (e *ExprStmt) Base() token.Token {
	return e.Expr.Base()
}

func (*ExprStmt) stmt() {}

var _ Stmt = &ExprStmt{}

type Print struct {
	Keyword token.Token
	Expr    Expr
}

func (p Print) String() string {
	return parenthesize("print", p.Expr).String()
}

func (p *Print) Base() token.Token {
	return p.Keyword
}

func (*Print) stmt() {}

var _ Stmt = &Print{}

// Var declares Name. Init is nil when the declaration has no initializer.
type Var struct {
	Name token.Token
	Init Expr
}

func (v Var) String() string {
	if v.Init == nil {
		return parenthesize("define", lexeme(v.Name)).String()
	}
	return parenthesize("define", lexeme(v.Name), v.Init).String()
}

func (v *Var) Base() token.Token {
	return v.Name
}

func (*Var) stmt() {}

var _ Stmt = &Var{}

type Block struct {
	Brace token.Token
	Stmts []Stmt
}

func (b Block) String() string {
	return parenthesize("block", concat(b.Stmts)).String()
}

func (b *Block) Base() token.Token {
	return b.Brace
}

func (*Block) stmt() {}

var _ Stmt = &Block{}

// If has a nil Else when there is no else branch.
type If struct {
	Keyword token.Token
	Cond    Expr
	Then    Stmt
	Else    Stmt
}

func (i If) String() string {
	if i.Else == nil {
		return parenthesize("if", i.Cond, i.Then).String()
	}
	return parenthesize("if", i.Cond, i.Then, i.Else).String()
}

func (i *If) Base() token.Token {
	return i.Keyword
}

func (*If) stmt() {}

var _ Stmt = &If{}

type While struct {
	Keyword token.Token
	Cond    Expr
	Body    Stmt
}

func (w While) String() string {
	return parenthesize("while", w.Cond, w.Body).String()
}

func (w *While) Base() token.Token {
	return w.Keyword
}

func (*While) stmt() {}

var _ Stmt = &While{}

type lexeme token.Token

func (l lexeme) String() string {
	return l.Lexeme
}

func parenthesize(head string, elems ...fmt.Stringer) fmt.Stringer {
	var b strings.Builder
	b.WriteString("(")
	elemsStr := concat(elems).String()
	if head != "" {
		b.WriteString(head)
	}
	if elemsStr != "" {
		if head != "" {
			b.WriteString(" ")
		}
		b.WriteString(elemsStr)
	}
	b.WriteString(")")
	return &b
}

// concat joins the string forms of elems with single spaces, skipping empty ones.
func concat[T fmt.Stringer](elems []T) fmt.Stringer {
	var b strings.Builder
	for _, elem := range elems {
		str := elem.String()
		if str == "" {
			continue
		}
		if b.Len() != 0 {
			b.WriteString(" ")
		}
		b.WriteString(str)
	}
	return &b
}
