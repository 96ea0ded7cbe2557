// Package eval executes parsed programs by walking the syntax tree.
package eval

import (
	"fmt"
	"io"

	"github.com/takoeight0821/lox/ast"
	"github.com/takoeight0821/lox/token"
	"github.com/takoeight0821/lox/utils"
)

// Evaluator owns the environment of one session and writes `print` output to out.
type Evaluator struct {
	env *Environment
	out io.Writer
}

func NewEvaluator(out io.Writer) *Evaluator {
	return &Evaluator{env: NewEnvironment(), out: out}
}

func (ev *Evaluator) Env() *Environment {
	return ev.env
}

// Run executes program. It lets an Evaluator be used as a driver pass.
func (ev *Evaluator) Run(program []ast.Stmt) ([]ast.Stmt, error) {
	return program, ev.Execute(program)
}

// Execute runs stmts in order and stops at the first runtime error.
// Effects of the statements before the failing one are kept.
func (ev *Evaluator) Execute(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := ev.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := ev.Evaluate(s.Expr)
		return err
	case *ast.Print:
		v, err := ev.Evaluate(s.Expr)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(ev.out, v.String()); err != nil {
			return fmt.Errorf("print: %w", err)
		}
		return nil
	case *ast.Var:
		var v Value = Nil{}
		if s.Init != nil {
			var err error
			v, err = ev.Evaluate(s.Init)
			if err != nil {
				return err
			}
		}
		ev.env.Define(s.Name.Lexeme, v)
		return nil
	case *ast.Block:
		ev.env.Push()
		defer ev.env.Pop()
		return ev.Execute(s.Stmts)
	case *ast.If:
		cond, err := ev.Evaluate(s.Cond)
		if err != nil {
			return err
		}
		if truthy(cond) {
			return ev.execute(s.Then)
		}
		if s.Else != nil {
			return ev.execute(s.Else)
		}
		return nil
	case *ast.While:
		for {
			cond, err := ev.Evaluate(s.Cond)
			if err != nil {
				return err
			}
			if !truthy(cond) {
				return nil
			}
			if err := ev.execute(s.Body); err != nil {
				return err
			}
		}
	default:
		return utils.PosError{Where: stmt.Base(), Err: fmt.Errorf("unexpected statement: %v", stmt)}
	}
}

// Evaluate computes the value of expr in the current environment.
func (ev *Evaluator) Evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		v, ok := fromLiteral(e.Value)
		if !ok {
			return nil, utils.PosError{Where: e.Token, Err: fmt.Errorf("unexpected literal: %v", e.Value)}
		}
		return v, nil
	case *ast.Grouping:
		return ev.Evaluate(e.Expr)
	case *ast.Unary:
		right, err := ev.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return unary(e.Op, right)
	case *ast.Binary:
		left, err := ev.Evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return binary(e.Op, left, right)
	case *ast.Logical:
		left, err := ev.Evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op.Kind == token.OR && truthy(left) {
			return left, nil
		}
		if e.Op.Kind == token.AND && !truthy(left) {
			return left, nil
		}
		return ev.Evaluate(e.Right)
	case *ast.Assign:
		v, err := ev.Evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := ev.env.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.Variable:
		return ev.env.Get(e.Name)
	default:
		return nil, utils.PosError{Where: expr.Base(), Err: fmt.Errorf("unexpected expression: %v", expr)}
	}
}

func unary(op token.Token, right Value) (Value, error) {
	//exhaustive:ignore
	switch op.Kind {
	case token.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, typeMismatch(op, "a number", right)
		}
		return -n, nil
	case token.BANG:
		return Boolean(!truthy(right)), nil
	default:
		return nil, utils.PosError{Where: op, Err: fmt.Errorf("unknown unary operator")}
	}
}

func binary(op token.Token, left, right Value) (Value, error) {
	//exhaustive:ignore
	switch op.Kind {
	case token.EQUALEQUAL:
		return Boolean(equal(left, right)), nil
	case token.BANGEQUAL:
		return Boolean(!equal(left, right)), nil
	case token.PLUS:
		if l, ok := left.(String); ok {
			if r, ok := right.(String); ok {
				return l + r, nil
			}
		}
		l, r, ok := numbers(left, right)
		if !ok {
			return nil, typeMismatch(op, "two numbers or two strings", left, right)
		}
		return l + r, nil
	}

	l, r, ok := numbers(left, right)
	if !ok {
		return nil, typeMismatch(op, "numbers", left, right)
	}

	//exhaustive:ignore
	switch op.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return nil, utils.PosError{Where: op, Err: DivisionByZeroError{}}
		}
		return l / r, nil
	case token.GREATER:
		return Boolean(l > r), nil
	case token.GREATEREQUAL:
		return Boolean(l >= r), nil
	case token.LESS:
		return Boolean(l < r), nil
	case token.LESSEQUAL:
		return Boolean(l <= r), nil
	default:
		return nil, utils.PosError{Where: op, Err: fmt.Errorf("unknown binary operator")}
	}
}

func numbers(left, right Value) (Number, Number, bool) {
	l, ok := left.(Number)
	if !ok {
		return 0, 0, false
	}
	r, ok := right.(Number)
	if !ok {
		return 0, 0, false
	}
	return l, r, true
}

// TypeMismatchError reports operands of the wrong kind for Op.
type TypeMismatchError struct {
	Op       string
	Want     string
	Operands []Value
}

func (e TypeMismatchError) Error() string {
	got := ""
	for i, v := range e.Operands {
		if i > 0 {
			got += " and "
		}
		got += v.Type()
	}
	return fmt.Sprintf("operand of `%s` must be %s, got %s", e.Op, e.Want, got)
}

func typeMismatch(op token.Token, want string, operands ...Value) error {
	return utils.PosError{Where: op, Err: TypeMismatchError{Op: op.Lexeme, Want: want, Operands: operands}}
}

type DivisionByZeroError struct{}

func (DivisionByZeroError) Error() string {
	return "division by zero"
}
