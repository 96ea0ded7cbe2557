package driver

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/takoeight0821/lox/ast"
	"github.com/takoeight0821/lox/eval"
	"github.com/takoeight0821/lox/lexer"
	"github.com/takoeight0821/lox/parser"
	"github.com/takoeight0821/lox/token"
	"github.com/takoeight0821/lox/utils"
)

type Pass interface {
	Run([]ast.Stmt) ([]ast.Stmt, error)
}

type PassRunner struct {
	passes []Pass
}

func NewPassRunner() *PassRunner {
	return &PassRunner{}
}

// AddPass adds a pass to the end of the pass list.
func (r *PassRunner) AddPass(pass Pass) {
	r.passes = append(r.passes, pass)
}

// Run executes passes in order.
// If an error occurs, it stops the execution and returns the current program.
func (r *PassRunner) Run(program []ast.Stmt) ([]ast.Stmt, error) {
	for _, pass := range r.passes {
		var err error
		program, err = pass.Run(program)
		if err != nil {
			return program, &Error{Stage: StageRuntime, Err: err}
		}
	}

	return program, nil
}

// RunSource parses the source code and executes passes in order.
// Nothing is executed if the source does not lex or parse.
func (r *PassRunner) RunSource(source string) ([]ast.Stmt, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}

	return r.Run(program)
}

// Parse lexes and parses source into a program.
func Parse(source string) ([]ast.Stmt, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, &Error{Stage: StageLex, Err: err}
	}

	program, err := parser.NewParser(tokens).ParseProgram()
	if err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}

	return program, nil
}

type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageRuntime
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Error records which stage of the pipeline failed.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Session keeps one environment alive across runs, as a REPL does.
type Session struct {
	runner *PassRunner
	ev     *eval.Evaluator
	out    io.Writer
}

func NewSession(out io.Writer) *Session {
	ev := eval.NewEvaluator(out)
	runner := NewPassRunner()
	runner.AddPass(ev)

	return &Session{runner: runner, ev: ev, out: out}
}

func (s *Session) Evaluator() *eval.Evaluator {
	return s.ev
}

// Run executes a whole program.
func (s *Session) Run(source string) error {
	_, err := s.runner.RunSource(source)
	return err
}

// RunLine executes one REPL line. A line that is a bare expression is
// evaluated and its value printed.
func (s *Session) RunLine(source string) error {
	program, errProgram := Parse(source)
	if errProgram == nil {
		_, err := s.runner.Run(program)
		return err
	}

	tokens, err := lexer.Lex(source)
	if err != nil {
		return errProgram
	}
	expr, err := parser.NewParser(tokens).ParseExpr()
	if err != nil {
		return errProgram
	}

	v, err := s.ev.Evaluate(expr)
	if err != nil {
		return &Error{Stage: StageRuntime, Err: err}
	}
	if _, err := fmt.Fprintln(s.out, v.String()); err != nil {
		return &Error{Stage: StageRuntime, Err: err}
	}

	return nil
}

// Dump renders the tokens and the syntax tree of source, one per line.
func Dump(source string) (string, error) {
	var b strings.Builder

	tokens, err := lexer.Lex(source)
	for _, tok := range tokens {
		b.WriteString(tok.String())
		b.WriteString("\n")
	}
	if err != nil {
		return b.String(), &Error{Stage: StageLex, Err: err}
	}

	program, err := parser.NewParser(tokens).ParseProgram()
	for _, stmt := range program {
		b.WriteString(stmt.String())
		b.WriteString("\n")
	}
	if err != nil {
		return b.String(), &Error{Stage: StageParse, Err: err}
	}

	return b.String(), nil
}

// Diagnostics flattens err into one message per underlying error.
func Diagnostics(err error) []string {
	if err == nil {
		return nil
	}

	var msgs []string
	var walk func(error)
	walk = func(err error) {
		if errs, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range errs.Unwrap() {
				walk(e)
			}
			return
		}
		if de, ok := err.(*Error); ok {
			walk(de.Err)
			return
		}
		msgs = append(msgs, render(err))
	}
	walk(err)

	return msgs
}

func render(err error) string {
	var pe utils.PosError
	if errors.As(err, &pe) {
		if pe.Where.Kind == token.EOF {
			return fmt.Sprintf("[line %d] Error at end: %s", pe.Where.Line, pe.Err.Error())
		}
		return fmt.Sprintf("[line %d] Error at `%s`: %s", pe.Where.Line, pe.Where.Lexeme, pe.Err.Error())
	}
	var pos interface{ Pos() (int, int) }
	if errors.As(err, &pos) {
		line, _ := pos.Pos()
		return fmt.Sprintf("[line %d] Error: %s", line, err.Error())
	}
	return "Error: " + err.Error()
}
