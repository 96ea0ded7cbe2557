package lexer_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/takoeight0821/lox/lexer"
	"github.com/takoeight0821/lox/token"
	"github.com/takoeight0821/lox/utils"
)

func TestGolden(t *testing.T) {
	t.Parallel()

	testfiles, err := utils.FindSourceFiles("../testdata")
	if err != nil {
		t.Fatalf("failed to find test files: %v", err)
	}
	if len(testfiles) == 0 {
		t.Fatal("no test files found")
	}

	for _, testfile := range testfiles {
		source, err := os.ReadFile(testfile)
		if err != nil {
			t.Fatalf("failed to read %s: %v", testfile, err)
		}

		tokens, err := lexer.Lex(string(source))
		if err != nil {
			t.Errorf("%s returned error: %v", testfile, err)
			continue
		}

		var builder strings.Builder
		for _, token := range tokens {
			builder.WriteString(token.String())
			builder.WriteString("\n")
		}

		g := goldie.New(t)
		g.Assert(t, filepath.Base(testfile), []byte(builder.String()))
	}
}

func kinds(tokens []token.Token) []token.Kind {
	ks := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		ks[i] = tok.Kind
	}
	return ks
}

func TestKinds(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    string
		expected []token.Kind
	}{
		{"(){},.-+;*/", []token.Kind{
			token.LEFTPAREN, token.RIGHTPAREN, token.LEFTBRACE, token.RIGHTBRACE, token.COMMA,
			token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR, token.SLASH, token.EOF,
		}},
		{"! != = == < <= > >=", []token.Kind{
			token.BANG, token.BANGEQUAL, token.EQUAL, token.EQUALEQUAL,
			token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL, token.EOF,
		}},
		{"and class else false func if nil or print return super this true var while", []token.Kind{
			token.AND, token.CLASS, token.ELSE, token.FALSE, token.FUNC, token.IF, token.NIL, token.OR,
			token.PRINT, token.RETURN, token.SUPER, token.THIS, token.TRUE, token.VAR, token.WHILE, token.EOF,
		}},
		{"_x x1 orchid", []token.Kind{token.IDENT, token.IDENT, token.IDENT, token.EOF}},
		{"3.", []token.Kind{token.NUMBER, token.DOT, token.EOF}},
		{"3.14", []token.Kind{token.NUMBER, token.EOF}},
		{"1 // comment\n2", []token.Kind{token.NUMBER, token.NUMBER, token.EOF}},
		{"/* a /* b */ c */ print", []token.Kind{token.PRINT, token.EOF}},
		{"a/b", []token.Kind{token.IDENT, token.SLASH, token.IDENT, token.EOF}},
	}

	for _, tc := range testcases {
		tokens, err := lexer.Lex(tc.input)
		if err != nil {
			t.Errorf("Lex(%q) returned error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(tc.expected, kinds(tokens)); diff != "" {
			t.Errorf("Lex(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

func TestNumberLiteral(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("3. 12.5")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if tokens[0].Literal != 3.0 || tokens[0].Lexeme != "3" {
		t.Errorf("first token = %v, want NUMBER 3", tokens[0])
	}
	if tokens[2].Literal != 12.5 {
		t.Errorf("third token = %v, want NUMBER 12.5", tokens[2])
	}
}

func TestNumberOverflow(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("1" + strings.Repeat("0", 400) + ";")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if diff := cmp.Diff([]token.Kind{token.NUMBER, token.SEMICOLON, token.EOF}, kinds(tokens)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if f, ok := tokens[0].Literal.(float64); !ok || !math.IsInf(f, 1) {
		t.Errorf("literal = %v, want +Inf", tokens[0].Literal)
	}
}

func TestStringLiteral(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("\"a\\\"b\\n\"\n\"multi\nline\" x")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if tokens[0].Literal != "a\"b\n" {
		t.Errorf("escaped literal = %q", tokens[0].Literal)
	}
	if tokens[1].Literal != "multi\nline" || tokens[1].Line != 2 {
		t.Errorf("multi-line string = %v", tokens[1])
	}
	if tokens[2].Line != 3 {
		t.Errorf("token after multi-line string at line %d, want 3", tokens[2].Line)
	}
}

func TestLineAndColumn(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("var x;\n  x = 1;")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	x := tokens[3]
	if x.Lexeme != "x" || x.Line != 2 || x.Column != 3 {
		t.Errorf("token = %+v, want x at 2:3", x)
	}
}

// Every literal token scans back to itself from its own lexeme.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`1 2.5 "str" "with \"quote\"" 007 true false nil`)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	for _, tok := range tokens[:len(tokens)-1] {
		again, err := lexer.Lex(tok.Lexeme)
		if err != nil {
			t.Errorf("Lex(%q) returned error: %v", tok.Lexeme, err)
			continue
		}
		if len(again) != 2 {
			t.Errorf("Lex(%q) = %v, want one token", tok.Lexeme, again)
			continue
		}
		if again[0].Kind != tok.Kind || again[0].Literal != tok.Literal {
			t.Errorf("Lex(%q) = %v, want %v", tok.Lexeme, again[0], tok)
		}
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("unexpected character", func(t *testing.T) {
		tokens, err := lexer.Lex("1 @ 2 # 3")
		var uce lexer.UnexpectedCharacterError
		if !errors.As(err, &uce) {
			t.Fatalf("Lex returned %v, want UnexpectedCharacterError", err)
		}
		if uce.Char != '@' || uce.Line != 1 || uce.Column != 3 {
			t.Errorf("error = %+v", uce)
		}
		if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 2 {
			t.Errorf("got %d errors, want 2", n)
		}
		if diff := cmp.Diff([]token.Kind{token.NUMBER, token.NUMBER, token.NUMBER, token.EOF}, kinds(tokens)); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unterminated string", func(t *testing.T) {
		_, err := lexer.Lex("print 1;\nprint \"abc")
		var use lexer.UnterminatedStringError
		if !errors.As(err, &use) {
			t.Fatalf("Lex returned %v, want UnterminatedStringError", err)
		}
		if use.Line != 2 || use.Column != 7 {
			t.Errorf("error = %+v, want 2:7", use)
		}
	})

	t.Run("unterminated nested comment", func(t *testing.T) {
		tokens, err := lexer.Lex("x /* a /* b */")
		var uce lexer.UnterminatedCommentError
		if !errors.As(err, &uce) {
			t.Fatalf("Lex returned %v, want UnterminatedCommentError", err)
		}
		if uce.Line != 1 || uce.Column != 3 {
			t.Errorf("error = %+v, want 1:3", uce)
		}
		if diff := cmp.Diff([]token.Kind{token.IDENT, token.EOF}, kinds(tokens)); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})
}
