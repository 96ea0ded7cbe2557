package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/takoeight0821/lox/token"
)

// Lex scans source into tokens. Every lexical error is collected and returned joined;
// the tokens scanned so far, always terminated by EOF, are returned alongside.
func Lex(source string) ([]token.Token, error) {
	lexer := lexer{
		source:    source,
		tokens:    []token.Token{},
		start:     0,
		current:   0,
		line:      1,
		lineStart: 0,
	}

	var errs []error

	for !lexer.isAtEnd() {
		if err := lexer.scanToken(); err != nil {
			errs = append(errs, err)
		}
	}

	lexer.start = lexer.current
	lexer.tokens = append(lexer.tokens, token.Token{Kind: token.EOF, Lexeme: "", Line: lexer.line, Column: lexer.column(), Literal: nil})

	return lexer.tokens, errors.Join(errs...)
}

type lexer struct {
	source string
	tokens []token.Token

	start     int // start of current lexeme
	current   int // current position in source
	line      int // current line number
	lineStart int // offset of the first byte of the current line
}

func (l lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current:])

	return runeValue
}

func (l lexer) peekNext() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	_, width := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+width >= len(l.source) {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current+width:])

	return runeValue
}

func (l *lexer) advance() rune {
	runeValue, width := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += width

	return runeValue
}

// match consumes the next rune if it is expected.
func (l *lexer) match(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()

	return true
}

func (l *lexer) newline() {
	l.line++
	l.lineStart = l.current
}

// column is the 1-based rune column of the current lexeme.
func (l lexer) column() int {
	return utf8.RuneCountInString(l.source[l.lineStart:l.start]) + 1
}

func (l *lexer) addToken(kind token.Kind, literal any) {
	text := l.source[l.start:l.current]
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: text, Line: l.line, Column: l.column(), Literal: literal})
}

type UnexpectedCharacterError struct {
	Line   int
	Column int
	Char   rune
}

func (e UnexpectedCharacterError) Pos() (int, int) {
	return e.Line, e.Column
}

func (e UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("unexpected character: %q at line %d, column %d", e.Char, e.Line, e.Column)
}

func (l *lexer) scanToken() error {
	l.start = l.current
	char := l.advance()
	switch char {
	case '(':
		l.addToken(token.LEFTPAREN, nil)
	case ')':
		l.addToken(token.RIGHTPAREN, nil)
	case '{':
		l.addToken(token.LEFTBRACE, nil)
	case '}':
		l.addToken(token.RIGHTBRACE, nil)
	case ',':
		l.addToken(token.COMMA, nil)
	case '.':
		l.addToken(token.DOT, nil)
	case '-':
		l.addToken(token.MINUS, nil)
	case '+':
		l.addToken(token.PLUS, nil)
	case ';':
		l.addToken(token.SEMICOLON, nil)
	case '*':
		l.addToken(token.STAR, nil)
	case '!':
		l.addToken(l.either('=', token.BANGEQUAL, token.BANG), nil)
	case '=':
		l.addToken(l.either('=', token.EQUALEQUAL, token.EQUAL), nil)
	case '<':
		l.addToken(l.either('=', token.LESSEQUAL, token.LESS), nil)
	case '>':
		l.addToken(l.either('=', token.GREATEREQUAL, token.GREATER), nil)
	case '/':
		switch {
		case l.match('/'):
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		case l.match('*'):
			return l.blockComment()
		default:
			l.addToken(token.SLASH, nil)
		}
	case '\n':
		l.newline()
	case '"':
		return l.string()
	default:
		switch {
		case unicode.IsSpace(char):
			// ignore whitespace
		case isDigit(char):
			l.number()
		case isAlpha(char):
			l.identifier()
		default:
			return UnexpectedCharacterError{Line: l.line, Column: l.column(), Char: char}
		}
	}

	return nil
}

// either selects the two-character kind if the next rune is next.
func (l *lexer) either(next rune, double, single token.Kind) token.Kind {
	if l.match(next) {
		return double
	}
	return single
}

type UnterminatedCommentError struct {
	Line   int
	Column int
}

func (e UnterminatedCommentError) Pos() (int, int) {
	return e.Line, e.Column
}

func (e UnterminatedCommentError) Error() string {
	return fmt.Sprintf("unterminated comment starting at line %d, column %d", e.Line, e.Column)
}

// blockComment skips a comment opened by "/*". Comments nest.
func (l *lexer) blockComment() error {
	line, column := l.line, l.column()
	depth := 1
	for depth > 0 && !l.isAtEnd() {
		switch l.advance() {
		case '\n':
			l.newline()
		case '/':
			if l.match('*') {
				depth++
			}
		case '*':
			if l.match('/') {
				depth--
			}
		}
	}

	if depth > 0 {
		return UnterminatedCommentError{Line: line, Column: column}
	}

	return nil
}

type UnterminatedStringError struct {
	Line   int
	Column int
}

func (e UnterminatedStringError) Pos() (int, int) {
	return e.Line, e.Column
}

func (e UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string starting at line %d, column %d", e.Line, e.Column)
}

func (l *lexer) string() error {
	line, column := l.line, l.column()
	var value strings.Builder
	for l.peek() != '"' && !l.isAtEnd() {
		c := l.advance()
		switch c {
		case '\n':
			l.newline()
			value.WriteRune(c)
		case '\\':
			if l.isAtEnd() {
				return UnterminatedStringError{Line: line, Column: column}
			}
			escaped := l.advance()
			if escaped == '\n' {
				l.newline()
			}
			value.WriteString(unescape(escaped))
		default:
			value.WriteRune(c)
		}
	}

	if l.isAtEnd() {
		return UnterminatedStringError{Line: line, Column: column}
	}

	l.advance() // closing quote

	// a multi-line string is reported on its opening line.
	l.tokens = append(l.tokens, token.Token{
		Kind:    token.STRING,
		Lexeme:  l.source[l.start:l.current],
		Line:    line,
		Column:  column,
		Literal: value.String(),
	})

	return nil
}

func unescape(c rune) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case '"', '\\':
		return string(c)
	default:
		return "\\" + string(c)
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}

	// "3." is a number followed by a dot.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	// A digit run only fails with ErrRange, and then value is already ±Inf.
	value, _ := strconv.ParseFloat(l.source[l.start:l.current], 64)
	l.addToken(token.NUMBER, value)
}

func isAlpha(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func (l *lexer) identifier() {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	value := l.source[l.start:l.current]

	if k, ok := token.Keyword(value); ok {
		l.addToken(k, nil)
	} else {
		l.addToken(token.IDENT, nil)
	}
}
