package expr

import (
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input  string
	offset int
	width  int
	ch     rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.ch = r
}

func (l *lexer) nextToken() Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readRune()
	}

	tok := Token{Pos: l.offset - l.width}

	switch {
	case l.ch == 0:
		tok.Type = tokenEOF
		return tok
	case l.ch == '+':
		tok.Type, tok.Literal = tokenPlus, "+"
	case l.ch == '-':
		tok.Type, tok.Literal = tokenMinus, "-"
	case l.ch == '*':
		tok.Type, tok.Literal = tokenAsterisk, "*"
	case l.ch == '/':
		tok.Type, tok.Literal = tokenSlash, "/"
	case l.ch == '(':
		tok.Type, tok.Literal = tokenLParen, "("
	case l.ch == ')':
		tok.Type, tok.Literal = tokenRParen, ")"
	case isIdentStart(l.ch):
		start := tok.Pos
		for isIdentPart(l.ch) {
			l.readRune()
		}

		tok.Type = tokenIdent
		tok.Literal = l.input[start : l.offset-l.width]

		return tok
	case unicode.IsDigit(l.ch):
		start := tok.Pos
		for unicode.IsDigit(l.ch) || l.ch == '.' {
			l.readRune()
		}

		tok.Type = tokenNumber
		tok.Literal = l.input[start : l.offset-l.width]

		return tok
	default:
		tok.Type = tokenIllegal
		tok.Literal = string(l.ch)
	}

	l.readRune()

	return tok
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
