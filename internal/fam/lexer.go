package fam

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokAssign
	tokStar
	tokMinus
)

type token struct {
	kind tokenKind
	text string
	num  int
	line int
}

// lexer produces tokens from declaration source. Comments introduced by '#'
// run to end of line and are skipped.
type lexer struct {
	src    []rune
	pos    int
	line   int
	peeked *token
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return token{}, err
		}

		l.peeked = &tok
	}

	return *l.peeked, nil
}

// discard drops a previously peeked token.
func (l *lexer) discard() {
	l.peeked = nil
}

func (l *lexer) next() (token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil

		return tok, nil
	}

	return l.scan()
}

func (l *lexer) scan() (token, error) {
	l.skipSpaceAndComments()

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, text: "end of file", line: l.line}, nil
	}

	r := l.src[l.pos]

	switch r {
	case '(':
		return l.single(tokLParen, "("), nil
	case ')':
		return l.single(tokRParen, ")"), nil
	case '[':
		return l.single(tokLBracket, "["), nil
	case ']':
		return l.single(tokRBracket, "]"), nil
	case ',':
		return l.single(tokComma, ","), nil
	case '=':
		return l.single(tokAssign, "="), nil
	case '*':
		return l.single(tokStar, "*"), nil
	case '-':
		return l.single(tokMinus, "-"), nil
	case '"', '\'':
		return l.scanString(r)
	}

	if unicode.IsDigit(r) {
		return l.scanInt()
	}

	if unicode.IsLetter(r) || r == '_' {
		return l.scanIdent()
	}

	return token{}, fmt.Errorf("line %d: unexpected character %q", l.line, r)
}

func (l *lexer) single(kind tokenKind, text string) token {
	l.pos++
	return token{kind: kind, text: text, line: l.line}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.src[l.pos]

		switch {
		case r == '\n':
			l.line++
			l.pos++
		case unicode.IsSpace(r):
			l.pos++
		case r == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// scanString reads a quoted literal with backslash escapes.
func (l *lexer) scanString(quote rune) (token, error) {
	start := l.line

	l.pos++ // opening quote

	var sb strings.Builder

	for l.pos < len(l.src) {
		r := l.src[l.pos]

		switch r {
		case quote:
			l.pos++
			return token{kind: tokString, text: sb.String(), line: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("line %d: unterminated string", start)
			}

			switch esc := l.src[l.pos]; esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}

			l.pos++
		case '\n':
			return token{}, fmt.Errorf("line %d: unterminated string", start)
		default:
			sb.WriteRune(r)
			l.pos++
		}
	}

	return token{}, fmt.Errorf("line %d: unterminated string", start)
}

func (l *lexer) scanInt() (token, error) {
	start := l.pos

	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
	}

	text := string(l.src[start:l.pos])

	num := 0
	for _, d := range text {
		num = num*10 + int(d-'0')
	}

	return token{kind: tokInt, text: text, num: num, line: l.line}, nil
}

// scanIdent reads an identifier, including dotted constants such as
// FlipperAppType.EXTERNAL.
func (l *lexer) scanIdent() (token, error) {
	start := l.pos

	for l.pos < len(l.src) {
		r := l.src[l.pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			l.pos++
			continue
		}

		break
	}

	return token{kind: tokIdent, text: string(l.src[start:l.pos]), line: l.line}, nil
}
