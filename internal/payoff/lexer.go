package payoff

import (
	"strconv"
	"unicode"
)

//
// ==========================
// Tokens
// ==========================
//

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokIf
	tokElse

	tokPlus     // +
	tokMinus    // -
	tokStar     // *
	tokSlash    // /
	tokFloorDiv // //
	tokPercent  // %
	tokPower    // **
	tokLShift   // <<
	tokRShift   // >>
	tokPipe     // |
	tokAmp      // &
	tokCaret    // ^

	tokGT // >
	tokGE // >=
	tokLT // <
	tokLE // <=
	tokEQ // ==
	tokNE // !=

	tokLParen // (
	tokRParen // )
	tokComma  // ,
	tokDot    // .
)

// tokenNames is used only for error messages.
var tokenNames = map[tokenKind]string{
	tokEOF: "end of expression", tokNumber: "number", tokIdent: "identifier",
	tokIf: "'if'", tokElse: "'else'",
	tokPlus: "'+'", tokMinus: "'-'", tokStar: "'*'", tokSlash: "'/'",
	tokFloorDiv: "'//'", tokPercent: "'%'", tokPower: "'**'",
	tokLShift: "'<<'", tokRShift: "'>>'", tokPipe: "'|'", tokAmp: "'&'", tokCaret: "'^'",
	tokGT: "'>'", tokGE: "'>='", tokLT: "'<'", tokLE: "'<='", tokEQ: "'=='", tokNE: "'!='",
	tokLParen: "'('", tokRParen: "')'", tokComma: "','", tokDot: "'.'",
}

type token struct {
	kind  tokenKind
	text  string
	pos   int     // byte offset of the first character
	value float64 // populated for tokNumber
}

func (t token) describe() string {
	if t.kind == tokIdent || t.kind == tokNumber {
		return "'" + t.text + "'"
	}
	return tokenNames[t.kind]
}

//
// ==========================
// Lexer
// ==========================
//

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		l.pos++
	}
}

// next scans and returns the next token. Characters outside the grammar's
// alphabet are a compile error, not a skipped byte.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c >= '0' && c <= '9', c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.scanNumber()
	case isIdentStart(rune(c)):
		return l.scanIdent()
	}

	// Two-character operators first, then single-character ones.
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		if kind, ok := twoCharOps[two]; ok {
			l.pos += 2
			return token{kind: kind, text: two, pos: start}, nil
		}
	}
	if kind, ok := oneCharOps[c]; ok {
		l.pos++
		return token{kind: kind, text: string(c), pos: start}, nil
	}

	return token{}, compileErrorf(string(c), start, "unexpected character %q", string(c))
}

var twoCharOps = map[string]tokenKind{
	"//": tokFloorDiv, "**": tokPower,
	"<<": tokLShift, ">>": tokRShift,
	">=": tokGE, "<=": tokLE, "==": tokEQ, "!=": tokNE,
}

var oneCharOps = map[byte]tokenKind{
	'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
	'%': tokPercent, '|': tokPipe, '&': tokAmp, '^': tokCaret,
	'>': tokGT, '<': tokLT,
	'(': tokLParen, ')': tokRParen, ',': tokComma, '.': tokDot,
}

// scanNumber accepts decimal literals with an optional fraction and
// exponent: 1, 2.5, .5, 1e-3. strconv does the actual conversion so the
// accepted syntax matches what it can parse.
func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			// "1e" with no digits is not an exponent; leave it for the
			// identifier that follows to fail naturally.
			l.pos = mark
		}
	}

	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, compileErrorf(text, start, "malformed number %q", text)
	}
	return token{kind: tokNumber, text: text, pos: start, value: v}, nil
}

func (l *lexer) scanIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	text := l.src[start:l.pos]
	switch text {
	case "if":
		return token{kind: tokIf, text: text, pos: start}, nil
	case "else":
		return token{kind: tokElse, text: text, pos: start}, nil
	}
	return token{kind: tokIdent, text: text, pos: start}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
