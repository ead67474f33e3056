// Package lexer turns normalized Corvid source bytes into a token stream.
//
// The lexer never validates grammar: unknown punctuation runs split
// greedily into the longest known operator, and it is the parser's job to
// reject nonsensical sequences. The lexer reports no errors itself: an
// unterminated string or char literal runs to the end of input, and an
// unrecognized escape yields the escaped character unchanged.
package lexer

import (
	"fmt"
	"math/bits"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/corvid-lang/corvidc/internal/token"
)

// Handle identifies an open span created by StartSpan.
type Handle int

// Lexer tokenizes Corvid source code.
type Lexer struct {
	input        string
	file         string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int

	queue []token.Token // lookahead buffer, filled lazily by scan()
	last  token.Pos     // position just after the most recently returned token

	spans []token.Pos // open span start positions, indexed by Handle

	hygieneStack []token.Hygiene
	current      token.Hygiene
	next         token.Hygiene
}

// New creates a Lexer over already-normalized source bytes.
func New(input, file string) *Lexer {
	l := &Lexer{input: input, file: file, line: 1, column: 0, next: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	ch, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if ch == '\n' {
		l.line++
		l.column = 0
	}
	l.ch = ch
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	next := l.readPosition + size
	if next >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[next:])
	return ch
}

func (l *Lexer) pos() token.Pos {
	return token.Pos{File: l.file, Line: l.line, Column: l.column, Offset: l.position}
}

// Next consumes and returns the next token, advancing the stream.
func (l *Lexer) Next() token.Token {
	if len(l.queue) == 0 {
		l.queue = append(l.queue, l.scan())
	}
	tok := l.queue[0]
	l.queue = l.queue[1:]
	l.last = tok.Span.End
	return tok
}

// Putback pushes a single token back onto the front of the stream. Only
// one token of putback is ever needed by the parser.
func (l *Lexer) Putback(tok token.Token) {
	l.queue = append([]token.Token{tok}, l.queue...)
}

// Lookahead returns the kind of the token k positions ahead without
// consuming anything; k is 0 (the next token), 1, or 2.
func (l *Lexer) Lookahead(k int) token.Kind {
	for len(l.queue) <= k {
		l.queue = append(l.queue, l.scan())
	}
	return l.queue[k].Kind
}

// LookaheadToken is like Lookahead but returns the full token.
func (l *Lexer) LookaheadToken(k int) token.Token {
	for len(l.queue) <= k {
		l.queue = append(l.queue, l.scan())
	}
	return l.queue[k]
}

// StartSpan opens a span at the point where Next last returned. Closing it
// with EndSpan yields the range covered by everything consumed in between.
func (l *Lexer) StartSpan() Handle {
	l.spans = append(l.spans, l.last)
	return Handle(len(l.spans) - 1)
}

// EndSpan closes the span opened by h, ending where Next most recently
// returned.
func (l *Lexer) EndSpan(h Handle) token.Span {
	return token.Span{Start: l.spans[h], End: l.last}
}

// PushHygiene opens a fresh hygiene context; identifiers minted while it is
// active (by macro expansion re-injecting fragments) are tagged with it so
// they cannot accidentally capture or be captured by surrounding names.
func (l *Lexer) PushHygiene() {
	l.hygieneStack = append(l.hygieneStack, l.current)
	l.current = l.next
	l.next++
}

// PopHygiene restores the hygiene context active before the matching
// PushHygiene.
func (l *Lexer) PopHygiene() {
	n := len(l.hygieneStack)
	l.current = l.hygieneStack[n-1]
	l.hygieneStack = l.hygieneStack[:n-1]
}

// scan produces exactly one token from the raw character stream.
func (l *Lexer) scan() token.Token {
	l.skipWhitespaceAndComments()

	start := l.pos()
	mk := func(k token.Kind, lit string) token.Token {
		return token.Token{Kind: k, Literal: lit, Hygiene: l.current,
			Span: token.Span{Start: start, End: l.pos()}}
	}

	if l.ch == 0 {
		return mk(token.EOF, "")
	}

	switch {
	case l.ch == 'b' && l.peekChar() == '"':
		l.readChar() // 'b'
		return l.scanString(start, true)
	case isIdentStart(l.ch):
		return l.scanIdentOrKeyword(start)
	case unicode.IsDigit(l.ch):
		return l.scanNumber(start)
	case l.ch == '"':
		return l.scanString(start, false)
	case l.ch == '\'':
		return l.scanCharOrLifetime(start)
	}

	ch := l.ch
	two := string(ch) + string(l.peekChar())
	three := two + string(l.peekChar2())

	switch three {
	case "..=":
		l.readChar()
		l.readChar()
		l.readChar()
		return mk(token.DOTDOTEQ, three)
	case "...":
		l.readChar()
		l.readChar()
		l.readChar()
		return mk(token.ELLIPSIS, three)
	}

	switch two {
	case "b\"":
		l.readChar()
		return l.scanString(start, true)
	case "::":
		l.readChar()
		l.readChar()
		return mk(token.DCOLON, two)
	case "->":
		l.readChar()
		l.readChar()
		return mk(token.ARROW, two)
	case "=>":
		l.readChar()
		l.readChar()
		return mk(token.FARROW, two)
	case "..":
		l.readChar()
		l.readChar()
		return mk(token.DOTDOT, two)
	case "&&":
		l.readChar()
		l.readChar()
		return mk(token.AMPAMP, two)
	case "||":
		l.readChar()
		l.readChar()
		return mk(token.PIPEPIPE, two)
	case "==":
		l.readChar()
		l.readChar()
		return mk(token.EQEQ, two)
	case "!=":
		l.readChar()
		l.readChar()
		return mk(token.NE, two)
	case "<=":
		l.readChar()
		l.readChar()
		return mk(token.LE, two)
	case ">=":
		l.readChar()
		l.readChar()
		return mk(token.GE, two)
	}

	single := map[rune]token.Kind{
		'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
		'[': token.LBRACKET, ']': token.RBRACKET, ',': token.COMMA, ';': token.SEMI,
		':': token.COLON, '.': token.DOT, '&': token.AMP, '|': token.PIPE,
		'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH,
		'%': token.PERCENT, '^': token.CARET, '!': token.NOT, '=': token.EQ,
		'<': token.LT, '>': token.GT, '@': token.AT, '#': token.HASH,
		'$': token.DOLLAR, '?': token.QUESTION,
	}
	if k, ok := single[ch]; ok {
		l.readChar()
		return mk(k, string(ch))
	}

	l.readChar()
	return mk(token.ILLEGAL, string(ch))
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			depth := 1
			for depth > 0 && l.ch != 0 {
				if l.ch == '/' && l.peekChar() == '*' {
					depth++
					l.readChar()
					l.readChar()
				} else if l.ch == '*' && l.peekChar() == '/' {
					depth--
					l.readChar()
					l.readChar()
				} else {
					l.readChar()
				}
			}
		default:
			return
		}
	}
}

func isIdentStart(ch rune) bool { return unicode.IsLetter(ch) || ch == '_' }
func isIdentCont(ch rune) bool  { return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' }

func (l *Lexer) scanIdentOrKeyword(start token.Pos) token.Token {
	var sb strings.Builder
	for isIdentCont(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	lit := sb.String()
	kind := token.LookupIdent(lit)
	return token.Token{Kind: kind, Literal: lit, Hygiene: l.current,
		Span: token.Span{Start: start, End: l.pos()}}
}

func (l *Lexer) scanNumber(start token.Pos) token.Token {
	var sb strings.Builder
	isFloat := false
	for unicode.IsDigit(l.ch) || l.ch == '_' {
		if l.ch != '_' {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		sb.WriteRune(l.ch)
		l.readChar()
		for unicode.IsDigit(l.ch) || l.ch == '_' {
			if l.ch != '_' {
				sb.WriteRune(l.ch)
			}
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		sb.WriteRune(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		for unicode.IsDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}

	var suffix strings.Builder
	for isIdentCont(l.ch) {
		suffix.WriteRune(l.ch)
		l.readChar()
	}

	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	hi, lo := parseMagnitude(sb.String())
	return token.Token{Kind: kind, Literal: sb.String(), Hygiene: l.current,
		Span: token.Span{Start: start, End: l.pos()},
		IntHi: hi, IntLo: lo, NumSuffix: token.NumSuffix(suffix.String())}
}

// parseMagnitude computes a 128-bit-wide unsigned magnitude from a decimal
// digit string, returned as (high64, low64). Only the runes '0'-'9' are
// accumulated; any other rune is skipped. scanNumber recognizes no hex/oct/
// binary prefix ("0x1F" lexes as "0" with suffix "x1F"), and it calls this
// for float literals too, whose '.', exponent and sign runes are skipped.
func parseMagnitude(digits string) (hi, lo uint64) {
	for _, r := range digits {
		if r < '0' || r > '9' {
			continue
		}
		d := uint64(r - '0')
		// multiply (hi:lo) by 10 and add d, using full-width 64x64 multiply
		// so the carry out of lo*10 is captured exactly rather than via
		// truncated 32-bit limb arithmetic.
		mulHi, mulLo := bits.Mul64(lo, 10)
		var carry uint64
		lo, carry = bits.Add64(mulLo, d, 0)
		mulHi += carry
		hi = hi*10 + mulHi
	}
	return hi, lo
}

// scanString reads a "..." or b"..." literal, producing the *unescaped*
// payload as the token literal.
func (l *Lexer) scanString(start token.Pos, isByte bool) token.Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	kind := token.STRING
	if isByte {
		kind = token.BYTE_STRING
	}
	return token.Token{Kind: kind, Literal: sb.String(), Hygiene: l.current,
		Span: token.Span{Start: start, End: l.pos()}}
}

func (l *Lexer) scanCharOrLifetime(start token.Pos) token.Token {
	// 'a (lifetime) vs 'a' (char literal): disambiguate by whether the
	// char after the identifier-looking content is a closing quote.
	if isIdentStart(l.peekChar()) && l.peekChar2() != '\'' {
		l.readChar() // consume '
		var sb strings.Builder
		for isIdentCont(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		return token.Token{Kind: token.LIFETIME, Literal: sb.String(), Hygiene: l.current,
			Span: token.Span{Start: start, End: l.pos()}}
	}
	l.readChar() // consume opening '
	var ch rune
	if l.ch == '\\' {
		l.readChar()
		ch = unescape(l.ch)
		l.readChar()
	} else {
		ch = l.ch
		l.readChar()
	}
	if l.ch == '\'' {
		l.readChar()
	}
	return token.Token{Kind: token.CHAR, Literal: string(ch), Hygiene: l.current,
		Span: token.Span{Start: start, End: l.pos()}}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', '\'', '"':
		return ch
	default:
		return ch
	}
}

// KindString renders the token kind name for diagnostics, matching the
// ergonomics of fmt.Stringer but avoiding an import-cycle back into token
// from anything that formats errors.
func KindString(k token.Kind) string { return fmt.Sprintf("%s", k) }
