package fmtmacro

import (
	"strconv"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// scanner walks a format string one rune at a time, tracking line/column
// so every FMT-coded error carries an accurate span relative to the
// enclosing string literal's start position.
type scanner struct {
	src   []rune
	pos   int
	at    token.Pos
}

func newScanner(src string, start token.Pos) *scanner {
	return &scanner{src: []rune(src), at: start}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(off int) rune {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.at.Line++
		s.at.Column = 0
	} else {
		s.at.Column++
	}
	s.at.Offset++
	return r
}

// scan implements spec.md §4.6's grammar, producing unresolved fragment
// drafts (the first of the two passes the spec's argument renumbering
// needs; the second pass is Parse's resolve step, above) plus whatever
// literal text trails the last fragment.
func scan(format string, start token.Pos) ([]fragmentDraft, string, *errors.Report) {
	s := newScanner(format, start)
	var drafts []fragmentDraft
	var literal []rune
	
	flushLiteral := func() string {
		lit := string(literal)
		literal = literal[:0]
		return lit
	}

	for !s.eof() {
		switch s.peek() {
		case '{':
			if s.peekAt(1) == '{' {
				s.advance()
				s.advance()
				literal = append(literal, '{')
				continue
			}
			fragStart := s.at
			s.advance() // '{'
			lit := flushLiteral()
			draft, rep := scanFragment(s)
			if rep != nil {
				return nil, "", rep
			}
			draft.literal = lit
			draft.span = token.Span{Start: fragStart, End: s.at}
			drafts = append(drafts, draft)

		case '}':
			if s.peekAt(1) == '}' {
				s.advance()
				s.advance()
				literal = append(literal, '}')
				continue
			}
			return nil, "", errors.New(errors.FMT001, "fmtmacro", "unmatched '}' in format string").WithSpan(token.Span{Start: s.at})

		default:
			literal = append(literal, s.advance())
		}
	}

	return drafts, flushLiteral(), nil
}

// scanFragment parses everything between a consumed '{' and its closing
// '}': "(arg-ref)? (':' spec)? '}'".
func scanFragment(s *scanner) (fragmentDraft, *errors.Report) {
	d := fragmentDraft{trait: TraitDisplay}

	if !s.eof() && s.peek() != ':' && s.peek() != '}' {
		ref, rep := scanArgRef(s)
		if rep != nil {
			return d, rep
		}
		d.mainRef = ref
	} else {
		d.mainRef = rawRef{kind: ArgRefImplicit}
	}

	if s.peek() == ':' {
		s.advance()
		if rep := scanSpec(s, &d); rep != nil {
			return d, rep
		}
	}

	if s.eof() || s.peek() != '}' {
		return d, errors.New(errors.FMT001, "fmtmacro", "unmatched '{' in format string").WithSpan(token.Span{Start: s.at})
	}
	s.advance() // '}'
	return d, nil
}

// scanArgRef parses a bare argument reference: digits (explicit index) or
// an identifier (named reference). The caller has already excluded the
// implicit (empty) case.
func scanArgRef(s *scanner) (rawRef, *errors.Report) {
	if unicode.IsDigit(s.peek()) {
		n := scanDigits(s)
		return rawRef{kind: ArgRefIndex, n: n}, nil
	}
	if isIdentStart(s.peek()) {
		name := scanIdent(s)
		return rawRef{kind: ArgRefName, name: name}, nil
	}
	return rawRef{}, errors.New(errors.FMT005, "fmtmacro", "invalid format spec syntax").WithSpan(token.Span{Start: s.at})
}

func scanDigits(s *scanner) int {
	start := s.pos
	for !s.eof() && unicode.IsDigit(s.peek()) {
		s.advance()
	}
	n, _ := strconv.Atoi(string(s.src[start:s.pos]))
	return n
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func scanIdent(s *scanner) string {
	start := s.pos
	for !s.eof() && isIdentCont(s.peek()) {
		s.advance()
	}
	return string(s.src[start:s.pos])
}

// scanSpec implements "[fill align]? sign? '#'? '0'? width? ('.' precision)? type?".
func scanSpec(s *scanner, d *fragmentDraft) *errors.Report {
	if isAlignChar(s.peekAt(1)) {
		fill := s.advance()
		if w := runewidth.RuneWidth(fill); w != 1 {
			return errors.New(errors.FMT005, "fmtmacro", "fill character must occupy exactly one display column").WithSpan(token.Span{Start: s.at})
		}
		d.opts.Fill = fill
		d.opts.Align = alignFromChar(s.advance())
	} else if isAlignChar(s.peek()) {
		d.opts.Align = alignFromChar(s.advance())
	}

	switch s.peek() {
	case '+':
		s.advance()
		d.opts.Sign = SignPlus
	case '-':
		s.advance()
		d.opts.Sign = SignMinus
	}

	if s.peek() == '#' {
		s.advance()
		d.opts.Alternate = true
	}

	// "0" means zero-pad only when not the start of a "{N$}" width
	// reference; a bare run of digits followed by '$' is a width
	// argument-index instead, handled uniformly by scanWidthOrIndex below.
	if s.peek() == '0' && !isDollarRef(s, s.pos) {
		s.advance()
		d.opts.ZeroPad = true
	}

	if unicode.IsDigit(s.peek()) || isIdentStart(s.peek()) {
		ref, _, rep := scanDollarRef(s)
		if rep != nil {
			return rep
		}
		d.widthRef = &ref
	}

	if s.peek() == '.' {
		s.advance()
		switch {
		case s.peek() == '*':
			s.advance()
			r := rawRef{kind: ArgRefNextFree}
			d.precRef = &r
		case unicode.IsDigit(s.peek()) || isIdentStart(s.peek()):
			ref, _, rep := scanDollarRef(s)
			if rep != nil {
				return rep
			}
			// ref is already ArgRefLiteral (bare "N") or ArgRefIndex/Name
			// ("N$"/"name$") as scanDollarRef shapes it.
			d.precRef = &ref
		default:
			return errors.New(errors.FMT005, "fmtmacro", "invalid format spec syntax").WithSpan(token.Span{Start: s.at})
		}
	}

	if !s.eof() && s.peek() != '}' {
		t, rep := scanTraitSelector(s)
		if rep != nil {
			return rep
		}
		d.trait = t
	}

	return nil
}

// isDollarRef reports whether, starting at pos, the spec contains a
// digit-or-ident run immediately followed by '$' — i.e. an explicit
// width/precision argument reference rather than a literal/zero-pad flag.
func isDollarRef(s *scanner, pos int) bool {
	i := pos
	if i < len(s.src) && unicode.IsDigit(s.src[i]) {
		for i < len(s.src) && unicode.IsDigit(s.src[i]) {
			i++
		}
	} else if i < len(s.src) && isIdentStart(s.src[i]) {
		for i < len(s.src) && isIdentCont(s.src[i]) {
			i++
		}
	} else {
		return false
	}
	return i < len(s.src) && s.src[i] == '$'
}

// scanDollarRef scans either a literal width/precision integer, or an
// explicit "N$"/"name$" argument reference. consumed=false for the bare
// literal-integer case (the caller decides how to wrap it).
func scanDollarRef(s *scanner) (rawRef, bool, *errors.Report) {
	dollar := isDollarRef(s, s.pos)
	if unicode.IsDigit(s.peek()) {
		n := scanDigits(s)
		if dollar {
			s.advance() // '$'
			return rawRef{kind: ArgRefIndex, n: n}, true, nil
		}
		return rawRef{kind: ArgRefLiteral, n: n}, false, nil
	}
	name := scanIdent(s)
	if !dollar {
		return rawRef{}, false, errors.New(errors.FMT005, "fmtmacro", "invalid format spec syntax").WithSpan(token.Span{Start: s.at})
	}
	s.advance() // '$'
	return rawRef{kind: ArgRefName, name: name}, true, nil
}

func isAlignChar(r rune) bool { return r == '<' || r == '^' || r == '>' }

func alignFromChar(r rune) Alignment {
	switch r {
	case '<':
		return AlignLeft
	case '^':
		return AlignCenter
	case '>':
		return AlignRight
	}
	return AlignUnspec
}

func scanTraitSelector(s *scanner) (TraitSelector, *errors.Report) {
	r := s.advance()
	switch r {
	case '?':
		return TraitDebug, nil
	case 'b':
		return TraitBinary, nil
	case 'o':
		return TraitOctal, nil
	case 'x':
		return TraitLowerHex, nil
	case 'X':
		return TraitUpperHex, nil
	case 'p':
		return TraitPointer, nil
	case 'e':
		return TraitLowerExp, nil
	case 'E':
		return TraitUpperExp, nil
	}
	return 0, errors.New(errors.FMT005, "fmtmacro", "invalid format spec type \""+string(r)+"\"").WithSpan(token.Span{Start: s.at})
}
