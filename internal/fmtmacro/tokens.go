package fmtmacro

import "github.com/corvid-lang/corvidc/internal/token"

// needsFormatted reports whether any fragment carries an option the
// default constructor can't express, forcing the richer
// "new_v1_formatted" token tree instead of "new_v1".
func (e *Expansion) needsFormatted() bool {
	for _, f := range e.Fragments {
		if f.Trait != TraitDisplay {
			return true
		}
		o := f.Options
		if o.Align != AlignUnspec || o.Sign != SignUnspec || o.Alternate || o.ZeroPad ||
			o.Width != nil || o.Precision != nil {
			return true
		}
	}
	return false
}

// ToTokens emits the token tree the expanded format-macro invocation lowers
// to: a call to "Arguments::new_v1" when every fragment uses plain Display
// with no formatting options, or "Arguments::new_v1_formatted" plus a
// per-fragment "Argument { ... }" array when any fragment needs alignment,
// sign, width, precision, or a non-Display trait (spec.md §4.6 "Output").
// The emitted tokens are plain punctuation/ident tokens except each
// argument expression, which rides through as a single FRAGMENT token
// carrying the already-lowered ast.Expr — the parser never re-lexes it.
func (e *Expansion) ToTokens(at token.Pos) []token.Token {
	var out []token.Token
	emit := func(k token.Kind, lit string) {
		out = append(out, token.Token{Kind: k, Literal: lit, Span: token.Span{Start: at, End: at}})
	}
	emitFragment := func(expr interface{}) {
		out = append(out, token.Token{Kind: token.FRAGMENT, Span: token.Span{Start: at, End: at}, Fragment: expr})
	}

	emit(token.IDENT, "Arguments")
	emit(token.DCOLON, "::")
	if e.needsFormatted() {
		emit(token.IDENT, "new_v1_formatted")
	} else {
		emit(token.IDENT, "new_v1")
	}
	emit(token.LPAREN, "(")

	// pieces: &[literal, literal, ...]
	emit(token.AMP, "&")
	emit(token.LBRACKET, "[")
	for i, f := range e.Fragments {
		if i > 0 {
			emit(token.COMMA, ",")
		}
		emit(token.STRING, f.Literal)
	}
	if len(e.Fragments) > 0 {
		emit(token.COMMA, ",")
	}
	emit(token.STRING, e.TrailingLiteral)
	emit(token.RBRACKET, "]")
	emit(token.COMMA, ",")

	// args: &[ArgumentV1::new_<trait>(&expr), ...], <trait> taken from the
	// first fragment whose ArgIndex is the argument (Display if none is)
	argCtors := map[TraitSelector]string{
		TraitDisplay: "new_display", TraitDebug: "new_debug", TraitBinary: "new_binary",
		TraitOctal: "new_octal", TraitLowerHex: "new_lower_hex", TraitUpperHex: "new_upper_hex",
		TraitPointer: "new_pointer", TraitLowerExp: "new_lower_exp", TraitUpperExp: "new_upper_exp",
	}
	emit(token.AMP, "&")
	emit(token.LBRACKET, "[")
	for i, a := range e.Args {
		if i > 0 {
			emit(token.COMMA, ",")
		}
		ctor := "new_display"
		for _, f := range e.Fragments {
			if f.ArgIndex == i {
				ctor = argCtors[f.Trait]
				break
			}
		}
		emit(token.IDENT, "ArgumentV1")
		emit(token.DCOLON, "::")
		emit(token.IDENT, ctor)
		emit(token.LPAREN, "(")
		emit(token.AMP, "&")
		emitFragment(a)
		emit(token.RPAREN, ")")
	}
	emit(token.RBRACKET, "]")

	if e.needsFormatted() {
		emit(token.COMMA, ",")
		emit(token.AMP, "&")
		emit(token.LBRACKET, "[")
		for i, f := range e.Fragments {
			if i > 0 {
				emit(token.COMMA, ",")
			}
			emitFormatSpecToken(emit, f)
		}
		emit(token.RBRACKET, "]")
	}

	emit(token.RPAREN, ")")
	return out
}

// emitFormatSpecToken emits one "Argument { position, flags, fill, align,
// width, precision }" struct literal for a single fragment's resolved options.
func emitFormatSpecToken(emit func(token.Kind, string), f Fragment) {
	emit(token.IDENT, "Argument")
	emit(token.LBRACE, "{")

	emit(token.IDENT, "position")
	emit(token.COLON, ":")
	emit(token.INT, itoa(f.ArgIndex))
	emit(token.COMMA, ",")

	emit(token.IDENT, "flags")
	emit(token.COLON, ":")
	emit(token.INT, itoa(flagsBits(f.Options)))
	emit(token.COMMA, ",")

	emit(token.IDENT, "fill")
	emit(token.COLON, ":")
	if f.Options.Fill != 0 {
		emit(token.CHAR, string(f.Options.Fill))
	} else {
		emit(token.CHAR, " ")
	}
	emit(token.COMMA, ",")

	emit(token.IDENT, "align")
	emit(token.COLON, ":")
	emit(token.IDENT, alignIdent(f.Options.Align))
	emit(token.COMMA, ",")

	emit(token.IDENT, "width")
	emit(token.COLON, ":")
	emitCount(emit, f.Options.Width)
	emit(token.COMMA, ",")

	emit(token.IDENT, "precision")
	emit(token.COLON, ":")
	emitCount(emit, f.Options.Precision)

	emit(token.RBRACE, "}")
}

func emitCount(emit func(token.Kind, string), ref *ArgRef) {
	if ref == nil {
		emit(token.IDENT, "CountImplied")
		return
	}
	switch ref.Kind {
	case ArgRefLiteral:
		emit(token.IDENT, "CountIs")
		emit(token.LPAREN, "(")
		emit(token.INT, itoa(ref.Literal))
		emit(token.RPAREN, ")")
	default:
		emit(token.IDENT, "CountIsParam")
		emit(token.LPAREN, "(")
		emit(token.INT, itoa(ref.Index))
		emit(token.RPAREN, ")")
	}
}

func alignIdent(a Alignment) string {
	switch a {
	case AlignLeft:
		return "AlignLeft"
	case AlignCenter:
		return "AlignCenter"
	case AlignRight:
		return "AlignRight"
	default:
		return "AlignUnknown"
	}
}

// flagsBits packs sign/alternate/zero-pad into the same bitfield layout
// the original constructor's "flags: u32" argument uses: bit 0 sign-plus,
// bit 1 sign-minus, bit 2 alternate, bit 3 sign-aware zero-pad.
func flagsBits(o Options) int {
	bits := 0
	if o.Sign == SignPlus {
		bits |= 1 << 0
	}
	if o.Sign == SignMinus {
		bits |= 1 << 1
	}
	if o.Alternate {
		bits |= 1 << 2
	}
	if o.ZeroPad {
		bits |= 1 << 3
	}
	return bits
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
