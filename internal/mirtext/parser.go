package mirtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/lexer"
	"github.com/corvid-lang/corvidc/internal/token"
)

// Parser holds state for one MIR-text fixture file.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token

	// labelPatch defers a GOTO/PANIC/IF/SWITCH/CALL target's final index
	// until every block in the enclosing function has been seen, matching
	// the two-name-map approach the reference parser uses (spec.md §4.7
	// "parses labels lazily").
	labelPatch []labelPatch
}

type labelPatch struct {
	name string
	dst  *int
}

// Parse reads src as one MIR-text fixture.
func Parse(src, file string) (*File, *errors.Report) {
	p := &Parser{lex: lexer.New(src, file)}
	p.cur = p.lex.Next()

	f := &File{}
	for !p.at(token.EOF) {
		fn, rep := p.parseFunction()
		if rep != nil {
			return nil, rep
		}
		f.Functions = append(f.Functions, fn)
	}
	return f, nil
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }
func (p *Parser) peekKind() token.Kind { return p.lex.Lookahead(0) }

func (p *Parser) advance() token.Token {
	prev := p.cur
	p.cur = p.lex.Next()
	return prev
}

func (p *Parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, *errors.Report) {
	if !p.at(k) {
		return token.Token{}, p.unexpected(k)
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(expected ...token.Kind) *errors.Report {
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}
	msg := fmt.Sprintf("unexpected token %q, expected one of: %s", p.cur.Kind, strings.Join(names, ", "))
	return errors.New(errors.PAR001, "mirtext", msg).WithSpan(p.cur.Span)
}

func (p *Parser) genericError(code, msg string) *errors.Report {
	return errors.New(code, "mirtext", msg).WithSpan(p.cur.Span)
}

// --- top level --------------------------------------------------------

func (p *Parser) parseAttrs() ([]Attr, *errors.Report) {
	var attrs []Attr
	for p.accept(token.HASH) {
		if _, rep := p.expect(token.LBRACKET); rep != nil {
			return nil, rep
		}
		nameTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.EQ); rep != nil {
			return nil, rep
		}
		valTok, rep := p.expect(token.STRING)
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.RBRACKET); rep != nil {
			return nil, rep
		}
		attrs = append(attrs, Attr{Name: nameTok.Literal, Value: valTok.Literal})
	}
	return attrs, nil
}

func (p *Parser) parseFunction() (*Function, *errors.Report) {
	attrs, rep := p.parseAttrs()
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.KW_FN); rep != nil {
		return nil, rep
	}
	nameTok, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}

	fn := &Function{Attrs: attrs, Name: nameTok.Literal, blockIndex: map[string]int{}}
	p.labelPatch = nil

	if _, rep := p.expect(token.LPAREN); rep != nil {
		return nil, rep
	}
	for !p.at(token.RPAREN) {
		pnameTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.COLON); rep != nil {
			return nil, rep
		}
		ty, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		fn.Params = append(fn.Params, Param{Name: pnameTok.Literal, Type: ty})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}

	if p.accept(token.ARROW) {
		ty, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		fn.RetType = ty
	} else {
		fn.RetType = "()"
	}

	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}

	names := map[string]lvalueBinding{}
	for i, prm := range fn.Params {
		names[prm.Name] = lvalueBinding{kind: RootArgument, idx: i}
	}
	names["retval"] = lvalueBinding{kind: RootReturn}

	for p.at(token.KW_LET) {
		p.advance()
		localTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		if p.accept(token.EQ) {
			var v bool
			switch {
			case p.at(token.KW_TRUE):
				v = true
				p.advance()
			case p.at(token.KW_FALSE):
				v = false
				p.advance()
			default:
				return nil, p.unexpected(token.KW_TRUE, token.KW_FALSE)
			}
			if _, rep := p.expect(token.SEMI); rep != nil {
				return nil, rep
			}
			fn.DropFlags = append(fn.DropFlags, localTok.Literal)
			names[localTok.Literal] = lvalueBinding{kind: -1, dropFlag: localTok.Literal}
			continue
		}
		if _, rep := p.expect(token.COLON); rep != nil {
			return nil, rep
		}
		ty, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.SEMI); rep != nil {
			return nil, rep
		}
		idx := len(fn.Locals)
		fn.Locals = append(fn.Locals, Local{Name: localTok.Literal, Type: ty})
		names[localTok.Literal] = lvalueBinding{kind: RootLocal, idx: idx}
	}

	for !p.at(token.RBRACE) {
		labelTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		fn.blockIndex[labelTok.Literal] = len(fn.Blocks)
		if _, rep := p.expect(token.COLON); rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.LBRACE); rep != nil {
			return nil, rep
		}
		bb := &BasicBlock{Label: labelTok.Literal}

		for p.atStatementKeyword() {
			stmt, rep := p.parseStatement(names)
			if rep != nil {
				return nil, rep
			}
			bb.Stmts = append(bb.Stmts, stmt)
			if _, rep := p.expect(token.SEMI); rep != nil {
				return nil, rep
			}
		}
		term, rep := p.parseTerminator(names)
		if rep != nil {
			return nil, rep
		}
		bb.Term = term
		if _, rep := p.expect(token.SEMI); rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.RBRACE); rep != nil {
			return nil, rep
		}
		fn.Blocks = append(fn.Blocks, bb)
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}

	if rep := p.resolveLabels(fn); rep != nil {
		return nil, rep
	}
	return fn, nil
}

// resolveLabels runs the deferred patch list collected while parsing one
// function's blocks, binding each forward-referenced label to its final
// block index now that every block has been seen (spec.md §4.7).
func (p *Parser) resolveLabels(fn *Function) *errors.Report {
	for _, patch := range p.labelPatch {
		idx, ok := fn.blockIndex[patch.name]
		if !ok {
			return errors.New(errors.MIR002, "mirtext", "reference to undefined basic block label \""+patch.name+"\"")
		}
		*patch.dst = idx
	}
	p.labelPatch = nil
	// parseTerminator returns its Terminator by value, so the patches above
	// only reach the shared SwitchIndices arrays; the single-label index
	// fields of the stored terminators are set here from their labels.
	for _, bb := range fn.Blocks {
		t := &bb.Term
		switch t.Kind {
		case TermGoto:
			t.GotoIdx = fn.blockIndex[t.GotoLabel]
		case TermPanic:
			t.PanicIdx = fn.blockIndex[t.PanicLabel]
		case TermCall:
			t.CallRetIdx, t.CallPanicIdx = fn.blockIndex[t.CallRetLabel], fn.blockIndex[t.CallPanicLabel]
		case TermIf:
			t.IfThenIdx, t.IfElseIdx = fn.blockIndex[t.IfThenLabel], fn.blockIndex[t.IfElseLabel]
		}
	}
	return nil
}

// atStatementKeyword reports whether the current token starts a DROP/ASSIGN
// statement. Anything else ends the block's statement list and is handed to
// parseTerminator, which reports MIR001 if it isn't one of the seven
// recognized terminator keywords either.
func (p *Parser) atStatementKeyword() bool {
	if p.cur.Kind != token.IDENT {
		return false
	}
	switch p.cur.Literal {
	case "DROP", "ASSIGN":
		return true
	}
	return false
}

// parseSimplePath parses a call target's callee path: either a crate-
// qualified "::\"crate\"::a::b" form, or a bare same-crate "a::b" chain.
func (p *Parser) parseSimplePath() (string, *errors.Report) {
	var head string
	if p.accept(token.DCOLON) {
		crateTok, rep := p.expect(token.STRING)
		if rep != nil {
			return "", rep
		}
		head = crateTok.Literal
		if _, rep := p.expect(token.DCOLON); rep != nil {
			return "", rep
		}
	} else {
		segTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return "", rep
		}
		head = segTok.Literal
		if !p.accept(token.DCOLON) {
			return head, nil
		}
	}
	segTok, rep := p.expect(token.IDENT)
	if rep != nil {
		return "", rep
	}
	path := head + "::" + segTok.Literal
	for p.accept(token.DCOLON) {
		seg, rep := p.expect(token.IDENT)
		if rep != nil {
			return "", rep
		}
		path += "::" + seg.Literal
	}
	return path, nil
}

// --- types --------------------------------------------------------------

var coreTypeNames = map[string]bool{
	"bool": true, "str": true,
	"u8": true, "i8": true, "u16": true, "i16": true,
	"u32": true, "i32": true, "u64": true, "i64": true,
	"u128": true, "i128": true, "usize": true, "isize": true,
}

func (p *Parser) parseType() (string, *errors.Report) {
	switch {
	case p.at(token.LPAREN):
		p.advance()
		var parts []string
		for !p.at(token.RPAREN) {
			ty, rep := p.parseType()
			if rep != nil {
				return "", rep
			}
			parts = append(parts, ty)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return "", rep
		}
		return "(" + strings.Join(parts, ", ") + ")", nil

	case p.at(token.AMP):
		p.advance()
		prefix := "&"
		switch {
		case p.accept(token.KW_MOVE):
			prefix = "&move "
		case p.accept(token.KW_MUT):
			prefix = "&mut "
		}
		inner, rep := p.parseType()
		if rep != nil {
			return "", rep
		}
		return prefix + inner, nil

	case p.at(token.IDENT):
		name := p.cur.Literal
		if !coreTypeNames[name] {
			return "", p.genericError(errors.PAR001, "unrecognized type name \""+name+"\"")
		}
		p.advance()
		return name, nil
	}
	return "", p.unexpected(token.LPAREN, token.AMP, token.IDENT)
}

// --- lvalues --------------------------------------------------------------

// lvalueBinding is how a name in scope resolves to an LValue root; kind -1
// marks a drop-flag name (never itself an lvalue root).
type lvalueBinding struct {
	kind     LValueRootKind
	idx      int
	dropFlag string
}

func (p *Parser) parseLValue(names map[string]lvalueBinding) (LValue, *errors.Report) {
	var lv LValue
	lv.Span = p.cur.Span
	if p.at(token.DCOLON) {
		p.advance()
		pathTok, rep := p.expect(token.STRING)
		if rep != nil {
			return lv, rep
		}
		path := pathTok.Literal
		for p.accept(token.DCOLON) {
			seg, rep := p.expect(token.IDENT)
			if rep != nil {
				return lv, rep
			}
			path += "::" + seg.Literal
		}
		lv.RootKind = RootStatic
		lv.Static = path
	} else {
		nameTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return lv, rep
		}
		b, ok := names[nameTok.Literal]
		if !ok || b.kind < 0 {
			return lv, p.genericError(errors.MIR003, "reference to unknown local \""+nameTok.Literal+"\"")
		}
		lv.RootKind = b.kind
		lv.RootName = nameTok.Literal
		lv.RootIdx = b.idx
	}

loop:
	for {
		switch {
		case p.at(token.DOT):
			p.advance()
			idxTok, rep := p.expect(token.INT)
			if rep != nil {
				return lv, rep
			}
			n, _ := strconv.ParseInt(idxTok.Literal, 10, 64)
			lv.Wrappers = append(lv.Wrappers, Wrapper{Kind: WrapField, Index: n})
		case p.at(token.HASH):
			p.advance()
			idxTok, rep := p.expect(token.INT)
			if rep != nil {
				return lv, rep
			}
			n, _ := strconv.ParseInt(idxTok.Literal, 10, 64)
			lv.Wrappers = append(lv.Wrappers, Wrapper{Kind: WrapDowncast, Index: n})
		case p.at(token.STAR):
			p.advance()
			lv.Wrappers = append(lv.Wrappers, Wrapper{Kind: WrapDeref})
		default:
			break loop
		}
	}
	return lv, nil
}

func (p *Parser) parseOperand(names map[string]lvalueBinding) (Operand, *errors.Report) {
	switch {
	case p.at(token.KW_TRUE):
		p.advance()
		return Operand{IsConstant: true, Constant: Constant{Kind: ConstBool, Bool: true}}, nil
	case p.at(token.KW_FALSE):
		p.advance()
		return Operand{IsConstant: true, Constant: Constant{Kind: ConstBool, Bool: false}}, nil
	default:
		lv, rep := p.parseLValue(names)
		if rep != nil {
			return Operand{}, rep
		}
		return Operand{LValue: lv}, nil
	}
}

// --- statements -----------------------------------------------------------

func (p *Parser) parseStatement(names map[string]lvalueBinding) (Statement, *errors.Report) {
	if !p.at(token.IDENT) {
		return nil, p.unexpected(token.IDENT)
	}
	switch p.cur.Literal {
	case "DROP":
		p.advance()
		lv, rep := p.parseLValue(names)
		if rep != nil {
			return nil, rep
		}
		st := &DropStmt{LValue: lv}
		if p.accept(token.KW_IF) {
			st.HasIf = true
			flagTok, rep := p.expect(token.IDENT)
			if rep != nil {
				return nil, rep
			}
			st.Flag = flagTok.Literal
		}
		return st, nil

	case "ASSIGN":
		p.advance()
		dst, rep := p.parseLValue(names)
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.EQ); rep != nil {
			return nil, rep
		}
		src, rep := p.parseRValue(names)
		if rep != nil {
			return nil, rep
		}
		return &AssignStmt{Dst: dst, Src: src}, nil
	}
	return nil, p.genericError(errors.MIR003, "unrecognized MIR statement \""+p.cur.Literal+"\"")
}

func (p *Parser) parseRValue(names map[string]lvalueBinding) (RValue, *errors.Report) {
	switch {
	case p.at(token.LPAREN):
		p.advance()
		var elems []Operand
		for !p.at(token.RPAREN) {
			op, rep := p.parseOperand(names)
			if rep != nil {
				return RValue{}, rep
			}
			elems = append(elems, op)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return RValue{}, rep
		}
		return RValue{Kind: RValueTuple, Elems: elems}, nil

	case p.at(token.AMP):
		p.advance()
		way := BorrowShared
		switch {
		case p.accept(token.KW_MOVE):
			way = BorrowOwned
		case p.accept(token.KW_MUT):
			way = BorrowUnique
		}
		lv, rep := p.parseLValue(names)
		if rep != nil {
			return RValue{}, rep
		}
		return RValue{Kind: RValueBorrow, BorrowOf: lv, BorrowWay: way}, nil

	case p.at(token.IDENT) && isBinOpName(p.cur.Literal) && p.peekKind() == token.LPAREN:
		op := p.advance().Literal
		p.advance() // '('
		l, rep := p.parseOperand(names)
		if rep != nil {
			return RValue{}, rep
		}
		if _, rep := p.expect(token.COMMA); rep != nil {
			return RValue{}, rep
		}
		r, rep := p.parseOperand(names)
		if rep != nil {
			return RValue{}, rep
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return RValue{}, rep
		}
		return RValue{Kind: RValueBinOp, Op: op, Left: l, Right: r}, nil

	case p.at(token.KW_TRUE), p.at(token.KW_FALSE), p.at(token.IDENT), p.at(token.DCOLON):
		op, rep := p.parseOperand(names)
		if rep != nil {
			return RValue{}, rep
		}
		return RValue{Kind: RValueUse, Operand: op}, nil
	}
	return RValue{}, p.genericError(errors.MIR003, "malformed rvalue")
}

var binOpNames = map[string]bool{
	"ADD": true, "SUB": true, "MUL": true, "DIV": true, "MOD": true,
	"BIT_AND": true, "BIT_OR": true, "BIT_XOR": true,
	"SHL": true, "SHR": true,
	"EQ": true, "NE": true, "LT": true, "LE": true, "GT": true, "GE": true,
}

func isBinOpName(s string) bool { return binOpNames[s] }

// --- terminators ------------------------------------------------------

func (p *Parser) queueLabel(name string, dst *int) {
	p.labelPatch = append(p.labelPatch, labelPatch{name: name, dst: dst})
}

func (p *Parser) parseTerminator(names map[string]lvalueBinding) (Terminator, *errors.Report) {
	if !p.at(token.IDENT) {
		return Terminator{}, p.unexpected(token.IDENT)
	}
	kw := p.cur.Literal
	p.advance()
	switch kw {
	case "RETURN":
		return Terminator{Kind: TermReturn}, nil
	case "DIVERGE":
		return Terminator{Kind: TermDiverge}, nil
	case "GOTO":
		labelTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}
		t := Terminator{Kind: TermGoto, GotoLabel: labelTok.Literal}
		p.queueLabel(labelTok.Literal, &t.GotoIdx)
		return t, nil
	case "PANIC":
		labelTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}
		t := Terminator{Kind: TermPanic, PanicLabel: labelTok.Literal}
		p.queueLabel(labelTok.Literal, &t.PanicIdx)
		return t, nil
	case "CALL":
		dst, rep := p.parseLValue(names)
		if rep != nil {
			return Terminator{}, rep
		}
		if _, rep := p.expect(token.EQ); rep != nil {
			return Terminator{}, rep
		}
		var target CallTarget
		switch {
		case p.at(token.LPAREN):
			p.advance()
			lv, rep := p.parseLValue(names)
			if rep != nil {
				return Terminator{}, rep
			}
			if _, rep := p.expect(token.RPAREN); rep != nil {
				return Terminator{}, rep
			}
			target = CallTarget{Kind: CallTargetValue, Value: lv}
		case p.at(token.STRING):
			nameTok := p.advance()
			target = CallTarget{Kind: CallTargetIntrinsic, Intrinsic: nameTok.Literal}
		default:
			path, rep := p.parseSimplePath()
			if rep != nil {
				return Terminator{}, rep
			}
			target = CallTarget{Kind: CallTargetPath, Path: path}
		}

		if _, rep := p.expect(token.LPAREN); rep != nil {
			return Terminator{}, rep
		}
		var args []Operand
		for !p.at(token.RPAREN) {
			op, rep := p.parseOperand(names)
			if rep != nil {
				return Terminator{}, rep
			}
			args = append(args, op)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return Terminator{}, rep
		}

		if _, rep := p.expect(token.FARROW); rep != nil {
			return Terminator{}, rep
		}
		retTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}
		if _, rep := p.expect(token.KW_ELSE); rep != nil {
			return Terminator{}, rep
		}
		panicTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}

		t := Terminator{
			Kind: TermCall, CallDst: dst, CallTarget: target, CallArgs: args,
			CallRetLabel: retTok.Literal, CallPanicLabel: panicTok.Literal,
		}
		p.queueLabel(retTok.Literal, &t.CallRetIdx)
		p.queueLabel(panicTok.Literal, &t.CallPanicIdx)
		return t, nil

	case "IF":
		cond, rep := p.parseLValue(names)
		if rep != nil {
			return Terminator{}, rep
		}
		if _, rep := p.expect(token.FARROW); rep != nil {
			return Terminator{}, rep
		}
		thenTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}
		if _, rep := p.expect(token.KW_ELSE); rep != nil {
			return Terminator{}, rep
		}
		elseTok, rep := p.expect(token.IDENT)
		if rep != nil {
			return Terminator{}, rep
		}
		t := Terminator{Kind: TermIf, IfCond: cond, IfThenLabel: thenTok.Literal, IfElseLabel: elseTok.Literal}
		p.queueLabel(thenTok.Literal, &t.IfThenIdx)
		p.queueLabel(elseTok.Literal, &t.IfElseIdx)
		return t, nil

	case "SWITCH":
		val, rep := p.parseLValue(names)
		if rep != nil {
			return Terminator{}, rep
		}
		if _, rep := p.expect(token.LBRACE); rep != nil {
			return Terminator{}, rep
		}
		t := Terminator{Kind: TermSwitch, SwitchVal: val}
		for !p.at(token.RBRACE) {
			labelTok, rep := p.expect(token.IDENT)
			if rep != nil {
				return Terminator{}, rep
			}
			t.SwitchLabels = append(t.SwitchLabels, labelTok.Literal)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.RBRACE); rep != nil {
			return Terminator{}, rep
		}
		// SwitchIndices is allocated to its final size up front: queueLabel
		// captures pointers into it, which a later append could invalidate
		// by reallocating the backing array.
		t.SwitchIndices = make([]int, len(t.SwitchLabels))
		for i, label := range t.SwitchLabels {
			p.queueLabel(label, &t.SwitchIndices[i])
		}
		return t, nil
	}
	return Terminator{}, p.genericError(errors.MIR001, "unknown terminator keyword \""+kw+"\"")
}
