package parser

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// parsePattern parses one pattern, covering every form in spec §3/§4.5:
// wildcard, bind (with ref/mut/box), tuple, tuple-struct, struct, slice,
// split-slice, value/range, and unexpanded macro invocations.
func (p *Parser) parsePattern() (ast.Pattern, *errors.Report) {
	start := p.cur.Span.Start

	switch p.cur.Kind {
	case token.UNDERSCORE:
		p.advance()
		return &ast.AnyPattern{P: start}, nil

	case token.AMP:
		p.advance()
		mut := p.accept(token.KW_MUT)
		inner, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		return &ast.RefPattern{Mut: mut, Inner: inner, P: start}, nil

	case token.KW_BOX:
		p.advance()
		inner, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		return &ast.BoxPattern{Inner: inner, P: start}, nil

	case token.KW_REF, token.KW_MUT:
		ref := p.accept(token.KW_REF)
		mut := p.accept(token.KW_MUT)
		name, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		return &ast.BindPattern{Name: name.Literal, Mut: mut, Ref: ref, P: start}, nil

	case token.LPAREN:
		return p.parseTuplePattern()

	case token.LBRACKET:
		return p.parseSlicePattern()

	case token.INT, token.FLOAT, token.STRING, token.BYTE_STRING, token.CHAR,
		token.KW_TRUE, token.KW_FALSE, token.MINUS:
		return p.parseValuePattern()
	}

	if p.at(token.IDENT) && p.peekKind() == token.NOT {
		inv, rep := p.parseMacroInvocation()
		if rep != nil {
			return nil, rep
		}
		return &ast.MacroPattern{Invocation: inv, P: start}, nil
	}

	// Bare identifier, path, tuple-struct pattern, or struct pattern: all
	// begin with a path.
	if p.at(token.IDENT) || p.at(token.DCOLON) || p.at(token.KW_SELF) ||
		p.at(token.KW_SELF_TYPE) || p.at(token.KW_SUPER) || p.at(token.KW_CRATE) {
		pathStart := p.cur.Span.Start
		path, rep := p.parsePath(false)
		if rep != nil {
			return nil, rep
		}
		switch {
		case p.at(token.LPAREN):
			tuple, rep := p.parseTuplePattern()
			if rep != nil {
				return nil, rep
			}
			return &ast.StructTuplePattern{PathP: path, Tuple: tuple.(*ast.TuplePattern), P: pathStart}, nil
		case p.at(token.LBRACE):
			return p.parseStructPattern(path, pathStart)
		}
		if local, ok := path.(*ast.PathLocal); ok {
			return &ast.MaybeBindPattern{Name: local.Name, P: pathStart}, nil
		}
		return &ast.ValuePattern{Start: &ast.PathExpr{PathP: path, P: pathStart}, P: pathStart}, nil
	}

	return nil, p.unexpected(token.IDENT, token.UNDERSCORE, token.LPAREN, token.LBRACKET)
}

func (p *Parser) parseTuplePattern() (ast.Pattern, *errors.Report) {
	start := p.cur.Span.Start
	if _, rep := p.expect(token.LPAREN); rep != nil {
		return nil, rep
	}
	tp := &ast.TuplePattern{P: start}
	seenRest := false
	for !p.at(token.RPAREN) {
		if p.accept(token.DOTDOT) {
			tp.HasRest = true
			seenRest = true
			if !p.accept(token.COMMA) {
				break
			}
			continue
		}
		sub, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		if seenRest {
			tp.Trailing = append(tp.Trailing, sub)
		} else {
			tp.Leading = append(tp.Leading, sub)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	return tp, nil
}

func (p *Parser) parseSlicePattern() (ast.Pattern, *errors.Report) {
	start := p.cur.Span.Start
	if _, rep := p.expect(token.LBRACKET); rep != nil {
		return nil, rep
	}
	var leading, trailing []ast.Pattern
	restBind := ""
	sawRest := false
	for !p.at(token.RBRACKET) {
		if p.at(token.DOTDOT) {
			p.advance()
			sawRest = true
			if !p.accept(token.COMMA) {
				break
			}
			continue
		}
		sub, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		if sawRest {
			trailing = append(trailing, sub)
		} else {
			leading = append(leading, sub)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RBRACKET); rep != nil {
		return nil, rep
	}
	if !sawRest {
		return &ast.SlicePattern{Elems: leading, P: start}, nil
	}
	return &ast.SplitSlicePattern{Leading: leading, RestBind: restBind, Trailing: trailing, P: start}, nil
}

func (p *Parser) parseStructPattern(path ast.Path, start token.Pos) (ast.Pattern, *errors.Report) {
	p.advance() // '{'
	sp := &ast.StructPattern{PathP: path, Exhaustive: true, P: start}
	for !p.at(token.RBRACE) {
		if p.accept(token.DOTDOT) {
			sp.Exhaustive = false
			break
		}
		fieldStart := p.cur.Span.Start
		name, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		var fp ast.Pattern
		if p.accept(token.COLON) {
			fp, rep = p.parsePattern()
			if rep != nil {
				return nil, rep
			}
		} else {
			fp = &ast.BindPattern{Name: name.Literal, P: fieldStart}
		}
		sp.Fields = append(sp.Fields, ast.FieldPattern{Name: name.Literal, Pattern: fp, P: fieldStart})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return sp, nil
}

func (p *Parser) parseValuePattern() (ast.Pattern, *errors.Report) {
	start := p.cur.Span.Start
	lo, rep := p.parseUnaryExpr()
	if rep != nil {
		return nil, rep
	}
	if p.accept(token.DOTDOTEQ) {
		hi, rep := p.parseUnaryExpr()
		if rep != nil {
			return nil, rep
		}
		return &ast.ValuePattern{Start: lo, End: hi, P: start}, nil
	}
	return &ast.ValuePattern{Start: lo, P: start}, nil
}
