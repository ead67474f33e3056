package parser

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// parseType parses one type expression: paths (with optional generics),
// tuples, borrows, raw pointers, arrays, slices, trait objects, bare fn
// pointers, "_", and "!".
func (p *Parser) parseType() (ast.Type, *errors.Report) {
	start := p.cur.Span.Start

	switch p.cur.Kind {
	case token.UNDERSCORE:
		p.advance()
		return &ast.InferType{P: start}, nil

	case token.NOT:
		p.advance()
		return &ast.NeverType{P: start}, nil

	case token.LPAREN:
		p.advance()
		var elems []ast.Type
		for !p.at(token.RPAREN) {
			t, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			elems = append(elems, t)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return nil, rep
		}
		return &ast.TupleType{Elems: elems, P: start}, nil

	case token.LBRACKET:
		p.advance()
		elem, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		if p.accept(token.SEMI) {
			size, rep := p.parseExpr()
			if rep != nil {
				return nil, rep
			}
			if _, rep := p.expect(token.RBRACKET); rep != nil {
				return nil, rep
			}
			return &ast.ArrayType{Elem: elem, Size: size, P: start}, nil
		}
		if _, rep := p.expect(token.RBRACKET); rep != nil {
			return nil, rep
		}
		return &ast.SliceType{Elem: elem, P: start}, nil

	case token.AMP:
		p.advance()
		lifetime := ""
		if p.at(token.LIFETIME) {
			lifetime = p.advance().Literal
		}
		mut := p.accept(token.KW_MUT)
		inner, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		return &ast.BorrowType{Lifetime: lifetime, Mut: mut, Inner: inner, P: start}, nil

	case token.STAR:
		p.advance()
		mut := false
		switch {
		case p.accept(token.KW_MUT):
			mut = true
		case p.accept(token.KW_CONST):
			mut = false
		}
		inner, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		return &ast.PointerType{Mut: mut, Inner: inner, P: start}, nil

	case token.KW_DYN:
		p.advance()
		return p.parseTraitObjectBody(start)

	case token.KW_EXTERN, token.KW_UNSAFE, token.KW_FN:
		return p.parseFnType(start)
	}

	path, rep := p.parsePath(true)
	if rep != nil {
		return nil, rep
	}
	return &ast.PathType{P_: path, P: start}, nil
}

func (p *Parser) parseFnType(start token.Pos) (ast.Type, *errors.Report) {
	unsafe := p.accept(token.KW_UNSAFE)
	abi := ""
	if p.accept(token.KW_EXTERN) {
		if p.at(token.STRING) {
			abi = p.advance().Literal
		} else {
			abi = "C"
		}
	}
	if _, rep := p.expect(token.KW_FN); rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.LPAREN); rep != nil {
		return nil, rep
	}
	var params []ast.Type
	for !p.at(token.RPAREN) {
		t, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		params = append(params, t)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	var ret ast.Type
	if p.accept(token.ARROW) {
		r, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		ret = r
	}
	return &ast.FnType{Unsafe: unsafe, ABI: abi, Params: params, Ret: ret, P: start}, nil
}

// parseTraitObjectBody parses the "Trait + Marker + 'a" body following a
// consumed "dyn" keyword.
func (p *Parser) parseTraitObjectBody(start token.Pos) (ast.Type, *errors.Report) {
	obj := &ast.TraitObjectType{P: start}
	first := true
	for {
		if p.at(token.LIFETIME) {
			obj.Lifetime = p.advance().Literal
		} else {
			t, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			if first {
				obj.Trait = t
			} else {
				obj.Markers = append(obj.Markers, t)
			}
		}
		first = false
		if !p.accept(token.PLUS) {
			break
		}
	}
	return obj, nil
}

// parseGenericParams parses "<'a, 'b, T, U: Bound = Default, ...>", folding
// inline bounds into the unordered Bounds set. Returns nil if no "<" is
// present.
func (p *Parser) parseGenericParams() (*ast.GenericParams, *errors.Report) {
	if !p.at(token.LT) {
		return nil, nil
	}
	start := p.cur.Span.Start
	p.advance()
	gp := &ast.GenericParams{P: start}
	for !p.at(token.GT) {
		if _, rep := p.parseOuterAttrs(); rep != nil {
			return nil, rep
		}
		switch {
		case p.at(token.LIFETIME):
			lt := p.advance()
			gp.Lifetimes = append(gp.Lifetimes, ast.LifetimeParam{Name: lt.Literal, P: lt.Span.Start})
			if p.accept(token.COLON) {
				for {
					other, rep := p.expect(token.LIFETIME)
					if rep != nil {
						return nil, rep
					}
					gp.Bounds = append(gp.Bounds, ast.Bound{
						Kind: ast.BoundLifetimeOutlives, Subject: lt.Literal,
						Lifetime: other.Literal, P: lt.Span.Start,
					})
					if !p.accept(token.PLUS) {
						break
					}
				}
			}
		case p.at(token.IDENT):
			name := p.advance()
			tp := ast.TypeParam{Name: name.Literal, P: name.Span.Start}
			if p.accept(token.COLON) {
				bounds, rep := p.parseBoundSum(name.Literal)
				if rep != nil {
					return nil, rep
				}
				gp.Bounds = append(gp.Bounds, bounds...)
			}
			if p.accept(token.EQ) {
				def, rep := p.parseType()
				if rep != nil {
					return nil, rep
				}
				tp.Default = def
			}
			gp.Types = append(gp.Types, tp)
		default:
			return nil, p.genericError(errors.PAR005, "malformed generic parameter list")
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.GT); rep != nil {
		return nil, rep
	}
	return gp, nil
}

// parseBoundSum parses "Trait1 + for<'a> Trait2 + 'lifetime + !Sized" after
// a consumed ':' on subject (a type-parameter name or "Self").
func (p *Parser) parseBoundSum(subject string) ([]ast.Bound, *errors.Report) {
	var bounds []ast.Bound
	for {
		start := p.cur.Span.Start
		var hrb []string
		if p.accept(token.KW_FOR) {
			var rep *errors.Report
			hrb, rep = p.parseHRBLifetimes()
			if rep != nil {
				return nil, rep
			}
		}
		if p.at(token.LIFETIME) {
			lt := p.advance()
			bounds = append(bounds, ast.Bound{
				Kind: ast.BoundTypeOutlives, Subject: subject, Lifetime: lt.Literal, P: start,
			})
		} else {
			negative := p.accept(token.NOT)
			t, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			kind := ast.BoundTypeTrait
			if negative {
				kind = ast.BoundTypeNotTrait
			}
			bounds = append(bounds, ast.Bound{
				Kind: kind, Subject: subject, TraitPath: t, HRBs: hrb, P: start,
			})
		}
		if !p.accept(token.PLUS) {
			break
		}
	}
	return bounds, nil
}

// parseHRBLifetimes parses "<'a, 'b>" after a consumed "for".
func (p *Parser) parseHRBLifetimes() ([]string, *errors.Report) {
	if _, rep := p.expect(token.LT); rep != nil {
		return nil, rep
	}
	var out []string
	for !p.at(token.GT) {
		lt, rep := p.expect(token.LIFETIME)
		if rep != nil {
			return nil, rep
		}
		out = append(out, lt.Literal)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.GT); rep != nil {
		return nil, rep
	}
	return out, nil
}

// parseWhereClause parses a trailing "where a: b, c = d, ..." list, folding
// its entries into the same unordered bound representation parseBoundSum
// produces. Returns nil if no "where" keyword is present.
func (p *Parser) parseWhereClause() ([]ast.Bound, *errors.Report) {
	if !p.accept(token.KW_WHERE) {
		return nil, nil
	}
	var out []ast.Bound
	for !p.at(token.LBRACE) && !p.at(token.SEMI) {
		start := p.cur.Span.Start
		if p.at(token.LIFETIME) {
			lt := p.advance()
			if _, rep := p.expect(token.COLON); rep != nil {
				return nil, rep
			}
			other, rep := p.expect(token.LIFETIME)
			if rep != nil {
				return nil, rep
			}
			out = append(out, ast.Bound{
				Kind: ast.BoundLifetimeOutlives, Subject: lt.Literal,
				Lifetime: other.Literal, P: start,
			})
			if !p.accept(token.COMMA) {
				break
			}
			continue
		}
		subjectType, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		subject := subjectType.String()
		if p.accept(token.EQ) {
			target, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			out = append(out, ast.Bound{Kind: ast.BoundTypeEq, Subject: subject, EqualsType: target, P: start})
		} else {
			if _, rep := p.expect(token.COLON); rep != nil {
				return nil, rep
			}
			bounds, rep := p.parseBoundSum(subject)
			if rep != nil {
				return nil, rep
			}
			out = append(out, bounds...)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out, nil
}
