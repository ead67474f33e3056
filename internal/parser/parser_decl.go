package parser

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// parseItem dispatches on the current token to parse one top-level or
// module-level item, applying #[cfg]/#[cfg_attr] filtering before handing
// the attribute list to whichever concrete parse function matches.
func (p *Parser) parseItem() (ast.Item, *errors.Report) {
	start := p.cur.Span.Start
	attrs, rep := p.parseOuterAttrs()
	if rep != nil {
		return nil, rep
	}
	attrs = p.applyCfgAttr(attrs)
	if !p.shouldKeep(attrs) {
		p.skipOneItemBody()
		return &ast.NoneItem{P: start}, nil
	}

	vis, rep := p.parseVisibility()
	if rep != nil {
		return nil, rep
	}

	switch p.cur.Kind {
	case token.KW_STRUCT:
		return p.parseStructItem(attrs, vis, start)
	case token.KW_ENUM:
		return p.parseEnumItem(attrs, vis, start)
	case token.KW_UNION:
		return p.parseUnionItem(attrs, vis, start)
	case token.KW_TRAIT:
		return p.parseTraitItem(attrs, vis, start)
	case token.KW_IMPL:
		return p.parseImplItem(attrs, start)
	case token.KW_UNSAFE:
		if p.peekKind() == token.KW_IMPL {
			p.advance()
			return p.parseImplItem(attrs, start)
		}
		if p.peekKind() == token.KW_TRAIT {
			return p.parseTraitItem(attrs, vis, start)
		}
		return p.parseFuncItem(attrs, vis, start)
	case token.KW_FN:
		return p.parseFuncItem(attrs, vis, start)
	case token.KW_STATIC:
		return p.parseStaticItem(attrs, vis, start, ast.StaticStatic)
	case token.KW_CONST:
		if p.peekKind() == token.KW_FN {
			p.advance()
			return p.parseFuncItem(attrs, vis, start)
		}
		return p.parseStaticItem(attrs, vis, start, ast.StaticConst)
	case token.KW_TYPE:
		return p.parseTypeAliasItem(attrs, vis, start)
	case token.KW_USE:
		return p.parseUseItem(attrs, vis, start)
	case token.KW_MOD:
		return p.parseModItem(attrs, vis, start)
	case token.KW_EXTERN:
		if p.peekKind() == token.KW_CRATE {
			p.advance()
			p.advance()
			name, rep := p.expect(token.IDENT)
			if rep != nil {
				return nil, rep
			}
			if _, rep := p.expect(token.SEMI); rep != nil {
				return nil, rep
			}
			_ = name
			return &ast.CrateItem{Attrs: attrs, P: start}, nil
		}
		return p.parseExternBlockItem(attrs, start)
	}

	if p.at(token.IDENT) && p.cur.Literal == "macro_rules" && p.peekKind() == token.NOT {
		return p.parseMacroRulesItem(attrs, start)
	}
	if p.at(token.IDENT) && p.peekKind() == token.NOT {
		inv, rep := p.parseMacroInvocation()
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.SEMI); rep != nil {
			return nil, rep
		}
		return inv, nil
	}

	return nil, p.unexpected(token.KW_STRUCT, token.KW_ENUM, token.KW_FN, token.KW_IMPL)
}

// skipOneItemBody consumes tokens until the item cfg-filtered out is fully
// skipped: through a matching ';' at depth 0, or through a balanced '{...}'.
func (p *Parser) skipOneItemBody() {
	depth := 0
	for {
		switch p.cur.Kind {
		case token.EOF:
			return
		case token.LBRACE, token.LPAREN, token.LBRACKET:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACKET:
			depth--
		case token.SEMI:
			if depth == 0 {
				p.advance()
				return
			}
		}
		done := depth == 0 && (p.cur.Kind == token.RBRACE)
		p.advance()
		if done {
			return
		}
	}
}

// --- visibility ------------------------------------------------------------

func (p *Parser) parseVisibility() (ast.Visibility, *errors.Report) {
	if !p.accept(token.KW_PUB) {
		return ast.Visibility{Kind: ast.VisPrivate}, nil
	}
	start := p.cur.Span.Start
	if !p.accept(token.LPAREN) {
		return ast.Visibility{Kind: ast.VisPublic, P: start}, nil
	}
	switch {
	case p.at(token.KW_CRATE):
		p.advance()
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return ast.Visibility{}, rep
		}
		return ast.Visibility{Kind: ast.VisCrate, P: start}, nil
	case p.at(token.KW_SELF):
		p.advance()
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return ast.Visibility{}, rep
		}
		return ast.Visibility{Kind: ast.VisSelf, P: start}, nil
	case p.at(token.KW_SUPER):
		depth := 0
		for p.accept(token.KW_SUPER) {
			depth++
			p.accept(token.DCOLON)
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return ast.Visibility{}, rep
		}
		return ast.Visibility{Kind: ast.VisSuper, SuperDepth: depth, P: start}, nil
	case p.at(token.KW_IN):
		p.advance()
		path, rep := p.parsePath(false)
		if rep != nil {
			return ast.Visibility{}, rep
		}
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return ast.Visibility{}, rep
		}
		return ast.Visibility{Kind: ast.VisInPath, InPath: pathSegmentNames(path), P: start}, nil
	}
	return ast.Visibility{}, p.genericError(errors.PAR004, "malformed restricted visibility")
}

func pathSegmentNames(path ast.Path) []string {
	switch v := path.(type) {
	case *ast.PathLocal:
		return []string{v.Name}
	case *ast.PathRelative:
		names := make([]string, len(v.Nodes))
		for i, n := range v.Nodes {
			names[i] = n.Name
		}
		return names
	case *ast.PathAbsolute:
		names := make([]string, len(v.Nodes))
		for i, n := range v.Nodes {
			names[i] = n.Name
		}
		return names
	}
	return nil
}

// --- struct / enum / union -------------------------------------------------

func (p *Parser) parseStructItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'struct'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	item := &ast.StructItem{Attrs: attrs, Vis: vis, Name: name.Literal, Generics: generics, P: start}

	switch {
	case p.at(token.LPAREN):
		fields, rep := p.parseTupleStructFields()
		if rep != nil {
			return nil, rep
		}
		item.Kind = ast.StructTuple
		item.Fields = fields
		if _, rep := p.parseWhereClause(); rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.SEMI); rep != nil {
			return nil, rep
		}
	case p.accept(token.SEMI):
		item.Kind = ast.StructUnit
	default:
		if _, rep := p.parseWhereClause(); rep != nil {
			return nil, rep
		}
		fields, rep := p.parseNamedStructFields()
		if rep != nil {
			return nil, rep
		}
		item.Kind = ast.StructNamed
		item.Fields = fields
	}
	return item, nil
}

// parseTupleStructFields parses "(vis? Type, ...)" for a tuple struct or
// enum tuple variant. Restricted visibility syntax is disabled here per
// spec §4.2: "pub (Type,)" would otherwise be ambiguous with "pub(Type)".
func (p *Parser) parseTupleStructFields() ([]ast.StructField, *errors.Report) {
	p.advance() // '('
	var fields []ast.StructField
	for !p.at(token.RPAREN) {
		fStart := p.cur.Span.Start
		var fieldAttrs []*ast.Attribute
		var rep *errors.Report
		fieldAttrs, rep = p.parseOuterAttrs()
		if rep != nil {
			return nil, rep
		}
		vis := ast.Visibility{Kind: ast.VisPrivate}
		if p.accept(token.KW_PUB) {
			vis = ast.Visibility{Kind: ast.VisPublic}
			// Note: no "(...)" restricted form accepted here by design.
		}
		typ, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		fields = append(fields, ast.StructField{Attrs: fieldAttrs, Vis: vis, Type: typ, P: fStart})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	return fields, nil
}

func (p *Parser) parseNamedStructFields() ([]ast.StructField, *errors.Report) {
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	var fields []ast.StructField
	for !p.at(token.RBRACE) {
		fStart := p.cur.Span.Start
		fieldAttrs, rep := p.parseOuterAttrs()
		if rep != nil {
			return nil, rep
		}
		vis, rep := p.parseVisibility()
		if rep != nil {
			return nil, rep
		}
		name, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.COLON); rep != nil {
			return nil, rep
		}
		typ, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		fields = append(fields, ast.StructField{Attrs: fieldAttrs, Vis: vis, Name: name.Literal, Type: typ, P: fStart})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return fields, nil
}

func (p *Parser) parseEnumItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'enum'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.parseWhereClause(); rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	item := &ast.EnumItem{Attrs: attrs, Vis: vis, Name: name.Literal, Generics: generics, P: start}
	for !p.at(token.RBRACE) {
		vStart := p.cur.Span.Start
		variantAttrs, rep := p.parseOuterAttrs()
		if rep != nil {
			return nil, rep
		}
		vName, rep := p.expect(token.IDENT)
		if rep != nil {
			return nil, rep
		}
		variant := ast.EnumVariant{Attrs: variantAttrs, Name: vName.Literal, Kind: ast.StructUnit, P: vStart}
		switch {
		case p.at(token.LPAREN):
			fields, rep := p.parseTupleStructFields()
			if rep != nil {
				return nil, rep
			}
			variant.Kind = ast.StructTuple
			variant.Fields = fields
		case p.at(token.LBRACE):
			fields, rep := p.parseNamedStructFields()
			if rep != nil {
				return nil, rep
			}
			variant.Kind = ast.StructNamed
			variant.Fields = fields
		}
		if p.accept(token.EQ) {
			disc, rep := p.parseExpr()
			if rep != nil {
				return nil, rep
			}
			variant.Discriminant = disc
		}
		item.Variants = append(item.Variants, variant)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return item, nil
}

func (p *Parser) parseUnionItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'union'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.parseWhereClause(); rep != nil {
		return nil, rep
	}
	fields, rep := p.parseNamedStructFields()
	if rep != nil {
		return nil, rep
	}
	return &ast.UnionItem{Attrs: attrs, Vis: vis, Name: name.Literal, Generics: generics, Fields: fields, P: start}, nil
}

// --- trait / impl ------------------------------------------------------------

func (p *Parser) parseTraitItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	unsafe := p.accept(token.KW_UNSAFE)
	p.advance() // 'trait'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	item := &ast.TraitItem{Attrs: attrs, Vis: vis, Unsafe: unsafe, Name: name.Literal, Generics: generics, P: start}
	if p.accept(token.COLON) {
		bounds, rep := p.parseBoundSum("Self")
		if rep != nil {
			return nil, rep
		}
		for _, b := range bounds {
			if b.TraitPath != nil {
				item.Supertraits = append(item.Supertraits, b.TraitPath)
			}
		}
	}
	if _, rep := p.parseWhereClause(); rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	items, rep := p.parseAssocItemsUntil(token.RBRACE)
	if rep != nil {
		return nil, rep
	}
	item.Items = items
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return item, nil
}

func (p *Parser) parseImplItem(attrs []*ast.Attribute, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'impl'
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	negative := p.accept(token.NOT)
	first, rep := p.parseType()
	if rep != nil {
		return nil, rep
	}
	item := &ast.ImplItem{Attrs: attrs, Negative: negative, Generics: generics, P: start}
	if p.accept(token.KW_FOR) {
		if _, ok := first.(*ast.PathType); !ok {
			return nil, p.genericError(errors.PAR009, "impl \"for\" clause requires a plain path trait")
		}
		item.Trait = first
		target, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		item.Target = target
	} else {
		if negative {
			return nil, p.genericError(errors.PAR009, "negative impl requires a trait")
		}
		item.Target = first
	}
	var where []ast.Bound
	where, rep = p.parseWhereClause()
	if rep != nil {
		return nil, rep
	}
	item.Where = where

	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	items, rep := p.parseAssocItemsUntil(token.RBRACE)
	if rep != nil {
		return nil, rep
	}
	if negative && len(items) != 0 {
		return nil, p.genericError(errors.PAR010, "negative impl must have an empty body")
	}
	item.Items = items
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return item, nil
}

// parseAssocItemsUntil parses the restricted item set legal inside a trait
// or impl body: associated consts/statics, associated types, and methods.
func (p *Parser) parseAssocItemsUntil(stop token.Kind) ([]ast.Item, *errors.Report) {
	var items []ast.Item
	for !p.at(stop) && !p.at(token.EOF) {
		attrs, rep := p.parseOuterAttrs()
		if rep != nil {
			return nil, rep
		}
		vis, rep := p.parseVisibility()
		if rep != nil {
			return nil, rep
		}
		start := p.cur.Span.Start
		switch p.cur.Kind {
		case token.KW_TYPE:
			item, rep := p.parseAssocTypeItem(start)
			if rep != nil {
				return nil, rep
			}
			items = append(items, item)
		case token.KW_CONST:
			if p.peekKind() == token.KW_FN {
				p.advance()
				item, rep := p.parseFuncItem(attrs, vis, start)
				if rep != nil {
					return nil, rep
				}
				items = append(items, item)
				continue
			}
			item, rep := p.parseStaticItem(attrs, vis, start, ast.StaticConst)
			if rep != nil {
				return nil, rep
			}
			items = append(items, item)
		case token.KW_UNSAFE, token.KW_FN:
			item, rep := p.parseFuncItem(attrs, vis, start)
			if rep != nil {
				return nil, rep
			}
			items = append(items, item)
		default:
			return nil, p.unexpected(token.KW_FN, token.KW_TYPE, token.KW_CONST)
		}
	}
	return items, nil
}

func (p *Parser) parseAssocTypeItem(start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'type'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	item := &ast.AssocTypeItem{Name: name.Literal, P: start}
	if p.accept(token.COLON) {
		bounds, rep := p.parseBoundSum(name.Literal)
		if rep != nil {
			return nil, rep
		}
		item.Bounds = bounds
	}
	if p.accept(token.EQ) {
		target, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		if item.Bounds == nil {
			item.Target = target
		} else {
			item.Default = target
		}
	}
	if _, rep := p.expect(token.SEMI); rep != nil {
		return nil, rep
	}
	return item, nil
}

// --- fn / static / type alias / use / mod / extern -------------------------

func (p *Parser) parseFuncItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
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
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	item := &ast.FuncItem{Attrs: attrs, Vis: vis, Unsafe: unsafe, Extern: abi, Name: name.Literal, Generics: generics, P: start}

	if _, rep := p.expect(token.LPAREN); rep != nil {
		return nil, rep
	}
	first := true
	for !p.at(token.RPAREN) {
		if first {
			if selfKind, selfType, ok, rep := p.tryParseSelfParam(); rep != nil {
				return nil, rep
			} else if ok {
				item.SelfKind = selfKind
				item.SelfType = selfType
				first = false
				if !p.accept(token.COMMA) {
					break
				}
				continue
			}
		}
		first = false
		pStart := p.cur.Span.Start
		pat, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		var typ ast.Type
		if p.accept(token.COLON) {
			typ, rep = p.parseType()
			if rep != nil {
				return nil, rep
			}
		}
		item.Params = append(item.Params, &ast.Param{Pattern: pat, Type: typ, P: pStart})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	if p.accept(token.ARROW) {
		ret, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		item.Ret = ret
	}
	where, rep := p.parseWhereClause()
	if rep != nil {
		return nil, rep
	}
	item.Where = where

	if p.accept(token.SEMI) {
		return item, nil
	}
	body, rep := p.parseBlock()
	if rep != nil {
		return nil, rep
	}
	item.Body = body
	return item, nil
}

// tryParseSelfParam peeks through the optional "&", lifetime, and "mut"
// prefix at the start of a parameter list to decide whether this is a
// receiver parameter, per spec §4.2. It never consumes tokens on a "no"
// answer by looking ahead with the lexer's bounded lookahead before
// committing.
func (p *Parser) tryParseSelfParam() (ast.SelfKind, ast.Type, bool, *errors.Report) {
	switch {
	case p.at(token.KW_SELF):
		start := p.advance().Span.Start
		if p.accept(token.COLON) {
			t, rep := p.parseType()
			if rep != nil {
				return 0, nil, false, rep
			}
			return ast.SelfExplicitType, t, true, nil
		}
		return ast.SelfByValue, &ast.PathType{P_: &ast.PathLocal{Name: "Self", P: start}, P: start}, true, nil

	case p.at(token.KW_MUT) && p.peekKind() == token.KW_SELF:
		// "mut self" / "mut self: T" — by-value receiver, mutable binding.
		// Mutability here is a binding mode on the local, not part of the
		// receiver's type, so it classifies the same as bare "self".
		p.advance() // 'mut'
		start := p.advance().Span.Start // 'self'
		if p.accept(token.COLON) {
			t, rep := p.parseType()
			if rep != nil {
				return 0, nil, false, rep
			}
			return ast.SelfExplicitType, t, true, nil
		}
		return ast.SelfByValue, &ast.PathType{P_: &ast.PathLocal{Name: "Self", P: start}, P: start}, true, nil

	case p.at(token.AMP) && p.peekKind() == token.KW_SELF:
		start := p.advance().Span.Start
		p.advance() // 'self'
		selfType := &ast.PathType{P_: &ast.PathLocal{Name: "Self", P: start}, P: start}
		return ast.SelfByRef, &ast.BorrowType{Inner: selfType, P: start}, true, nil

	case p.at(token.AMP) && p.peekKind() == token.KW_MUT:
		// distinguish "&mut self" from "&mut T" (ordinary parameter type)
		if p.peek2Kind() != token.KW_SELF {
			return 0, nil, false, nil
		}
		start := p.advance().Span.Start
		p.advance() // 'mut'
		p.advance() // 'self'
		selfType := &ast.PathType{P_: &ast.PathLocal{Name: "Self", P: start}, P: start}
		return ast.SelfByRefMut, &ast.BorrowType{Mut: true, Inner: selfType, P: start}, true, nil

	case p.at(token.AMP) && p.peekKind() == token.LIFETIME:
		if !(p.peek2Kind() == token.KW_SELF || (p.peek2Kind() == token.KW_MUT && p.lex.Lookahead(2) == token.KW_SELF)) {
			return 0, nil, false, nil
		}
		start := p.advance().Span.Start
		lifetime := p.advance().Literal
		mut := p.accept(token.KW_MUT)
		if !p.at(token.KW_SELF) {
			return 0, nil, false, nil
		}
		p.advance()
		selfType := &ast.PathType{P_: &ast.PathLocal{Name: "Self", P: start}, P: start}
		kind := ast.SelfByRef
		if mut {
			kind = ast.SelfByRefMut
		}
		return kind, &ast.BorrowType{Lifetime: lifetime, Mut: mut, Inner: selfType, P: start}, true, nil
	}
	return 0, nil, false, nil
}

func (p *Parser) parseStaticItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos, kind ast.StaticKind) (ast.Item, *errors.Report) {
	p.advance() // 'static' or 'const'
	if kind == ast.StaticStatic && p.accept(token.KW_MUT) {
		kind = ast.StaticStaticMut
	}
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.COLON); rep != nil {
		return nil, rep
	}
	typ, rep := p.parseType()
	if rep != nil {
		return nil, rep
	}
	item := &ast.StaticItem{Attrs: attrs, Vis: vis, Kind: kind, Name: name.Literal, Type: typ, P: start}
	if p.accept(token.EQ) {
		val, rep := p.parseExpr()
		if rep != nil {
			return nil, rep
		}
		item.Value = val
	}
	if _, rep := p.expect(token.SEMI); rep != nil {
		return nil, rep
	}
	return item, nil
}

func (p *Parser) parseTypeAliasItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'type'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	generics, rep := p.parseGenericParams()
	if rep != nil {
		return nil, rep
	}
	item := &ast.TypeAliasItem{Attrs: attrs, Vis: vis, Name: name.Literal, Generics: generics, P: start}
	if p.accept(token.EQ) {
		target, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		item.Target = target
	}
	if _, rep := p.expect(token.SEMI); rep != nil {
		return nil, rep
	}
	return item, nil
}

func (p *Parser) parseUseItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'use'
	entries, rep := p.parseUseTree(nil)
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.SEMI); rep != nil {
		return nil, rep
	}
	return &ast.UseItem{Attrs: attrs, Vis: vis, Entries: entries, P: start}, nil
}

// parseUseTree recursively parses one "use" path, handling leading "::",
// "self"/"*"/nested-brace leaves, and "as" renaming, returning every leaf
// entry it resolves to with prefix prepended.
func (p *Parser) parseUseTree(prefix []ast.PathNode) ([]ast.UseEntry, *errors.Report) {
	var nodes []ast.PathNode
	start := p.cur.Span.Start
	absolute := false
	if len(prefix) == 0 && p.accept(token.DCOLON) {
		absolute = true
	}
	for {
		switch {
		case p.at(token.STAR):
			p.advance()
			return []ast.UseEntry{{
				PathP:  joinUsePath(absolute, append(append([]ast.PathNode{}, prefix...), nodes...)),
				IsGlob: true, P: start,
			}}, nil
		case p.at(token.LBRACE):
			p.advance()
			var out []ast.UseEntry
			full := append(append([]ast.PathNode{}, prefix...), nodes...)
			for !p.at(token.RBRACE) {
				sub, rep := p.parseUseTree(full)
				if rep != nil {
					return nil, rep
				}
				out = append(out, sub...)
				if !p.accept(token.COMMA) {
					break
				}
			}
			if _, rep := p.expect(token.RBRACE); rep != nil {
				return nil, rep
			}
			return out, nil
		case p.at(token.KW_SELF):
			p.advance()
			full := append(append([]ast.PathNode{}, prefix...), nodes...)
			local := "self"
			if len(full) > 0 {
				local = full[len(full)-1].Name
			}
			if p.accept(token.KW_AS) {
				n, rep := p.expect(token.IDENT)
				if rep != nil {
					return nil, rep
				}
				local = n.Literal
			}
			return []ast.UseEntry{{PathP: joinUsePath(absolute, full), LocalName: local, IsSelf: true, P: start}}, nil
		case p.at(token.IDENT) || p.at(token.KW_SUPER):
			seg := p.advance()
			nodes = append(nodes, ast.PathNode{Name: seg.Literal, P: seg.Span.Start})
			if p.accept(token.DCOLON) {
				continue
			}
			full := append(append([]ast.PathNode{}, prefix...), nodes...)
			local := seg.Literal
			if p.accept(token.KW_AS) {
				n, rep := p.expect(token.IDENT)
				if rep != nil {
					return nil, rep
				}
				local = n.Literal
			}
			return []ast.UseEntry{{PathP: joinUsePath(absolute, full), LocalName: local, P: start}}, nil
		default:
			return nil, p.unexpected(token.IDENT, token.STAR, token.LBRACE)
		}
	}
}

func joinUsePath(absolute bool, nodes []ast.PathNode) ast.Path {
	if absolute {
		return &ast.PathAbsolute{Nodes: nodes}
	}
	if len(nodes) == 1 {
		return &ast.PathLocal{Name: nodes[0].Name, P: nodes[0].P}
	}
	return &ast.PathRelative{Nodes: nodes}
}

func (p *Parser) parseModItem(attrs []*ast.Attribute, vis ast.Visibility, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'mod'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	item := &ast.ModuleItem{Attrs: attrs, Vis: vis, Name: name.Literal, P: start}

	if p.accept(token.SEMI) {
		pathAttr := findAttrString(attrs, "path")
		file, _, rep := p.loadOutOfLineModule(name.Literal, pathAttr)
		if rep != nil {
			return nil, rep
		}
		item.File = file
		return item, nil
	}

	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	innerAttrs, rep := p.parseInnerAttrs()
	if rep != nil {
		return nil, rep
	}
	items, rep := p.parseItemsUntil(token.RBRACE)
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	_ = innerAttrs
	item.Inline = items
	return item, nil
}

func findAttrString(attrs []*ast.Attribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			if s, ok := a.Payload.(ast.AttrString); ok {
				return string(s)
			}
		}
	}
	return ""
}

func (p *Parser) parseExternBlockItem(attrs []*ast.Attribute, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'extern'
	abi := "C"
	if p.at(token.STRING) {
		abi = p.advance().Literal
	}
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	var items []ast.Item
	for !p.at(token.RBRACE) {
		itemAttrs, rep := p.parseOuterAttrs()
		if rep != nil {
			return nil, rep
		}
		vis, rep := p.parseVisibility()
		if rep != nil {
			return nil, rep
		}
		itemStart := p.cur.Span.Start
		switch p.cur.Kind {
		case token.KW_FN:
			fn, rep := p.parseFuncItem(itemAttrs, vis, itemStart)
			if rep != nil {
				return nil, rep
			}
			items = append(items, fn)
		case token.KW_STATIC:
			st, rep := p.parseStaticItem(itemAttrs, vis, itemStart, ast.StaticStatic)
			if rep != nil {
				return nil, rep
			}
			items = append(items, st)
		default:
			return nil, p.unexpected(token.KW_FN, token.KW_STATIC)
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return &ast.ExternBlockItem{Attrs: attrs, ABI: abi, Items: items, P: start}, nil
}

func (p *Parser) parseMacroRulesItem(attrs []*ast.Attribute, start token.Pos) (ast.Item, *errors.Report) {
	p.advance() // 'macro_rules'
	p.advance() // '!'
	name, rep := p.expect(token.IDENT)
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	var raw []token.Token
	depth := 1
	for depth > 0 {
		if p.at(token.EOF) {
			return nil, p.genericError(errors.PAR002, "unterminated macro_rules! body")
		}
		switch p.cur.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				break
			}
		}
		if depth == 0 {
			break
		}
		raw = append(raw, p.advance())
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return &ast.MacroRulesItem{Attrs: attrs, Name: name.Literal, Raw: raw, P: start}, nil
}
