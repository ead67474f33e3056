package parser

import (
	"github.com/corvid-lang/corvidc/internal/ast"
	"github.com/corvid-lang/corvidc/internal/errors"
	"github.com/corvid-lang/corvidc/internal/token"
)

// parseExpr is the entry point for expression parsing: precedence climbing
// over binary operators, sitting above cast ("as") and unary/postfix forms.
func (p *Parser) parseExpr() (ast.Expr, *errors.Report) {
	return p.parseBinaryExpr(0)
}

var precTable = map[token.Kind]int{
	token.PIPEPIPE: 1,
	token.AMPAMP:   2,
	token.EQEQ:     3, token.NE: 3, token.LT: 3, token.LE: 3, token.GT: 3, token.GE: 3,
	token.AMP:   4,
	token.CARET: 5,
	token.PIPE:  6,
	token.PLUS:  7, token.MINUS: 7,
	token.STAR: 8, token.SLASH: 8, token.PERCENT: 8,
}

func (p *Parser) parseBinaryExpr(minPrec int) (ast.Expr, *errors.Report) {
	left, rep := p.parseCastExpr()
	if rep != nil {
		return nil, rep
	}
	for {
		prec, ok := precTable[p.cur.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.advance()
		right, rep := p.parseBinaryExpr(prec + 1)
		if rep != nil {
			return nil, rep
		}
		left = &ast.BinaryExpr{Op: opTok.Kind.String(), Left: left, Right: right, P: left.Pos()}
	}
}

func (p *Parser) parseCastExpr() (ast.Expr, *errors.Report) {
	e, rep := p.parseUnaryExpr()
	if rep != nil {
		return nil, rep
	}
	for p.accept(token.KW_AS) {
		t, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		e = &ast.CastExpr{Inner: e, Type: t, P: e.Pos()}
	}
	return e, nil
}

func (p *Parser) parseUnaryExpr() (ast.Expr, *errors.Report) {
	start := p.cur.Span.Start
	switch p.cur.Kind {
	case token.AMP:
		p.advance()
		mut := p.accept(token.KW_MUT)
		inner, rep := p.parseUnaryExpr()
		if rep != nil {
			return nil, rep
		}
		return &ast.BorrowExpr{Mut: mut, Inner: inner, P: start}, nil
	case token.STAR:
		p.advance()
		inner, rep := p.parseUnaryExpr()
		if rep != nil {
			return nil, rep
		}
		return &ast.DerefExpr{Inner: inner, P: start}, nil
	case token.MINUS:
		p.advance()
		inner, rep := p.parseUnaryExpr()
		if rep != nil {
			return nil, rep
		}
		if lit, ok := inner.(*ast.Literal); ok && (lit.Kind == ast.LitInt || lit.Kind == ast.LitFloat) {
			lit.Negative = true
			return lit, nil
		}
		return &ast.UnaryExpr{Op: "-", Expr: inner, P: start}, nil
	case token.NOT:
		p.advance()
		inner, rep := p.parseUnaryExpr()
		if rep != nil {
			return nil, rep
		}
		return &ast.UnaryExpr{Op: "!", Expr: inner, P: start}, nil
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() (ast.Expr, *errors.Report) {
	base, rep := p.parsePrimaryExpr()
	if rep != nil {
		return nil, rep
	}
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			if p.at(token.INT) {
				idxTok := p.advance()
				base = &ast.TupleIndexExpr{Receiver: base, Index: int(idxTok.IntLo), P: base.Pos()}
				continue
			}
			name, rep := p.identLike()
			if rep != nil {
				return nil, rep
			}
			var params *ast.PathParams
			if p.at(token.DCOLON) && p.peekKind() == token.LT {
				p.advance()
				params, rep = p.parsePathParams()
				if rep != nil {
					return nil, rep
				}
			}
			if p.at(token.LPAREN) {
				args, rep := p.parseCallArgs()
				if rep != nil {
					return nil, rep
				}
				base = &ast.MethodCallExpr{Receiver: base, Method: name, Params: params, Args: args, P: base.Pos()}
				continue
			}
			base = &ast.FieldAccessExpr{Receiver: base, Field: name, P: base.Pos()}
		case token.LPAREN:
			args, rep := p.parseCallArgs()
			if rep != nil {
				return nil, rep
			}
			base = &ast.CallExpr{Func: base, Args: args, P: base.Pos()}
		case token.LBRACKET:
			p.advance()
			saved := p.allowStructLit
			p.allowStructLit = true
			idx, rep := p.parseExpr()
			p.allowStructLit = saved
			if rep != nil {
				return nil, rep
			}
			if _, rep := p.expect(token.RBRACKET); rep != nil {
				return nil, rep
			}
			base = &ast.IndexExpr{Receiver: base, Index: idx, P: base.Pos()}
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, *errors.Report) {
	if _, rep := p.expect(token.LPAREN); rep != nil {
		return nil, rep
	}
	saved := p.allowStructLit
	p.allowStructLit = true
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		a, rep := p.parseExpr()
		if rep != nil {
			p.allowStructLit = saved
			return nil, rep
		}
		args = append(args, a)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.allowStructLit = saved
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	return args, nil
}

func (p *Parser) parsePrimaryExpr() (ast.Expr, *errors.Report) {
	start := p.cur.Span.Start

	switch p.cur.Kind {
	case token.KW_IF:
		return p.parseIfExpr()
	case token.KW_MATCH:
		return p.parseMatchExpr()
	case token.KW_WHILE:
		return p.parseWhileExpr()
	case token.KW_LOOP:
		return p.parseLoopExpr()
	case token.KW_FOR:
		return p.parseForExpr()
	case token.KW_UNSAFE:
		p.advance()
		return p.parseBlock()
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_LET:
		return p.parseLetExpr()
	case token.KW_BREAK:
		p.advance()
		var val ast.Expr
		if p.exprFollows() {
			v, rep := p.parseExpr()
			if rep != nil {
				return nil, rep
			}
			val = v
		}
		return &ast.BreakExpr{Value: val, P: start}, nil
	case token.KW_CONTINUE:
		p.advance()
		return &ast.ContinueExpr{P: start}, nil
	case token.KW_RETURN:
		p.advance()
		var val ast.Expr
		if p.exprFollows() {
			v, rep := p.parseExpr()
			if rep != nil {
				return nil, rep
			}
			val = v
		}
		return &ast.ReturnExpr{Value: val, P: start}, nil
	case token.PIPE, token.PIPEPIPE, token.KW_MOVE:
		return p.parseClosure()
	case token.LPAREN:
		return p.parseTupleOrGroupExpr()
	case token.LBRACKET:
		return p.parseArrayExpr()
	case token.INT:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitInt, Raw: tok.Literal, IntHi: tok.IntHi, IntLo: tok.IntLo, NumSuffix: tok.NumSuffix, P: start}, nil
	case token.FLOAT:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitFloat, Raw: tok.Literal, NumSuffix: tok.NumSuffix, P: start}, nil
	case token.STRING:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitString, Raw: tok.Literal, P: start}, nil
	case token.BYTE_STRING:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitByteString, Raw: tok.Literal, P: start}, nil
	case token.CHAR:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitChar, Raw: tok.Literal, P: start}, nil
	case token.KW_TRUE, token.KW_FALSE:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitBool, Raw: tok.Literal, P: start}, nil
	}

	if p.at(token.IDENT) && p.peekKind() == token.NOT {
		return p.parseMacroInvocation()
	}

	if p.isPathStart() {
		path, rep := p.parsePath(false)
		if rep != nil {
			return nil, rep
		}
		if p.at(token.LBRACE) && p.allowStructLit {
			return p.parseStructLit(path, start)
		}
		return &ast.PathExpr{PathP: path, P: start}, nil
	}

	return nil, p.unexpected(token.IDENT)
}

// exprFollows reports whether the current token could begin an expression,
// used to decide whether "break"/"return" carry a trailing value.
func (p *Parser) exprFollows() bool {
	switch p.cur.Kind {
	case token.SEMI, token.RBRACE, token.RPAREN, token.RBRACKET, token.COMMA, token.EOF:
		return false
	}
	return true
}

func (p *Parser) parseTupleOrGroupExpr() (ast.Expr, *errors.Report) {
	start := p.cur.Span.Start
	p.advance()
	if p.accept(token.RPAREN) {
		return &ast.Literal{Kind: ast.LitUnit, Raw: "()", P: start}, nil
	}
	saved := p.allowStructLit
	p.allowStructLit = true
	first, rep := p.parseExpr()
	if rep != nil {
		p.allowStructLit = saved
		return nil, rep
	}
	if p.at(token.COMMA) {
		elems := []ast.Expr{first}
		for p.accept(token.COMMA) {
			if p.at(token.RPAREN) {
				break
			}
			e, rep := p.parseExpr()
			if rep != nil {
				p.allowStructLit = saved
				return nil, rep
			}
			elems = append(elems, e)
		}
		p.allowStructLit = saved
		if _, rep := p.expect(token.RPAREN); rep != nil {
			return nil, rep
		}
		return &ast.TupleExpr{Elems: elems, P: start}, nil
	}
	p.allowStructLit = saved
	if _, rep := p.expect(token.RPAREN); rep != nil {
		return nil, rep
	}
	return first, nil
}

func (p *Parser) parseArrayExpr() (ast.Expr, *errors.Report) {
	start := p.cur.Span.Start
	p.advance()
	saved := p.allowStructLit
	p.allowStructLit = true
	defer func() { p.allowStructLit = saved }()
	if p.accept(token.RBRACKET) {
		return &ast.ArrayExpr{P: start}, nil
	}
	first, rep := p.parseExpr()
	if rep != nil {
		return nil, rep
	}
	if p.accept(token.SEMI) {
		count, rep := p.parseExpr()
		if rep != nil {
			return nil, rep
		}
		if _, rep := p.expect(token.RBRACKET); rep != nil {
			return nil, rep
		}
		return &ast.ArrayExpr{Elems: []ast.Expr{first}, Repeat: count, P: start}, nil
	}
	elems := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.at(token.RBRACKET) {
			break
		}
		e, rep := p.parseExpr()
		if rep != nil {
			return nil, rep
		}
		elems = append(elems, e)
	}
	if _, rep := p.expect(token.RBRACKET); rep != nil {
		return nil, rep
	}
	return &ast.ArrayExpr{Elems: elems, P: start}, nil
}

func (p *Parser) parseStructLit(path ast.Path, start token.Pos) (ast.Expr, *errors.Report) {
	p.advance() // '{'
	lit := &ast.StructLitExpr{PathP: path, P: start}
	for !p.at(token.RBRACE) {
		if p.accept(token.DOTDOT) {
			spread, rep := p.parseExpr()
			if rep != nil {
				return nil, rep
			}
			lit.Spread = spread
			break
		}
		name, rep := p.identLike()
		if rep != nil {
			return nil, rep
		}
		var val ast.Expr
		if p.accept(token.COLON) {
			val, rep = p.parseExpr()
			if rep != nil {
				return nil, rep
			}
		}
		lit.Fields = append(lit.Fields, ast.StructLitField{Name: name, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return lit, nil
}

func (p *Parser) parseLetExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
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
	var val ast.Expr
	if p.accept(token.EQ) {
		val, rep = p.parseExpr()
		if rep != nil {
			return nil, rep
		}
	}
	return &ast.LetExpr{Pattern: pat, Type: typ, Value: val, P: start}, nil
}

func (p *Parser) parseCondExpr() (ast.Expr, *errors.Report) {
	saved := p.allowStructLit
	p.allowStructLit = false
	e, rep := p.parseExpr()
	p.allowStructLit = saved
	return e, rep
}

func (p *Parser) parseIfExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
	cond, rep := p.parseCondExpr()
	if rep != nil {
		return nil, rep
	}
	then, rep := p.parseBlock()
	if rep != nil {
		return nil, rep
	}
	ie := &ast.IfExpr{Cond: cond, Then: then, P: start}
	if p.accept(token.KW_ELSE) {
		if p.at(token.KW_IF) {
			elseExpr, rep := p.parseIfExpr()
			if rep != nil {
				return nil, rep
			}
			ie.Else = elseExpr
		} else {
			elseBlock, rep := p.parseBlock()
			if rep != nil {
				return nil, rep
			}
			ie.Else = elseBlock
		}
	}
	return ie, nil
}

func (p *Parser) parseMatchExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
	scrutinee, rep := p.parseCondExpr()
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	me := &ast.MatchExpr{Scrutinee: scrutinee, P: start}
	for !p.at(token.RBRACE) {
		pat, rep := p.parsePattern()
		if rep != nil {
			return nil, rep
		}
		for p.accept(token.PIPE) {
			// Additional alternatives in an or-pattern collapse onto the
			// same arm; only the first is retained as the representative
			// pattern since match-arm alternatives aren't separately
			// modeled in the surface AST.
			if _, rep := p.parsePattern(); rep != nil {
				return nil, rep
			}
		}
		var guard ast.Expr
		if p.accept(token.KW_IF) {
			guard, rep = p.parseExpr()
			if rep != nil {
				return nil, rep
			}
		}
		if _, rep := p.expect(token.FARROW); rep != nil {
			return nil, rep
		}
		body, rep := p.parseExpr()
		if rep != nil {
			return nil, rep
		}
		me.Arms = append(me.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if !p.accept(token.COMMA) {
			if !p.at(token.RBRACE) {
				continue
			}
		}
	}
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	return me, nil
}

func (p *Parser) parseWhileExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
	cond, rep := p.parseCondExpr()
	if rep != nil {
		return nil, rep
	}
	body, rep := p.parseBlock()
	if rep != nil {
		return nil, rep
	}
	return &ast.WhileExpr{Cond: cond, Body: body, P: start}, nil
}

func (p *Parser) parseLoopExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
	body, rep := p.parseBlock()
	if rep != nil {
		return nil, rep
	}
	return &ast.LoopExpr{Body: body, P: start}, nil
}

func (p *Parser) parseForExpr() (ast.Expr, *errors.Report) {
	start := p.advance().Span.Start
	pat, rep := p.parsePattern()
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.KW_IN); rep != nil {
		return nil, rep
	}
	iter, rep := p.parseCondExpr()
	if rep != nil {
		return nil, rep
	}
	body, rep := p.parseBlock()
	if rep != nil {
		return nil, rep
	}
	return &ast.ForExpr{Pattern: pat, Iter: iter, Body: body, P: start}, nil
}

func (p *Parser) parseClosure() (ast.Expr, *errors.Report) {
	start := p.cur.Span.Start
	move := p.accept(token.KW_MOVE)
	var params []*ast.Param
	if p.accept(token.PIPEPIPE) {
		// no parameters
	} else {
		if _, rep := p.expect(token.PIPE); rep != nil {
			return nil, rep
		}
		for !p.at(token.PIPE) {
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
			params = append(params, &ast.Param{Pattern: pat, Type: typ, P: pStart})
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, rep := p.expect(token.PIPE); rep != nil {
			return nil, rep
		}
	}
	var ret ast.Type
	if p.accept(token.ARROW) {
		t, rep := p.parseType()
		if rep != nil {
			return nil, rep
		}
		ret = t
	}
	body, rep := p.parseExpr()
	if rep != nil {
		return nil, rep
	}
	return &ast.ClosureExpr{Move: move, Params: params, Ret: ret, Body: body, P: start}, nil
}

// parseMacroInvocation captures a macro call's delimited token tree
// verbatim; expansion is a separate pass (spec §4.2, §4.6).
func (p *Parser) parseMacroInvocation() (*ast.MacroInvocation, *errors.Report) {
	start := p.cur.Span.Start
	path, rep := p.parsePath(false)
	if rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.NOT); rep != nil {
		return nil, rep
	}
	open, close := token.LPAREN, token.RPAREN
	switch p.cur.Kind {
	case token.LBRACKET:
		open, close = token.LBRACKET, token.RBRACKET
	case token.LBRACE:
		open, close = token.LBRACE, token.RBRACE
	}
	if _, rep := p.expect(open); rep != nil {
		return nil, rep
	}
	var raw []token.Token
	depth := 1
	for depth > 0 {
		if p.at(token.EOF) {
			return nil, p.genericError(errors.PAR002, "unterminated macro invocation")
		}
		switch p.cur.Kind {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
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
	if _, rep := p.expect(close); rep != nil {
		return nil, rep
	}
	return &ast.MacroInvocation{PathP: path, Raw: raw, P: start}, nil
}

func (p *Parser) isPathStart() bool {
	switch p.cur.Kind {
	case token.IDENT, token.DCOLON, token.KW_SELF, token.KW_SELF_TYPE, token.KW_SUPER, token.KW_CRATE, token.LT:
		return true
	}
	return false
}

// --- paths -------------------------------------------------------------

// parsePath parses one path in either expression/pattern position
// (typePosition=false, so "<" after a segment is an operator, and generics
// require the "::<...>" turbofish) or type position (typePosition=true, so
// bare "<...>" attaches generics directly).
func (p *Parser) parsePath(typePosition bool) (ast.Path, *errors.Report) {
	start := p.cur.Span.Start

	switch {
	case p.at(token.LT):
		return p.parseUFCSPath(start)

	case p.at(token.DCOLON):
		p.advance()
		nodes, rep := p.parsePathNodes(typePosition)
		if rep != nil {
			return nil, rep
		}
		return &ast.PathAbsolute{Nodes: nodes, P: start}, nil

	case p.at(token.KW_CRATE):
		p.advance()
		p.accept(token.DCOLON)
		nodes, rep := p.parsePathNodes(typePosition)
		if rep != nil {
			return nil, rep
		}
		return &ast.PathAbsolute{Nodes: nodes, P: start}, nil

	case p.at(token.KW_SUPER):
		depth := 0
		for p.accept(token.KW_SUPER) {
			depth++
			p.accept(token.DCOLON)
		}
		nodes, rep := p.parsePathNodes(typePosition)
		if rep != nil {
			return nil, rep
		}
		return &ast.PathSuper{Depth: depth, Nodes: nodes, P: start}, nil

	case p.at(token.KW_SELF):
		p.advance()
		if !p.accept(token.DCOLON) {
			return &ast.PathSelf{P: start}, nil
		}
		nodes, rep := p.parsePathNodes(typePosition)
		if rep != nil {
			return nil, rep
		}
		return &ast.PathRelative{Nodes: nodes, P: start}, nil
	}

	nodes, rep := p.parsePathNodes(typePosition)
	if rep != nil {
		return nil, rep
	}
	if len(nodes) == 1 && nodes[0].Params == nil {
		return &ast.PathLocal{Name: nodes[0].Name, P: start}, nil
	}
	return &ast.PathRelative{Nodes: nodes, P: start}, nil
}

func (p *Parser) parsePathNodes(typePosition bool) ([]ast.PathNode, *errors.Report) {
	var nodes []ast.PathNode
	for {
		segStart := p.cur.Span.Start
		var name string
		switch p.cur.Kind {
		case token.IDENT:
			name = p.advance().Literal
		case token.KW_SELF_TYPE:
			name = p.advance().Literal
		default:
			return nil, p.unexpected(token.IDENT)
		}
		node := ast.PathNode{Name: name, P: segStart}
		switch {
		case p.at(token.DCOLON) && p.peekKind() == token.LT:
			p.advance()
			params, rep := p.parsePathParams()
			if rep != nil {
				return nil, rep
			}
			node.Params = params
		case typePosition && p.at(token.LT):
			params, rep := p.parsePathParams()
			if rep != nil {
				return nil, rep
			}
			node.Params = params
		}
		nodes = append(nodes, node)
		if !p.at(token.DCOLON) {
			break
		}
		p.advance()
	}
	return nodes, nil
}

func (p *Parser) parsePathParams() (*ast.PathParams, *errors.Report) {
	start := p.cur.Span.Start
	if _, rep := p.expect(token.LT); rep != nil {
		return nil, rep
	}
	params := &ast.PathParams{P: start}
	for !p.at(token.GT) {
		switch {
		case p.at(token.LIFETIME):
			params.Lifetimes = append(params.Lifetimes, p.advance().Literal)
		case p.at(token.IDENT) && p.peekKind() == token.EQ:
			name := p.advance().Literal
			p.advance() // '='
			t, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			params.Bindings = append(params.Bindings, ast.AssocBinding{Name: name, Type: t})
		default:
			t, rep := p.parseType()
			if rep != nil {
				return nil, rep
			}
			params.Types = append(params.Types, t)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, rep := p.expect(token.GT); rep != nil {
		return nil, rep
	}
	return params, nil
}

func (p *Parser) parseUFCSPath(start token.Pos) (ast.Path, *errors.Report) {
	p.advance() // '<'
	typ, rep := p.parseType()
	if rep != nil {
		return nil, rep
	}
	var trait ast.Type
	if p.accept(token.KW_AS) {
		trait, rep = p.parseType()
		if rep != nil {
			return nil, rep
		}
	}
	if _, rep := p.expect(token.GT); rep != nil {
		return nil, rep
	}
	if _, rep := p.expect(token.DCOLON); rep != nil {
		return nil, rep
	}
	nodes, rep := p.parsePathNodes(false)
	if rep != nil {
		return nil, rep
	}
	return &ast.PathUFCS{Type: typ, Trait: trait, Nodes: nodes, P: start}, nil
}

// --- blocks --------------------------------------------------------------

func (p *Parser) parseBlock() (*ast.BlockExpr, *errors.Report) {
	start := p.cur.Span.Start
	if _, rep := p.expect(token.LBRACE); rep != nil {
		return nil, rep
	}
	saved := p.allowStructLit
	p.allowStructLit = true
	block := &ast.BlockExpr{P: start}
	lastHadSemi := false
	for !p.at(token.RBRACE) {
		e, rep := p.parseBlockStmt()
		if rep != nil {
			p.allowStructLit = saved
			return nil, rep
		}
		block.Stmts = append(block.Stmts, e)
		lastHadSemi = p.accept(token.SEMI)
	}
	p.allowStructLit = saved
	endPos := p.cur.Span.Start
	if _, rep := p.expect(token.RBRACE); rep != nil {
		return nil, rep
	}
	if lastHadSemi && len(block.Stmts) > 0 {
		block.Stmts = append(block.Stmts, &ast.Literal{Kind: ast.LitUnit, Raw: "()", P: endPos})
	}
	return block, nil
}

// parseBlockStmt parses one statement-position construct inside a block:
// a "let" binding or a bare expression.
func (p *Parser) parseBlockStmt() (ast.Expr, *errors.Report) {
	if p.at(token.IDENT) && p.peekKind() == token.NOT && p.isMacroItemStmt() {
		return p.parseMacroInvocation()
	}
	if p.at(token.KW_LET) {
		return p.parseLetExpr()
	}
	return p.parseExpr()
}

// isMacroItemStmt disambiguates "name!(...)" used as a statement from one
// used as the left operand of an expression (the two parse identically up
// to this point, so this is a formality kept for readability).
func (p *Parser) isMacroItemStmt() bool { return true }
