// Package token defines the lexical token model shared by the lexer and
// parser: token kinds, source spans, and the hygiene-context handles that
// let macro-expanded fragments be reinjected as first-class tokens.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT

	// Literals
	IDENT
	INT
	FLOAT
	CHAR
	STRING
	BYTE_STRING

	// Interpolated fragment: a pre-parsed AST subtree injected by macro
	// expansion. Fragment holds the subtree (opaque to the lexer/token
	// package itself; the parser type-asserts it to the expected kind).
	FRAGMENT

	// Keywords
	KW_FN
	KW_PUB
	KW_STRUCT
	KW_ENUM
	KW_UNION
	KW_TRAIT
	KW_IMPL
	KW_FOR
	KW_USE
	KW_MOD
	KW_CRATE
	KW_SELF
	KW_SELF_TYPE // Self
	KW_SUPER
	KW_LET
	KW_MUT
	KW_REF
	KW_BOX
	KW_MATCH
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_LOOP
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_STATIC
	KW_CONST
	KW_TYPE
	KW_WHERE
	KW_DYN
	KW_AS
	KW_IN
	KW_MOVE
	KW_UNSAFE
	KW_EXTERN
	KW_TRUE
	KW_FALSE

	// Punctuation / operators
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI
	COLON
	DCOLON // ::
	ARROW  // ->
	FARROW // =>
	DOT
	DOTDOT   // ..
	DOTDOTEQ // ..=
	ELLIPSIS // ...
	AMP      // &
	AMPAMP   // &&
	PIPE     // |
	PIPEPIPE // ||
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	CARET
	NOT // !
	EQ
	EQEQ
	NE
	LT
	LE
	GT
	GE
	AT
	HASH
	DOLLAR
	QUESTION
	UNDERSCORE
	LIFETIME // 'a
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "ident", INT: "int", FLOAT: "float", CHAR: "char",
	STRING: "string", BYTE_STRING: "byte-string", FRAGMENT: "fragment",

	KW_FN: "fn", KW_PUB: "pub", KW_STRUCT: "struct", KW_ENUM: "enum",
	KW_UNION: "union", KW_TRAIT: "trait", KW_IMPL: "impl", KW_FOR: "for",
	KW_USE: "use", KW_MOD: "mod", KW_CRATE: "crate", KW_SELF: "self",
	KW_SELF_TYPE: "Self", KW_SUPER: "super", KW_LET: "let", KW_MUT: "mut",
	KW_REF: "ref", KW_BOX: "box", KW_MATCH: "match", KW_IF: "if",
	KW_ELSE: "else", KW_WHILE: "while", KW_LOOP: "loop", KW_RETURN: "return",
	KW_BREAK: "break", KW_CONTINUE: "continue", KW_STATIC: "static",
	KW_CONST: "const", KW_TYPE: "type", KW_WHERE: "where", KW_DYN: "dyn",
	KW_AS: "as", KW_IN: "in", KW_MOVE: "move", KW_UNSAFE: "unsafe",
	KW_EXTERN: "extern", KW_TRUE: "true", KW_FALSE: "false",

	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMI: ";",
	COLON: ":", DCOLON: "::", ARROW: "->", FARROW: "=>",
	DOT: ".", DOTDOT: "..", DOTDOTEQ: "..=", ELLIPSIS: "...",
	AMP: "&", AMPAMP: "&&", PIPE: "|", PIPEPIPE: "||",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	CARET: "^", NOT: "!", EQ: "=", EQEQ: "==", NE: "!=",
	LT: "<", LE: "<=", GT: ">", GE: ">=", AT: "@", HASH: "#",
	DOLLAR: "$", QUESTION: "?", UNDERSCORE: "_", LIFETIME: "lifetime",
}

// Keywords maps keyword spellings to their Kind.
var Keywords = map[string]Kind{
	"fn": KW_FN, "pub": KW_PUB, "struct": KW_STRUCT, "enum": KW_ENUM,
	"union": KW_UNION, "trait": KW_TRAIT, "impl": KW_IMPL, "for": KW_FOR,
	"use": KW_USE, "mod": KW_MOD, "crate": KW_CRATE, "self": KW_SELF,
	"Self": KW_SELF_TYPE, "super": KW_SUPER, "let": KW_LET, "mut": KW_MUT,
	"ref": KW_REF, "box": KW_BOX, "match": KW_MATCH, "if": KW_IF,
	"else": KW_ELSE, "while": KW_WHILE, "loop": KW_LOOP, "return": KW_RETURN,
	"break": KW_BREAK, "continue": KW_CONTINUE, "static": KW_STATIC,
	"const": KW_CONST, "type": KW_TYPE, "where": KW_WHERE, "dyn": KW_DYN,
	"as": KW_AS, "in": KW_IN, "move": KW_MOVE, "unsafe": KW_UNSAFE,
	"extern": KW_EXTERN, "true": KW_TRUE, "false": KW_FALSE,
	"_": UNDERSCORE,
}

// LookupIdent classifies an identifier spelling as a keyword or IDENT.
func LookupIdent(ident string) Kind {
	if k, ok := Keywords[ident]; ok {
		return k
	}
	return IDENT
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a half-open range [Start, End) in source.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string { return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column) }

// Hygiene is an opaque handle identifying the hygiene context an
// identifier token was minted in. Two IDENT tokens with the same literal
// text but different Hygiene values refer to different bindings; this is
// how macro-expanded code avoids accidentally capturing surrounding names.
type Hygiene uint32

// NoHygiene is the hygiene context of ordinary, non-macro-expanded source.
const NoHygiene Hygiene = 0

// NumSuffix is an explicit numeric-class suffix attached to an integer or
// float literal (e.g. "42i64", "1.0f32"). Empty string means unsuffixed.
type NumSuffix string

// Token is a single lexical token.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
	Hygiene Hygiene

	// IntValue holds the 128-bit-wide (as two uint64 halves) unsigned
	// magnitude of an INT token; sign is never attached by the lexer.
	IntHi, IntLo uint64
	NumSuffix    NumSuffix

	// Fragment carries the already-parsed AST subtree for a FRAGMENT
	// token. Typed as interface{} here to avoid an import cycle with the
	// ast package; the parser type-switches on the concrete type it
	// expects for the grammar position it's in.
	Fragment interface{}
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q @%s}", t.Kind, t.Literal, t.Span.Start)
}

// IsKeyword reports whether t is a reserved keyword token.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KW_FN, KW_PUB, KW_STRUCT, KW_ENUM, KW_UNION, KW_TRAIT, KW_IMPL,
		KW_FOR, KW_USE, KW_MOD, KW_CRATE, KW_SELF, KW_SELF_TYPE, KW_SUPER,
		KW_LET, KW_MUT, KW_REF, KW_BOX, KW_MATCH, KW_IF, KW_ELSE, KW_WHILE,
		KW_LOOP, KW_RETURN, KW_BREAK, KW_CONTINUE, KW_STATIC, KW_CONST,
		KW_TYPE, KW_WHERE, KW_DYN, KW_AS, KW_IN, KW_MOVE, KW_UNSAFE,
		KW_EXTERN, KW_TRUE, KW_FALSE:
		return true
	}
	return false
}
