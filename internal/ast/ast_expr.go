package ast

import (
	"strings"

	"github.com/corvid-lang/corvidc/internal/token"
)

type Ident struct {
	Name string
	P    token.Pos
}

func (e *Ident) Pos() token.Pos { return e.P }
func (e *Ident) String() string { return e.Name }
func (e *Ident) exprNode()      {}

type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitByteString
	LitChar
	LitBool
	LitUnit
)

type Literal struct {
	Kind      LitKind
	Raw       string
	IntHi     uint64
	IntLo     uint64
	NumSuffix token.NumSuffix
	Negative  bool // sign attached by the parser, never by the lexer
	P         token.Pos
}

func (e *Literal) Pos() token.Pos { return e.P }
func (e *Literal) String() string {
	if e.Negative {
		return "-" + e.Raw
	}
	return e.Raw
}
func (e *Literal) exprNode() {}

type PathExpr struct {
	PathP Path
	P     token.Pos
}

func (e *PathExpr) Pos() token.Pos { return e.P }
func (e *PathExpr) String() string { return e.PathP.String() }
func (e *PathExpr) exprNode()      {}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	P     token.Pos
}

func (e *BinaryExpr) Pos() token.Pos { return e.P }
func (e *BinaryExpr) String() string { return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")" }
func (e *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Op   string
	Expr Expr
	P    token.Pos
}

func (e *UnaryExpr) Pos() token.Pos { return e.P }
func (e *UnaryExpr) String() string { return e.Op + e.Expr.String() }
func (e *UnaryExpr) exprNode()      {}

type CallExpr struct {
	Func Expr
	Args []Expr
	P    token.Pos
}

func (e *CallExpr) Pos() token.Pos { return e.P }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Func.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (e *CallExpr) exprNode() {}

type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Params   *PathParams // optional turbofish ::<...>
	Args     []Expr
	P        token.Pos
}

func (e *MethodCallExpr) Pos() token.Pos { return e.P }
func (e *MethodCallExpr) String() string { return e.Receiver.String() + "." + e.Method + "(...)" }
func (e *MethodCallExpr) exprNode()      {}

type FieldAccessExpr struct {
	Receiver Expr
	Field    string
	P        token.Pos
}

func (e *FieldAccessExpr) Pos() token.Pos { return e.P }
func (e *FieldAccessExpr) String() string { return e.Receiver.String() + "." + e.Field }
func (e *FieldAccessExpr) exprNode()      {}

type TupleIndexExpr struct {
	Receiver Expr
	Index    int
	P        token.Pos
}

func (e *TupleIndexExpr) Pos() token.Pos { return e.P }
func (e *TupleIndexExpr) String() string { return e.Receiver.String() + "." + itoa(e.Index) }
func (e *TupleIndexExpr) exprNode()      {}

type IndexExpr struct {
	Receiver Expr
	Index    Expr
	P        token.Pos
}

func (e *IndexExpr) Pos() token.Pos { return e.P }
func (e *IndexExpr) String() string { return e.Receiver.String() + "[" + e.Index.String() + "]" }
func (e *IndexExpr) exprNode()      {}

type TupleExpr struct {
	Elems []Expr
	P     token.Pos
}

func (e *TupleExpr) Pos() token.Pos { return e.P }
func (e *TupleExpr) String() string {
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (e *TupleExpr) exprNode() {}

type ArrayExpr struct {
	Elems  []Expr
	Repeat Expr // count expression for "[elem; N]"; nil for a literal list
	P      token.Pos
}

func (e *ArrayExpr) Pos() token.Pos { return e.P }
func (e *ArrayExpr) String() string {
	if e.Repeat != nil {
		return "[" + e.Elems[0].String() + "; " + e.Repeat.String() + "]"
	}
	parts := make([]string, len(e.Elems))
	for i, x := range e.Elems {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ArrayExpr) exprNode() {}

type StructLitField struct {
	Name  string
	Value Expr // nil = field-init shorthand, use Name as a var ref
}

type StructLitExpr struct {
	PathP Path
	Fields []StructLitField
	Spread Expr // optional "..base"
	P      token.Pos
}

func (e *StructLitExpr) Pos() token.Pos { return e.P }
func (e *StructLitExpr) String() string { return e.PathP.String() + "{ ... }" }
func (e *StructLitExpr) exprNode()      {}

type BlockExpr struct {
	Stmts []Expr // last expr (if not semicolon-terminated) is the value
	P     token.Pos
}

func (e *BlockExpr) Pos() token.Pos { return e.P }
func (e *BlockExpr) String() string { return "{ ... }" }
func (e *BlockExpr) exprNode()      {}

type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr // nil, another IfExpr, or a BlockExpr
	P    token.Pos
}

func (e *IfExpr) Pos() token.Pos { return e.P }
func (e *IfExpr) String() string { return "if " + e.Cond.String() + " { .. }" }
func (e *IfExpr) exprNode()      {}

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
}

type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	P         token.Pos
}

func (e *MatchExpr) Pos() token.Pos { return e.P }
func (e *MatchExpr) String() string { return "match " + e.Scrutinee.String() + " { .. }" }
func (e *MatchExpr) exprNode()      {}

type WhileExpr struct {
	Cond Expr
	Body *BlockExpr
	P    token.Pos
}

func (e *WhileExpr) Pos() token.Pos { return e.P }
func (e *WhileExpr) String() string { return "while " + e.Cond.String() + " { .. }" }
func (e *WhileExpr) exprNode()      {}

type LoopExpr struct {
	Body *BlockExpr
	P    token.Pos
}

func (e *LoopExpr) Pos() token.Pos { return e.P }
func (e *LoopExpr) String() string { return "loop { .. }" }
func (e *LoopExpr) exprNode()      {}

type ForExpr struct {
	Pattern Pattern
	Iter    Expr
	Body    *BlockExpr
	P       token.Pos
}

func (e *ForExpr) Pos() token.Pos { return e.P }
func (e *ForExpr) String() string { return "for " + e.Pattern.String() + " in .. { .. }" }
func (e *ForExpr) exprNode()      {}

type BreakExpr struct {
	Value Expr // optional
	P     token.Pos
}

func (e *BreakExpr) Pos() token.Pos { return e.P }
func (e *BreakExpr) String() string { return "break" }
func (e *BreakExpr) exprNode()      {}

type ContinueExpr struct{ P token.Pos }

func (e *ContinueExpr) Pos() token.Pos { return e.P }
func (e *ContinueExpr) String() string { return "continue" }
func (e *ContinueExpr) exprNode()      {}

type ReturnExpr struct {
	Value Expr // optional
	P     token.Pos
}

func (e *ReturnExpr) Pos() token.Pos { return e.P }
func (e *ReturnExpr) String() string { return "return" }
func (e *ReturnExpr) exprNode()      {}

type BorrowExpr struct {
	Mut   bool
	Inner Expr
	P     token.Pos
}

func (e *BorrowExpr) Pos() token.Pos { return e.P }
func (e *BorrowExpr) String() string { return "&" + e.Inner.String() }
func (e *BorrowExpr) exprNode()      {}

type DerefExpr struct {
	Inner Expr
	P     token.Pos
}

func (e *DerefExpr) Pos() token.Pos { return e.P }
func (e *DerefExpr) String() string { return "*" + e.Inner.String() }
func (e *DerefExpr) exprNode()      {}

type CastExpr struct {
	Inner Expr
	Type  Type
	P     token.Pos
}

func (e *CastExpr) Pos() token.Pos { return e.P }
func (e *CastExpr) String() string { return e.Inner.String() + " as " + e.Type.String() }
func (e *CastExpr) exprNode()      {}

type LetExpr struct {
	Pattern Pattern
	Type    Type // optional
	Value   Expr // optional initializer
	P       token.Pos
}

func (e *LetExpr) Pos() token.Pos { return e.P }
func (e *LetExpr) String() string { return "let " + e.Pattern.String() }
func (e *LetExpr) exprNode()      {}

type ClosureExpr struct {
	Move   bool
	Params []*Param
	Ret    Type // optional
	Body   Expr
	P      token.Pos
}

func (e *ClosureExpr) Pos() token.Pos { return e.P }
func (e *ClosureExpr) String() string { return "|...| ..." }
func (e *ClosureExpr) exprNode()      {}

// MacroInvocation is "path!(tokens)" (or [tokens]/{tokens}). The raw token
// tree is carried until expansion replaces the node in place.
type MacroInvocation struct {
	PathP Path
	Raw   []token.Token
	P     token.Pos
}

func (e *MacroInvocation) Pos() token.Pos { return e.P }
func (e *MacroInvocation) String() string { return e.PathP.String() + "!(...)" }
func (e *MacroInvocation) exprNode()      {}
func (e *MacroInvocation) itemNode()      {}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}
