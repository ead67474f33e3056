package mirtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/errors"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, rep := Parse(src, "fixture.mir")
	require.Nil(t, rep, "unexpected parse error: %+v", rep)
	require.NotNil(t, f)
	return f
}

func TestMirtextForwardReferencedGotoResolves(t *testing.T) {
	f := mustParse(t, `
fn main() {
	entry: {
		GOTO loop;
	}
	loop: {
		RETURN;
	}
}
`)
	require.Len(t, f.Functions, 1)
	fn := f.Functions[0]
	require.Len(t, fn.Blocks, 2)

	entry := fn.Blocks[0]
	require.Equal(t, TermGoto, entry.Term.Kind)
	assert.Equal(t, "loop", entry.Term.GotoLabel)
	assert.Equal(t, 1, entry.Term.GotoIdx, "forward reference to loop must resolve to its final index")

	loopIdx, ok := fn.BlockIndex("loop")
	require.True(t, ok)
	assert.Equal(t, 1, loopIdx)
}

func TestMirtextDiverge(t *testing.T) {
	f := mustParse(t, `
fn never() {
	entry: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	assert.Equal(t, TermDiverge, term.Kind)
}

func TestMirtextPanicTarget(t *testing.T) {
	f := mustParse(t, `
fn maybe() {
	entry: {
		PANIC oops;
	}
	oops: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	require.Equal(t, TermPanic, term.Kind)
	assert.Equal(t, "oops", term.PanicLabel)
	assert.Equal(t, 1, term.PanicIdx)
}

func TestMirtextIfTerminator(t *testing.T) {
	f := mustParse(t, `
fn pick(cond: bool) -> bool {
	entry: {
		IF cond => yes else no;
	}
	yes: {
		RETURN;
	}
	no: {
		RETURN;
	}
}
`)
	fn := f.Functions[0]
	term := fn.Blocks[0].Term
	require.Equal(t, TermIf, term.Kind)
	assert.Equal(t, RootArgument, term.IfCond.RootKind)
	assert.Equal(t, "yes", term.IfThenLabel)
	assert.Equal(t, 1, term.IfThenIdx)
	assert.Equal(t, "no", term.IfElseLabel)
	assert.Equal(t, 2, term.IfElseIdx)
}

func TestMirtextSwitchTerminatorMultiTargetLazyResolution(t *testing.T) {
	f := mustParse(t, `
fn dispatch(tag: u32) {
	entry: {
		SWITCH tag { a, b, c };
	}
	a: {
		RETURN;
	}
	b: {
		RETURN;
	}
	c: {
		RETURN;
	}
}
`)
	fn := f.Functions[0]
	term := fn.Blocks[0].Term
	require.Equal(t, TermSwitch, term.Kind)
	require.Equal(t, []string{"a", "b", "c"}, term.SwitchLabels)
	require.Equal(t, []int{1, 2, 3}, term.SwitchIndices)
}

func TestMirtextCallValueTarget(t *testing.T) {
	f := mustParse(t, `
fn apply(f: u32, x: u32) -> u32 {
	entry: {
		CALL retval = (f)(x) => after else unwind;
	}
	after: {
		RETURN;
	}
	unwind: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	require.Equal(t, TermCall, term.Kind)
	require.Equal(t, CallTargetValue, term.CallTarget.Kind)
	assert.Equal(t, RootArgument, term.CallTarget.Value.RootKind)
	assert.Equal(t, RootReturn, term.CallDst.RootKind)
	require.Len(t, term.CallArgs, 1)
	assert.Equal(t, "after", term.CallRetLabel)
	assert.Equal(t, 1, term.CallRetIdx)
	assert.Equal(t, "unwind", term.CallPanicLabel)
	assert.Equal(t, 2, term.CallPanicIdx)
}

func TestMirtextCallIntrinsicTarget(t *testing.T) {
	f := mustParse(t, `
fn grow(x: usize) -> usize {
	entry: {
		CALL retval = "alloc_grow"(x) => after else unwind;
	}
	after: {
		RETURN;
	}
	unwind: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	require.Equal(t, CallTargetIntrinsic, term.CallTarget.Kind)
	assert.Equal(t, "alloc_grow", term.CallTarget.Intrinsic)
}

func TestMirtextCallCrateQualifiedPathTarget(t *testing.T) {
	f := mustParse(t, `
fn wrapper(x: u32) -> u32 {
	entry: {
		CALL retval = ::"core"::mem::swap(x) => after else unwind;
	}
	after: {
		RETURN;
	}
	unwind: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	require.Equal(t, CallTargetPath, term.CallTarget.Kind)
	assert.Equal(t, `core::mem::swap`, term.CallTarget.Path)
}

func TestMirtextCallBareSameCratePathTarget(t *testing.T) {
	f := mustParse(t, `
fn wrapper(x: u32) -> u32 {
	entry: {
		CALL retval = helpers::double(x) => after else unwind;
	}
	after: {
		RETURN;
	}
	unwind: {
		DIVERGE;
	}
}
`)
	term := f.Functions[0].Blocks[0].Term
	require.Equal(t, CallTargetPath, term.CallTarget.Kind)
	assert.Equal(t, "helpers::double", term.CallTarget.Path)
}

func TestMirtextAssignTuple(t *testing.T) {
	f := mustParse(t, `
fn pair(a: u32, b: u32) -> (u32, u32) {
	let t: (u32, u32);
	entry: {
		ASSIGN t = (a, b);
		RETURN;
	}
}
`)
	fn := f.Functions[0]
	require.Len(t, fn.Locals, 1)
	assert.Equal(t, "(u32, u32)", fn.Locals[0].Type)
	stmt := fn.Blocks[0].Stmts[0].(*AssignStmt)
	assert.Equal(t, RValueTuple, stmt.Src.Kind)
	require.Len(t, stmt.Src.Elems, 2)
}

func TestMirtextAssignBorrowModes(t *testing.T) {
	f := mustParse(t, `
fn borrows(x: u32) {
	let r1: &u32;
	let r2: &u32;
	let r3: &u32;
	entry: {
		ASSIGN r1 = &x;
		ASSIGN r2 = &move x;
		ASSIGN r3 = &mut x;
		RETURN;
	}
}
`)
	stmts := f.Functions[0].Blocks[0].Stmts
	require.Len(t, stmts, 3)

	shared := stmts[0].(*AssignStmt).Src
	require.Equal(t, RValueBorrow, shared.Kind)
	assert.Equal(t, BorrowShared, shared.BorrowWay)

	owned := stmts[1].(*AssignStmt).Src
	assert.Equal(t, BorrowOwned, owned.BorrowWay)

	unique := stmts[2].(*AssignStmt).Src
	assert.Equal(t, BorrowUnique, unique.BorrowWay)
}

func TestMirtextAssignBinOp(t *testing.T) {
	f := mustParse(t, `
fn sum(a: u32, b: u32) -> u32 {
	entry: {
		ASSIGN retval = ADD(a, b);
		RETURN;
	}
}
`)
	stmt := f.Functions[0].Blocks[0].Stmts[0].(*AssignStmt)
	require.Equal(t, RValueBinOp, stmt.Src.Kind)
	assert.Equal(t, "ADD", stmt.Src.Op)
	assert.Equal(t, RootArgument, stmt.Src.Left.LValue.RootKind)
	assert.Equal(t, RootArgument, stmt.Src.Right.LValue.RootKind)
}

func TestMirtextAssignBareUseAndConstant(t *testing.T) {
	f := mustParse(t, `
fn ident(a: bool) -> bool {
	let b: bool;
	entry: {
		ASSIGN b = a;
		ASSIGN retval = true;
		RETURN;
	}
}
`)
	stmts := f.Functions[0].Blocks[0].Stmts
	use := stmts[0].(*AssignStmt).Src
	require.Equal(t, RValueUse, use.Kind)
	assert.False(t, use.Operand.IsConstant)

	constant := stmts[1].(*AssignStmt).Src
	require.Equal(t, RValueUse, constant.Kind)
	require.True(t, constant.Operand.IsConstant)
	assert.True(t, constant.Operand.Constant.Bool)
}

func TestMirtextDropWithAndWithoutFlag(t *testing.T) {
	f := mustParse(t, `
fn cleanup(x: u32) {
	let x_dropped = false;
	entry: {
		DROP x if x_dropped;
		DROP x;
		RETURN;
	}
}
`)
	fn := f.Functions[0]
	require.Equal(t, []string{"x_dropped"}, fn.DropFlags)
	stmts := fn.Blocks[0].Stmts

	withFlag := stmts[0].(*DropStmt)
	assert.True(t, withFlag.HasIf)
	assert.Equal(t, "x_dropped", withFlag.Flag)

	bare := stmts[1].(*DropStmt)
	assert.False(t, bare.HasIf)
}

func TestMirtextLValueProjectionChain(t *testing.T) {
	f := mustParse(t, `
fn deref_field(p: u32) -> u32 {
	entry: {
		ASSIGN retval = p*.0#1;
		RETURN;
	}
}
`)
	stmt := f.Functions[0].Blocks[0].Stmts[0].(*AssignStmt)
	require.Equal(t, RValueUse, stmt.Src.Kind)
	lv := stmt.Src.Operand.LValue
	require.Len(t, lv.Wrappers, 3)
	assert.Equal(t, WrapDeref, lv.Wrappers[0].Kind)
	assert.Equal(t, WrapField, lv.Wrappers[1].Kind)
	assert.Equal(t, int64(0), lv.Wrappers[1].Index)
	assert.Equal(t, WrapDowncast, lv.Wrappers[2].Kind)
	assert.Equal(t, int64(1), lv.Wrappers[2].Index)
}

func TestMirtextFunctionAttributes(t *testing.T) {
	f := mustParse(t, `
#[test = "target_fn"]
#[opt_level = "2"]
fn target_fn() {
	entry: {
		RETURN;
	}
}
`)
	fn := f.Functions[0]
	require.Len(t, fn.Attrs, 2)
	assert.Equal(t, Attr{Name: "test", Value: "target_fn"}, fn.Attrs[0])
	assert.Equal(t, Attr{Name: "opt_level", Value: "2"}, fn.Attrs[1])
}

func TestMirtextUnknownTerminatorKeyword(t *testing.T) {
	_, rep := Parse(`
fn bad() {
	entry: {
		FROB;
	}
}
`, "fixture.mir")
	require.NotNil(t, rep)
	assert.Equal(t, errors.MIR001, rep.Code)
}

func TestMirtextUndefinedBlockLabel(t *testing.T) {
	_, rep := Parse(`
fn bad() {
	entry: {
		GOTO nowhere;
	}
}
`, "fixture.mir")
	require.NotNil(t, rep)
	assert.Equal(t, errors.MIR002, rep.Code)
}

func TestMirtextMalformedRvalue(t *testing.T) {
	_, rep := Parse(`
fn bad() {
	entry: {
		ASSIGN retval = ;
		RETURN;
	}
}
`, "fixture.mir")
	require.NotNil(t, rep)
	assert.Equal(t, errors.MIR003, rep.Code)
}

func TestMirtextUnknownLocalReference(t *testing.T) {
	_, rep := Parse(`
fn bad() {
	entry: {
		ASSIGN retval = ghost;
		RETURN;
	}
}
`, "fixture.mir")
	require.NotNil(t, rep)
	assert.Equal(t, errors.MIR003, rep.Code)
}

func TestMirtextMultipleFunctionsInOneFile(t *testing.T) {
	f := mustParse(t, `
fn first() {
	entry: {
		RETURN;
	}
}
fn second(x: u32) -> u32 {
	entry: {
		ASSIGN retval = x;
		RETURN;
	}
}
`)
	require.Len(t, f.Functions, 2)
	assert.Equal(t, "first", f.Functions[0].Name)
	assert.Equal(t, "second", f.Functions[1].Name)
}
