package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riicchhaarrd/rcc/ast"
	"github.com/riicchhaarrd/rcc/lexer"
	"github.com/riicchhaarrd/rcc/parser"
)

func parse(t *testing.T, src string) *ast.ProgramNode {
	t.Helper()
	tokens, err := lexer.Lex([]byte(src), 0)
	require.NoError(t, err)
	prog, err := parser.Parse(tokens)
	require.NoError(t, err)
	return prog
}

func TestParseFunctionDecl(t *testing.T) {
	prog := parse(t, "int add(int a, int b) { return a + b; }")
	require.Len(t, prog.Decls, 1)
	fn, ok := prog.Decls[0].(*ast.FunctionDeclNode)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmtNode)
	require.True(t, ok)
	bin, ok := ret.Argument.(*ast.BinExprNode)
	require.True(t, ok)
	require.EqualValues(t, '+', bin.Operator)
}

func TestParseStructAndEnum(t *testing.T) {
	prog := parse(t, `
		struct point { int x; int y; };
		enum color { RED, GREEN, BLUE = 5 };
	`)
	require.Len(t, prog.Decls, 2)
	sd := prog.Decls[0].(*ast.StructDeclNode)
	require.Equal(t, "point", sd.Name)
	require.Len(t, sd.Fields, 2)

	ed := prog.Decls[1].(*ast.EnumDeclNode)
	require.Len(t, ed.Values, 3)
	require.Nil(t, ed.Values[0].Value)
	require.NotNil(t, ed.Values[2].Value)
	require.EqualValues(t, 5, *ed.Values[2].Value)
}

func TestParseIfElseChain(t *testing.T) {
	prog := parse(t, `
		int main() {
			if (1) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	fn := prog.Decls[0].(*ast.FunctionDeclNode)
	ifs := fn.Body.Stmts[0].(*ast.IfStmtNode)
	require.NotNil(t, ifs.Else)
}

func TestParsePointerAndArrayTypes(t *testing.T) {
	prog := parse(t, `
		int main() {
			int arr[4];
			int* p;
			return 0;
		}
	`)
	fn := prog.Decls[0].(*ast.FunctionDeclNode)
	arr := fn.Body.Stmts[0].(*ast.VariableDeclNode)
	_, ok := arr.DataType.(*ast.ArrayDataTypeNode)
	require.True(t, ok)

	ptr := fn.Body.Stmts[1].(*ast.VariableDeclNode)
	_, ok = ptr.DataType.(*ast.PointerDataTypeNode)
	require.True(t, ok)
}

func TestParseTernaryAndSeqExpr(t *testing.T) {
	prog := parse(t, `
		int main() {
			int x = (1, 2, 3);
			int y = x > 0 ? 1 : 0;
			return y;
		}
	`)
	fn := prog.Decls[0].(*ast.FunctionDeclNode)
	vd := fn.Body.Stmts[0].(*ast.VariableDeclNode)
	seq, ok := vd.Initializer.(*ast.SeqExprNode)
	require.True(t, ok)
	require.Len(t, seq.Exprs, 3)

	vd2 := fn.Body.Stmts[1].(*ast.VariableDeclNode)
	_, ok = vd2.Initializer.(*ast.TernaryExprNode)
	require.True(t, ok)
}

func TestParseBreakOutsideLoopIsAcceptedByParser(t *testing.T) {
	// The parser performs no control-flow validation; that's the code
	// generator's job (ErrBreakOutsideLoop).
	prog := parse(t, "int main() { break; return 0; }")
	fn := prog.Decls[0].(*ast.FunctionDeclNode)
	_, ok := fn.Body.Stmts[0].(*ast.BreakStmtNode)
	require.True(t, ok)
}
