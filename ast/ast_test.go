package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riicchhaarrd/rcc/ast"
)

func TestAttachParentsWiresBackReferences(t *testing.T) {
	ret := &ast.ReturnStmtNode{Argument: &ast.LiteralNode{Variant: ast.IntLiteral, Int: 1}}
	body := &ast.BlockStmtNode{Stmts: []ast.Node{ret}}
	fn := &ast.FunctionDeclNode{Name: "main", Body: body}
	prog := &ast.ProgramNode{Decls: []ast.Node{fn}}

	ast.AttachParents(prog)

	require.Equal(t, ast.Node(prog), fn.Parent())
	require.Equal(t, ast.Node(fn), body.Parent())
	require.Equal(t, ast.Node(body), ret.Parent())
	require.Equal(t, ast.Node(ret), ret.Argument.Parent())
}

func TestWalkVisitsIfStmtElseBranch(t *testing.T) {
	then := &ast.BlockStmtNode{}
	els := &ast.BlockStmtNode{}
	n := &ast.IfStmtNode{Test: &ast.IdentifierNode{Name: "x"}, Then: then, Else: els}

	var visited []ast.Node
	ast.Walk(n, func(c ast.Node) { visited = append(visited, c) })

	assert.Len(t, visited, 3)
	assert.Contains(t, visited, ast.Node(els))
}

func TestRvalueFlagDefaultsFalse(t *testing.T) {
	id := &ast.IdentifierNode{Name: "x"}
	assert.False(t, id.IsRvalue())
	id.SetRvalue(true)
	assert.True(t, id.IsRvalue())
}

func TestKindTagsAreDistinct(t *testing.T) {
	nodes := []ast.Node{
		&ast.ProgramNode{}, &ast.BlockStmtNode{}, &ast.FunctionDeclNode{},
		&ast.VariableDeclNode{}, &ast.IfStmtNode{}, &ast.ForStmtNode{},
		&ast.WhileStmtNode{}, &ast.DoWhileStmtNode{}, &ast.BreakStmtNode{},
		&ast.BinExprNode{}, &ast.UnaryExprNode{}, &ast.TernaryExprNode{},
		&ast.AssignmentExprNode{}, &ast.SeqExprNode{}, &ast.CastNode{},
		&ast.FunctionCallExprNode{}, &ast.MemberExprNode{}, &ast.AddressOfExprNode{},
		&ast.IdentifierNode{}, &ast.LiteralNode{}, &ast.SizeofExprNode{},
		&ast.EmitExprNode{}, &ast.ExitExprNode{}, &ast.PrimitiveDataTypeNode{},
		&ast.PointerDataTypeNode{}, &ast.ArrayDataTypeNode{},
	}
	seen := map[ast.Kind]bool{}
	for _, n := range nodes {
		require.False(t, seen[n.Kind()], "duplicate kind for %T", n)
		seen[n.Kind()] = true
	}
}
