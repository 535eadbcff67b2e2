package parser

import (
	"fmt"

	"github.com/riicchhaarrd/rcc/ast"
	"github.com/riicchhaarrd/rcc/token"
)

func (p *Parser) parseBlock() (*ast.BlockStmtNode, error) {
	if _, err := p.expect(token.Kind('{')); err != nil {
		return nil, err
	}
	blk := &ast.BlockStmtNode{}
	for !p.check(token.Kind('}')) {
		if p.check(token.EOF) {
			return nil, fmt.Errorf("line %d: unterminated block", p.current().Line)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, s)
	}
	if _, err := p.expect(token.Kind('}')); err != nil {
		return nil, err
	}
	return blk, nil
}

// parseStatementAsBlock parses either a brace-delimited block or a single
// statement, normalizing both to *ast.BlockStmtNode — IfStmtNode,
// ForStmtNode, WhileStmtNode and DoWhileStmtNode all carry block bodies.
func (p *Parser) parseStatementAsBlock() (*ast.BlockStmtNode, error) {
	if p.check(token.Kind('{')) {
		return p.parseBlock()
	}
	s, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.BlockStmtNode{Stmts: []ast.Node{s}}, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.current().Kind {
	case token.Kind('{'):
		return p.parseBlock()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoWhileStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwBreak:
		p.advance()
		if _, err := p.expect(token.Kind(';')); err != nil {
			return nil, err
		}
		return &ast.BreakStmtNode{}, nil
	case token.Kind(';'):
		p.advance()
		return &ast.EmptyStmtNode{}, nil
	}
	if isTypeStart(p.current().Kind) {
		return p.parseVariableDeclStmt()
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	return &ast.ExprStmtNode{Expr: expr}, nil
}

func (p *Parser) parseVariableDeclStmt() (ast.Node, error) {
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	vd, err := p.parseVarDeclTail(name.Ident, dt)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	return vd, nil
}

// parseVarDeclTail parses the optional array-size suffix and initializer
// common to every variable declaration, stopping just before the
// terminating ';' so for-loop init clauses can reuse it.
func (p *Parser) parseVarDeclTail(name string, dt ast.Node) (*ast.VariableDeclNode, error) {
	vd := &ast.VariableDeclNode{Name: name, DataType: dt}
	if p.match(token.Kind('[')) {
		size, err := p.expect(token.Integer)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Kind(']')); err != nil {
			return nil, err
		}
		vd.DataType = &ast.ArrayDataTypeNode{Inner: dt, Size: int(size.Int)}
	}
	if p.match(token.Kind('=')) {
		init, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		vd.Initializer = init
	}
	return vd, nil
}

func (p *Parser) parseIfStmt() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	then, err := p.parseStatementAsBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.IfStmtNode{Test: test, Then: then}
	if p.match(token.KwElse) {
		els, err := p.parseStatementAsBlock()
		if err != nil {
			return nil, err
		}
		n.Else = els
	}
	return n, nil
}

func (p *Parser) parseForStmt() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	n := &ast.ForStmtNode{}
	if !p.check(token.Kind(';')) {
		if isTypeStart(p.current().Kind) {
			dt, err := p.parseDataType()
			if err != nil {
				return nil, err
			}
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			vd, err := p.parseVarDeclTail(name.Ident, dt)
			if err != nil {
				return nil, err
			}
			n.Init = vd
		} else {
			init, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			n.Init = init
		}
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	if !p.check(token.Kind(';')) {
		test, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		n.Test = test
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	if !p.check(token.Kind(')')) {
		update, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		n.Update = update
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	body, err := p.parseStatementAsBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func (p *Parser) parseWhileStmt() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	body, err := p.parseStatementAsBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmtNode{Test: test, Body: body}, nil
}

func (p *Parser) parseDoWhileStmt() (ast.Node, error) {
	p.advance()
	body, err := p.parseStatementAsBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwWhile); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmtNode{Test: test, Body: body}, nil
}

func (p *Parser) parseReturnStmt() (ast.Node, error) {
	p.advance()
	if p.match(token.Kind(';')) {
		return &ast.ReturnStmtNode{}, nil
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	return &ast.ReturnStmtNode{Argument: arg}, nil
}
