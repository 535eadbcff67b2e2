package parser

import (
	"fmt"

	"github.com/riicchhaarrd/rcc/ast"
	"github.com/riicchhaarrd/rcc/token"
)

// parseExpr parses a full (possibly comma-joined) expression, the form
// used for expression statements, conditions, array subscripts, and
// for-loop clauses. Argument lists and variable initializers parse at the
// assignment level instead, so their commas aren't swallowed as a
// sequence expression.
func (p *Parser) parseExpr() (ast.Node, error) {
	first, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(token.Kind(',')) {
		return first, nil
	}
	exprs := []ast.Node{first}
	for p.match(token.Kind(',')) {
		if len(exprs) >= ast.MaxSeqExprs {
			return nil, ErrTooManySeqExprs
		}
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return &ast.SeqExprNode{Exprs: exprs}, nil
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.Kind('='), token.AddAssign, token.SubAssign, token.MulAssign,
		token.DivAssign, token.ModAssign, token.XorAssign, token.OrAssign, token.AndAssign:
		return true
	}
	return false
}

func (p *Parser) parseAssignExpr() (ast.Node, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if isAssignOp(p.current().Kind) {
		op := p.advance().Kind
		right, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExprNode{Left: left, Right: right, Operator: int(op)}, nil
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Node, error) {
	cond, err := p.parseBinary(precedenceLevels, 0)
	if err != nil {
		return nil, err
	}
	if p.match(token.Kind('?')) {
		then, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Kind(':')); err != nil {
			return nil, err
		}
		els, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExprNode{Test: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

// precedenceLevels lists binary operator tiers from loosest to tightest
// binding, matching the precedence original_source/x86.c's opcode table
// implies (bitwise, then equality, then relational, then shift, then
// additive, then multiplicative).
var precedenceLevels = [][]token.Kind{
	{token.Kind('|')},
	{token.Kind('^')},
	{token.Kind('&')},
	{token.Eq, token.Ne},
	{token.Kind('<'), token.Kind('>'), token.Le, token.Ge},
	{token.Shl, token.Shr},
	{token.Kind('+'), token.Kind('-')},
	{token.Kind('*'), token.Kind('/'), token.Kind('%')},
}

func (p *Parser) parseBinary(levels [][]token.Kind, i int) (ast.Node, error) {
	if i >= len(levels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(levels, i+1)
	if err != nil {
		return nil, err
	}
	for containsKind(levels[i], p.current().Kind) {
		op := p.advance().Kind
		right, err := p.parseBinary(levels, i+1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinExprNode{Left: left, Right: right, Operator: int(op)}
	}
	return left, nil
}

func containsKind(ks []token.Kind, k token.Kind) bool {
	for _, want := range ks {
		if want == k {
			return true
		}
	}
	return false
}

func isUnaryOp(k token.Kind) bool {
	switch k {
	case token.Kind('-'), token.Kind('+'), token.Kind('!'), token.Kind('~'):
		return true
	}
	return false
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch p.current().Kind {
	case token.Kind('&'):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.AddressOfExprNode{Operand: operand}, nil
	case token.Inc, token.Dec:
		op := p.advance().Kind
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExprNode{Argument: operand, Operator: int(op), Prefix: true}, nil
	}
	if isUnaryOp(p.current().Kind) {
		op := p.advance().Kind
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExprNode{Argument: operand, Operator: int(op), Prefix: true}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Kind {
		case token.Kind('('):
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.FunctionCallExprNode{Callee: expr, Args: args}
		case token.Kind('.'):
			p.advance()
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExprNode{Object: expr, Property: &ast.IdentifierNode{Name: name.Ident}}
		case token.Arrow:
			p.advance()
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExprNode{Object: expr, Property: &ast.IdentifierNode{Name: name.Ident}, AsPointer: true}
		case token.Kind('['):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Kind(']')); err != nil {
				return nil, err
			}
			expr = &ast.MemberExprNode{Object: expr, Property: idx, Computed: true}
		case token.Inc, token.Dec:
			op := p.advance().Kind
			expr = &ast.UnaryExprNode{Argument: expr, Operator: int(op), Prefix: false}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Node, error) {
	var args []ast.Node
	for !p.check(token.Kind(')')) {
		if len(args) > 0 {
			if _, err := p.expect(token.Kind(',')); err != nil {
				return nil, err
			}
		}
		if len(args) >= ast.MaxArgs {
			return nil, ErrTooManyArgs
		}
		a, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.current()
	switch t.Kind {
	case token.Integer:
		p.advance()
		return &ast.LiteralNode{Variant: ast.IntLiteral, Int: t.Int}, nil
	case token.Float:
		p.advance()
		return &ast.LiteralNode{Variant: ast.FloatLiteral, Float64: t.Float}, nil
	case token.String:
		p.advance()
		return &ast.LiteralNode{Variant: ast.StringLiteral, Str: t.Ident}, nil
	case token.Ident:
		p.advance()
		return &ast.IdentifierNode{Name: t.Ident}, nil
	case token.KwSizeof:
		return p.parseSizeof()
	case token.KwEmit:
		return p.parseEmit()
	case token.Kind('('):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Kind(')')); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("line %d: unexpected token %v", t.Line, t.Kind)
}

func (p *Parser) parseSizeof() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	var operand ast.Node
	var err error
	if isTypeStart(p.current().Kind) {
		operand, err = p.parseDataType()
	} else {
		operand, err = p.parseExpr()
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	return &ast.SizeofExprNode{Operand: operand}, nil
}

// parseEmit parses __emit(0xNN), the raw-opcode escape hatch.
func (p *Parser) parseEmit() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	v, err := p.expect(token.Integer)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}
	return &ast.EmitExprNode{Opcode: byte(v.Int)}, nil
}
