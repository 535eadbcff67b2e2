// Package parser is a minimal recursive-descent parser from a token
// stream to an *ast.ProgramNode. It exists to exercise the code generator
// end to end in tests and to back the cmd/rcc driver; its grammar carries
// no independent design weight, unlike the token/lexer/ast/codegen
// packages. Structurally it follows the teacher's Parser shape: a flat
// token slice, a cursor, and current/peek/advance/expect helpers.
package parser

import (
	"fmt"

	"github.com/riicchhaarrd/rcc/ast"
	"github.com/riicchhaarrd/rcc/token"
)

// Parser holds parsing state over a fixed token slice.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over tokens (which should end with an EOF token,
// as lexer.Lex always produces).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a full translation unit into a Program node, with parent
// back-references wired for the whole tree.
func Parse(tokens []token.Token) (*ast.ProgramNode, error) {
	p := New(tokens)
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	ast.AttachParents(prog)
	return prog, nil
}

func (p *Parser) current() token.Token { return p.tokens[p.pos] }

func (p *Parser) peek(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.current().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.check(k) {
		return token.Token{}, fmt.Errorf("line %d: expected %v, got %v", p.current().Line, k, p.current().Kind)
	}
	return p.advance(), nil
}

func isTypeStart(k token.Kind) bool {
	return token.IsPrimitiveType(k) || k == token.KwConst || k == token.KwStruct
}

func (p *Parser) parseProgram() (*ast.ProgramNode, error) {
	prog := &ast.ProgramNode{}
	for !p.check(token.EOF) {
		d, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	return prog, nil
}

func (p *Parser) parseTopLevel() (ast.Node, error) {
	switch p.current().Kind {
	case token.KwStruct:
		return p.parseStructDecl()
	case token.KwEnum:
		return p.parseEnumDecl()
	case token.KwTypedef:
		return p.parseTypedefDecl()
	}
	return p.parseFunctionOrVariableDecl()
}

func (p *Parser) parseDataType() (ast.Node, error) {
	var quals ast.Qualifier
	for p.check(token.KwConst) || p.check(token.KwUnsigned) {
		if p.match(token.KwConst) {
			quals |= ast.QualConst
		}
		if p.match(token.KwUnsigned) {
			quals |= ast.QualUnsigned
		}
	}
	var base ast.Node
	if p.check(token.KwStruct) {
		p.advance()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		base = &ast.StructDeclNode{Name: name.Ident}
	} else {
		prim, err := p.parsePrimitive()
		if err != nil {
			return nil, err
		}
		base = &ast.PrimitiveDataTypeNode{Primitive: prim, Qualifiers: quals}
	}
	for p.match(token.Kind('*')) {
		base = &ast.PointerDataTypeNode{Inner: base}
	}
	return base, nil
}

func (p *Parser) parsePrimitive() (ast.Primitive, error) {
	switch p.advance().Kind {
	case token.KwChar:
		return ast.PrimChar, nil
	case token.KwShort:
		return ast.PrimShort, nil
	case token.KwInt:
		return ast.PrimInt, nil
	case token.KwLong:
		return ast.PrimLong, nil
	case token.KwFloat:
		return ast.PrimFloat, nil
	case token.KwDouble:
		return ast.PrimDouble, nil
	case token.KwVoid:
		return ast.PrimVoid, nil
	}
	return 0, fmt.Errorf("line %d: expected a type name", p.peek(-1).Line)
}

func (p *Parser) parseFunctionOrVariableDecl() (ast.Node, error) {
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if p.check(token.Kind('(')) {
		return p.parseFunctionDeclTail(name.Ident, dt)
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

func (p *Parser) parseFunctionDeclTail(name string, returnType ast.Node) (ast.Node, error) {
	if _, err := p.expect(token.Kind('(')); err != nil {
		return nil, err
	}
	fn := &ast.FunctionDeclNode{Name: name, ReturnType: returnType}
	for !p.check(token.Kind(')')) {
		if len(fn.Params) > 0 {
			if _, err := p.expect(token.Kind(',')); err != nil {
				return nil, err
			}
		}
		if p.match(token.Ellipsis) {
			fn.Variadic = true
			break
		}
		if len(fn.Params) >= ast.MaxParams {
			return nil, ErrTooManyParams
		}
		pdt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &ast.VariableDeclNode{Name: pname.Ident, DataType: pdt})
	}
	if _, err := p.expect(token.Kind(')')); err != nil {
		return nil, err
	}

	if p.match(token.Kind(';')) {
		return fn, nil // prototype
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseStructDecl() (ast.Node, error) {
	p.advance() // 'struct'
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	sd := &ast.StructDeclNode{Name: name.Ident}
	if _, err := p.expect(token.Kind('{')); err != nil {
		return nil, err
	}
	for !p.check(token.Kind('}')) {
		if len(sd.Fields) >= ast.MaxFields {
			return nil, ErrTooManyFields
		}
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		fname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Kind(';')); err != nil {
			return nil, err
		}
		sd.Fields = append(sd.Fields, &ast.VariableDeclNode{Name: fname.Ident, DataType: dt})
	}
	if _, err := p.expect(token.Kind('}')); err != nil {
		return nil, err
	}
	_, err = p.expect(token.Kind(';'))
	return sd, err
}

func (p *Parser) parseEnumDecl() (ast.Node, error) {
	p.advance() // 'enum'
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	ed := &ast.EnumDeclNode{Name: name.Ident}
	if _, err := p.expect(token.Kind('{')); err != nil {
		return nil, err
	}
	for !p.check(token.Kind('}')) {
		if len(ed.Values) > 0 {
			if _, err := p.expect(token.Kind(',')); err != nil {
				return nil, err
			}
		}
		if p.check(token.Kind('}')) {
			break // trailing comma
		}
		if len(ed.Values) >= ast.MaxEnumVals {
			return nil, ErrTooManyEnumValues
		}
		vname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		ev := &ast.EnumValueNode{Name: vname.Ident}
		if p.match(token.Kind('=')) {
			n, err := p.expect(token.Integer)
			if err != nil {
				return nil, err
			}
			v := n.Int
			ev.Value = &v
		}
		ed.Values = append(ed.Values, ev)
	}
	if _, err := p.expect(token.Kind('}')); err != nil {
		return nil, err
	}
	_, err = p.expect(token.Kind(';'))
	return ed, err
}

func (p *Parser) parseTypedefDecl() (ast.Node, error) {
	p.advance() // 'typedef'
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Kind(';')); err != nil {
		return nil, err
	}
	return &ast.TypedefDeclNode{Name: name.Ident, Type: dt}, nil
}
