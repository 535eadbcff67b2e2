package codegen

import (
	"fmt"
	"math"

	"github.com/riicchhaarrd/rcc/ast"
	"github.com/riicchhaarrd/rcc/token"
)

// rvalue generates code that evaluates n and leaves its value in EAX,
// returning EAX for call-site uniformity (every rvalue lands in the same
// register; the returned register exists so call sites read naturally
// next to original_source/x86.c's rvalue()/lvalue() split).
func (c *Context) rvalue(n ast.Node) (int, error) {
	switch t := n.(type) {
	case *ast.LiteralNode:
		return c.rvalueLiteral(t)

	case *ast.IdentifierNode:
		return c.loadVariable(t.Name, EAX)

	case *ast.BinExprNode:
		return c.rvalueBinExpr(t)

	case *ast.UnaryExprNode:
		return c.rvalueUnaryExpr(t)

	case *ast.TernaryExprNode:
		return c.rvalueTernary(t)

	case *ast.AssignmentExprNode:
		return c.rvalueAssignment(t)

	case *ast.SeqExprNode:
		return c.rvalueSeqExpr(t)

	case *ast.CastNode:
		return c.rvalueCast(t)

	case *ast.FunctionCallExprNode:
		return c.rvalueCall(t)

	case *ast.MemberExprNode:
		return c.rvalueMember(t)

	case *ast.AddressOfExprNode:
		return c.rvalueAddressOf(t)

	case *ast.SizeofExprNode:
		return c.rvalueSizeof(t)

	case *ast.ExitExprNode:
		return c.rvalueExit(t)

	default:
		return 0, fmt.Errorf("%T: %w", n, ErrUnhandledASTNode)
	}
}

func (c *Context) rvalueLiteral(n *ast.LiteralNode) (int, error) {
	switch n.Variant {
	case ast.IntLiteral:
		c.movImm32(EAX, uint32(n.Int))
		return EAX, nil
	case ast.StringLiteral:
		off := c.addData(append([]byte(n.Str), 0))
		c.movImm32Reloc(EAX, off, RelocData)
		return EAX, nil
	case ast.FloatLiteral, ast.DoubleLiteral:
		// No floating-point codegen: the bit pattern is reinterpreted as
		// an integer immediate, matching this generator's integer-only
		// register file.
		c.movImm32(EAX, math.Float32bits(float32(n.Float64)))
		return EAX, nil
	}
	return 0, ErrUnhandledLiteralKind
}

// loadVariable loads name's value from its stack slot into dst. Pointer-
// sized "by reference" aggregates load the pointer itself, not a
// dereferenced value — matching original_source/x86.c's load_variable().
func (c *Context) loadVariable(name string, dst int) (int, error) {
	if c.current == nil {
		return 0, fmt.Errorf("identifier %q: %w", name, ErrUnknownIdentifier)
	}
	off, ok := c.current.Variables[name]
	if !ok {
		return 0, fmt.Errorf("identifier %q: %w", name, ErrUnknownIdentifier)
	}
	c.movLoadDisp8(dst, dispFor(off))
	return dst, nil
}

// dispFor converts the signed slot offset recorded in Function.Variables
// (positive for params at ebp+off, negative for locals at ebp-size-n) into
// the raw displacement byte the mov/lea-disp8 helpers encode; the offsets
// are already stored in that exact representation.
func dispFor(off int) int8 {
	return int8(off)
}

// lvalue generates the address of an assignable expression into dst,
// returning dst.
func (c *Context) lvalue(n ast.Node, dst int) (int, error) {
	switch t := n.(type) {
	case *ast.IdentifierNode:
		if c.current == nil {
			return 0, fmt.Errorf("identifier %q: %w", t.Name, ErrUnknownIdentifier)
		}
		off, ok := c.current.Variables[t.Name]
		if !ok {
			return 0, fmt.Errorf("identifier %q: %w", t.Name, ErrUnknownIdentifier)
		}
		if c.current.ByReference[t.Name] {
			c.movLoadDisp8(dst, dispFor(off))
		} else {
			c.leaDisp8(dst, dispFor(off))
		}
		return dst, nil

	case *ast.MemberExprNode:
		if t.AsPointer {
			// object is itself a pointer value (obj->prop): load it
			// rather than taking its address.
			if _, err := c.rvalue(t.Object); err != nil {
				return 0, err
			}
			if dst != EAX {
				c.movRR(dst, EAX)
			}
		} else if _, err := c.lvalue(t.Object, dst); err != nil {
			return 0, err
		}
		c.push(dst)
		propReg, err := c.rvalue(t.Property)
		if err != nil {
			return 0, err
		}
		other := EAX
		if propReg == EAX {
			other = ECX
		}
		c.pop(other)
		c.addRR(other, propReg)
		if other != dst {
			c.movRR(dst, other)
		}
		return dst, nil

	default:
		return 0, fmt.Errorf("%T is not assignable: %w", n, ErrUnhandledASTNode)
	}
}

func (c *Context) rvalueBinExpr(n *ast.BinExprNode) (int, error) {
	if _, err := c.rvalue(n.Left); err != nil {
		return 0, err
	}
	c.push(EAX)
	if _, err := c.rvalue(n.Right); err != nil {
		return 0, err
	}
	c.pop(ECX) // ecx = left, eax = right

	switch token.Kind(n.Operator) {
	case token.Kind('+'):
		c.addRR(EAX, ECX)
	case token.Kind('-'):
		c.subRR(ECX, EAX)
		c.movRR(EAX, ECX)
	case token.Kind('*'):
		c.imulRR(EAX, ECX)
	case token.Kind('/'), token.Kind('%'):
		c.movRR(EBX, EAX) // ebx = divisor (right)
		c.movRR(EAX, ECX) // eax = dividend (left)
		c.cdq()
		c.idivR(EBX)
		if token.Kind(n.Operator) == token.Kind('%') {
			c.movRR(EAX, EDX)
		}
	case token.Kind('&'):
		c.andRR(EAX, ECX)
	case token.Kind('|'):
		c.orRR(EAX, ECX)
	case token.Kind('^'):
		c.xorRR(EAX, ECX)
	case token.Shl:
		c.movRR(EBX, EAX) // ebx = shift amount (right)
		c.movRR(EAX, ECX) // eax = value (left)
		c.movRR(ECX, EBX)
		c.shiftCL(EAX, true)
	case token.Shr:
		c.movRR(EBX, EAX)
		c.movRR(EAX, ECX)
		c.movRR(ECX, EBX)
		c.shiftCL(EAX, false)
	case token.Kind('>'):
		return c.compareBool(ECX, EAX, 0xF)
	case token.Kind('<'):
		return c.compareBool(ECX, EAX, 0xC)
	case token.Ge:
		return c.compareBool(ECX, EAX, 0xD)
	case token.Le:
		return c.compareBool(ECX, EAX, 0xE)
	case token.Eq:
		return c.compareBool(ECX, EAX, 0x4)
	case token.Ne:
		return c.compareBool(ECX, EAX, 0x5)
	default:
		return 0, fmt.Errorf("operator %v: %w", n.Operator, ErrUnhandledASTNode)
	}
	return EAX, nil
}

// compareBool emits `cmp dst,src` followed by the four-instruction
// 0/1-boolean idiom from original_source/x86.c: a short conditional jump
// to a "true" tail that sets eax=1, falling through to eax=0 otherwise.
func (c *Context) compareBool(dst, src int, cc byte) (int, error) {
	c.cmpRR(dst, src)
	trueJump := c.jccRel8(cc)
	c.xorRR(EAX, EAX)
	endJump := c.jmpRel8()
	truePos := c.Pos()
	if err := c.patchRel8To(trueJump, truePos); err != nil {
		return 0, err
	}
	c.xorRR(EAX, EAX)
	c.incR(EAX)
	endPos := c.Pos()
	if err := c.patchRel8To(endJump, endPos); err != nil {
		return 0, err
	}
	return EAX, nil
}

func (c *Context) rvalueUnaryExpr(n *ast.UnaryExprNode) (int, error) {
	if lit, ok := n.Argument.(*ast.LiteralNode); ok && lit.Variant == ast.IntLiteral {
		// Constant-fold the literal case, matching x86.c's unary-expr
		// handling for a literal operand.
		v := lit.Int
		switch token.Kind(n.Operator) {
		case token.Kind('-'):
			v = -v
		case token.Kind('+'):
		case token.Kind('!'):
			if v == 0 {
				v = 1
			} else {
				v = 0
			}
		case token.Kind('~'):
			v = ^v
		default:
			return 0, fmt.Errorf("unary operator %v: %w", n.Operator, ErrUnhandledASTNode)
		}
		c.movImm32(EAX, uint32(v))
		return EAX, nil
	}

	switch token.Kind(n.Operator) {
	case token.Inc, token.Dec:
		return c.rvalueIncDec(n)
	}

	if _, err := c.rvalue(n.Argument); err != nil {
		return 0, err
	}
	switch token.Kind(n.Operator) {
	case token.Kind('-'):
		c.negR(EAX)
	case token.Kind('+'):
	case token.Kind('!'):
		c.notR(EAX)
		c.andImm8(EAX, 1)
	case token.Kind('~'):
		c.notR(EAX)
	default:
		return 0, fmt.Errorf("unary operator %v: %w", n.Operator, ErrUnhandledASTNode)
	}
	return EAX, nil
}

// rvalueIncDec handles both prefix (++x) and postfix (x++) forms: the
// address is loaded once, the slot is read-modified-written, and the
// register handed back holds the new value for prefix or the old value
// for postfix.
func (c *Context) rvalueIncDec(n *ast.UnaryExprNode) (int, error) {
	addrReg, err := c.lvalue(n.Argument, EBX)
	if err != nil {
		return 0, err
	}
	c.emitByte(0x8B) // mov eax, [ebx]
	c.emitByte(modRM(0, EAX, addrReg))

	if !n.Prefix {
		c.movRR(ECX, EAX) // save the old value to return
	}
	if token.Kind(n.Operator) == token.Inc {
		c.incR(EAX)
	} else {
		c.decR(EAX)
	}
	c.emitByte(0x89) // mov [ebx], eax
	c.emitByte(modRM(0, EAX, addrReg))

	if !n.Prefix {
		c.movRR(EAX, ECX)
	}
	return EAX, nil
}

func (c *Context) rvalueTernary(n *ast.TernaryExprNode) (int, error) {
	if _, err := c.rvalue(n.Test); err != nil {
		return 0, err
	}
	c.emitByte(0x85)
	c.emitByte(modRM(3, EAX, EAX))
	falseJump := c.jccRel8(0x4)
	if _, err := c.rvalue(n.Then); err != nil {
		return 0, err
	}
	endJump := c.jmpRel8()
	falsePos := c.Pos()
	if err := c.patchRel8To(falseJump, falsePos); err != nil {
		return 0, err
	}
	if _, err := c.rvalue(n.Else); err != nil {
		return 0, err
	}
	endPos := c.Pos()
	if err := c.patchRel8To(endJump, endPos); err != nil {
		return 0, err
	}
	return EAX, nil
}

func (c *Context) rvalueAssignment(n *ast.AssignmentExprNode) (int, error) {
	if _, err := c.rvalue(n.Right); err != nil {
		return 0, err
	}
	c.push(EAX)
	addrReg, err := c.lvalue(n.Left, EBX)
	if err != nil {
		return 0, err
	}
	c.pop(EAX)

	switch token.Kind(n.Operator) {
	case token.Kind('='):
		// value already in eax
	case token.AddAssign, token.SubAssign:
		cur := EDX
		c.emitByte(0x8B) // mov edx, [ebx]  (mod=0, reg=edx, rm=ebx -> disp0)
		c.emitByte(modRM(0, EDX, addrReg))
		if token.Kind(n.Operator) == token.AddAssign {
			c.addRR(cur, EAX)
		} else {
			c.subRR(cur, EAX)
		}
		c.movRR(EAX, cur)
	default:
		return 0, fmt.Errorf("assignment operator %v: %w", n.Operator, ErrUnhandledASTNode)
	}

	// Store eax through the address in addrReg: mov [addrReg], eax
	c.emitByte(0x89)
	c.emitByte(modRM(0, EAX, addrReg))
	return EAX, nil
}

func (c *Context) rvalueSeqExpr(n *ast.SeqExprNode) (int, error) {
	if len(n.Exprs) > ast.MaxSeqExprs {
		return 0, ErrTooManySeqExprs
	}
	var last int
	for _, e := range n.Exprs {
		r, err := c.rvalue(e)
		if err != nil {
			return 0, err
		}
		last = r
	}
	return last, nil
}

func (c *Context) rvalueCast(n *ast.CastNode) (int, error) {
	if _, err := c.rvalue(n.Expr); err != nil {
		return 0, err
	}
	size, err := dataTypeSize(n.Type)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		c.andEaxImm32(0x000000FF)
	case 2:
		c.andEaxImm32(0x0000FFFF)
	}
	return EAX, nil
}

// andEaxImm32 emits `and eax, imm32` (0x25 id), the truncation mask used
// by narrowing casts.
func (c *Context) andEaxImm32(mask uint32) {
	c.emitByte(0x25)
	at := c.emitU32Placeholder()
	c.patchU32(at, mask)
	c.shadowInvalidate(EAX)
}

func (c *Context) rvalueMember(n *ast.MemberExprNode) (int, error) {
	if _, err := c.lvalue(n, EBX); err != nil {
		return 0, err
	}
	c.emitByte(0x8B) // mov eax, [ebx]
	c.emitByte(modRM(0, EAX, EBX))
	c.shadowInvalidate(EAX)
	return EAX, nil
}

func (c *Context) rvalueAddressOf(n *ast.AddressOfExprNode) (int, error) {
	return c.lvalue(n.Operand, EAX)
}

func (c *Context) rvalueSizeof(n *ast.SizeofExprNode) (int, error) {
	size, err := dataTypeSize(n.Operand)
	if err != nil {
		// Operand may be a value expression rather than a type; this
		// minimal generator only resolves the type-operand form.
		return 0, fmt.Errorf("sizeof: %w", ErrUnhandledDataType)
	}
	c.movImm32(EAX, uint32(size))
	return EAX, nil
}

func (c *Context) rvalueExit(n *ast.ExitExprNode) (int, error) {
	code := uint32(0)
	if n.Code != nil {
		r, err := c.rvalue(n.Code)
		if err != nil {
			return 0, err
		}
		if r != EBX {
			c.movRR(EBX, r)
		}
		c.xorRR(EAX, EAX)
		c.incR(EAX)
		c.int80()
		return EAX, nil
	}
	c.emitExitSyscall(code)
	return EAX, nil
}
