// Package codegen walks a parsed ast.Node tree in a single post-order pass
// and emits raw x86-32 machine code bytes directly into a Context — no
// textual assembly stage, no external assembler or linker (spec.md §4 and
// §5). Byte sequences for every instruction form are grounded on
// original_source/x86.c.
package codegen

import (
	"fmt"

	"github.com/riicchhaarrd/rcc/ast"
)

// Generate compiles prog into a fresh Context: a bootstrap stub followed
// by the program's declarations, with a deferred relocation patching the
// stub's call site to main's eventual location.
func Generate(prog *ast.ProgramNode) (*Context, error) {
	c := NewContext()
	emitBootstrap(c)
	if err := c.processProgram(prog); err != nil {
		return nil, err
	}
	return c, nil
}

// emitBootstrap writes the entry stub every compiled program starts with:
// load main's address, call it, then exit(0) via the Linux syscall gate.
// Mirrors original_source/x86.c's x86() top-level sequence.
func emitBootstrap(c *Context) {
	c.emitByte(0xB8) // mov eax, imm32 (placeholder: main's address)
	entryPatch := c.emitU32Placeholder()
	c.addRelocation(entryPatch, 0 /* patched once main's Location is known */, 4, RelocCode)

	c.emitByte(0xFF) // call eax -> 0xFF /2
	c.emitByte(modRM(3, 2, EAX))

	c.xorRR(EBX, EBX)
	c.xorRR(EAX, EAX)
	c.incR(EAX)
	c.int80()
}

func (c *Context) processProgram(n *ast.ProgramNode) error {
	for _, d := range n.Decls {
		if err := c.process(d); err != nil {
			return err
		}
	}
	c.resolvePendingCalls()

	// Resolve the bootstrap's call target now that every function has a
	// known location.
	if main := c.lookupFunction("main"); main != nil {
		c.Relocations[0].To = main.Location
		c.Entry = uint32(main.Location)
	}
	return nil
}

func (c *Context) lookupFunction(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// process dispatches on n's kind, generating statements and declarations
// for their effect. Expression nodes fall through to rvalue.
func (c *Context) process(n ast.Node) error {
	switch t := n.(type) {
	case *ast.BlockStmtNode:
		for _, s := range t.Stmts {
			if err := c.process(s); err != nil {
				return err
			}
		}
		return nil

	case *ast.FunctionDeclNode:
		return c.processFunctionDecl(t)

	case *ast.VariableDeclNode:
		return c.processVariableDecl(t)

	case *ast.StructDeclNode, *ast.TypedefDeclNode, *ast.EnumDeclNode:
		// Pure type declarations contribute no code; their sizing
		// information is consulted by dataTypeSize at use sites.
		return nil

	case *ast.IfStmtNode:
		return c.processIfStmt(t)

	case *ast.ForStmtNode:
		return c.processForStmt(t)

	case *ast.WhileStmtNode:
		return c.processWhileStmt(t)

	case *ast.DoWhileStmtNode:
		return c.processDoWhileStmt(t)

	case *ast.ReturnStmtNode:
		return c.processReturnStmt(t)

	case *ast.BreakStmtNode:
		if !c.inLoop() {
			return ErrBreakOutsideLoop
		}
		at := c.jmpRel32()
		c.addBreakSite(at)
		return nil

	case *ast.ExprStmtNode:
		_, err := c.rvalue(t.Expr)
		return err

	case *ast.EmptyStmtNode:
		return nil

	case *ast.EmitExprNode:
		c.emitByte(t.Opcode)
		return nil

	default:
		_, err := c.rvalue(n)
		return err
	}
}

func (c *Context) processVariableDecl(n *ast.VariableDeclNode) error {
	size, err := dataTypeSize(n.DataType)
	if err != nil {
		return fmt.Errorf("variable %q: %w", n.Name, err)
	}
	if c.current == nil {
		// A top-level variable declaration with no enclosing function: no
		// frame to place it in. It is sized (an unsized type is still an
		// error) and otherwise emits nothing.
		return nil
	}
	offset := c.current.LocalVariableSize
	c.current.Variables[n.Name] = -(offset + size)
	c.current.LocalVariableSize += size

	if n.Initializer != nil {
		v, err := c.rvalue(n.Initializer)
		if err != nil {
			return err
		}
		disp := disp8FromVarOffset(offset + size - 4)
		c.movStoreDisp8(v, int8(disp), isSmall(n.DataType))
	}
	return nil
}

func (c *Context) processFunctionDecl(n *ast.FunctionDeclNode) error {
	if len(n.Params) > ast.MaxParams {
		return ErrTooManyParameters
	}
	fn := &Function{
		Name:        n.Name,
		Location:    c.Pos(),
		Variables:   map[string]int{},
		ByReference: map[string]bool{},
	}
	c.Functions = append(c.Functions, fn)
	if n.Body == nil {
		return nil // prototype only
	}

	isMain := n.Name == "main"
	prev := c.current
	c.current = fn

	// Parameters sit above the saved ebp/return address, at ebp+8+n, laid
	// out left to right. Each takes at least one 4-byte word; an aggregate
	// passed by reference takes a single pointer-sized slot.
	paramOffset := 8
	for _, p := range n.Params {
		sz, err := dataTypeSize(p.DataType)
		if err != nil {
			return err
		}
		slot := sz
		if dataTypePassByReference(p.DataType) {
			slot = PointerSize
		}
		if slot < 4 {
			slot = 4 // cdecl pushes are always word-aligned
		}
		fn.Variables[p.Name] = paramOffset
		if dataTypePassByReference(p.DataType) {
			fn.ByReference[p.Name] = true
		}
		paramOffset += slot
	}

	localSize := countDeclaredLocalSize(n.Body)

	if isMain {
		// main still needs ebp established before its body can address
		// locals via [ebp-disp8] — only its return path differs, exiting
		// via syscall instead of unwinding through a caller, so it skips
		// the epilogue, not the prologue.
		c.prologue(uint32(localSize))
		for _, s := range n.Body.Stmts {
			if err := c.process(s); err != nil {
				c.current = prev
				return err
			}
		}
		c.emitExitSyscall(0)
		c.current = prev
		return nil
	}

	c.prologue(uint32(localSize))
	for _, s := range n.Body.Stmts {
		if err := c.process(s); err != nil {
			c.current = prev
			return err
		}
	}
	c.epilogue()
	c.current = prev
	return nil
}

// countDeclaredLocalSize sums the byte size of every VariableDeclNode
// appearing at the top level of body's statement list — not nested inside
// an if/while/for's own block, matching
// original_source/x86.c's accumulate_local_variable_declaration_size,
// which only ever walks a function body's direct children.
func countDeclaredLocalSize(body *ast.BlockStmtNode) int {
	total := 0
	for _, s := range body.Stmts {
		vd, ok := s.(*ast.VariableDeclNode)
		if !ok {
			continue
		}
		if sz, err := dataTypeSize(vd.DataType); err == nil {
			total += sz
		}
	}
	return total
}

func (c *Context) emitExitSyscall(code uint32) {
	c.movImm32(EBX, code)
	c.xorRR(EAX, EAX)
	c.incR(EAX)
	c.int80()
}

func (c *Context) processReturnStmt(n *ast.ReturnStmtNode) error {
	if c.current != nil && c.current.Name == "main" {
		code := uint32(0)
		if n.Argument != nil {
			if lit, ok := n.Argument.(*ast.LiteralNode); ok && lit.Variant == ast.IntLiteral {
				code = uint32(lit.Int)
			} else {
				r, err := c.rvalue(n.Argument)
				if err != nil {
					return err
				}
				if r != EBX {
					c.movRR(EBX, r)
				}
				c.xorRR(EAX, EAX)
				c.incR(EAX)
				c.int80()
				return nil
			}
		}
		c.emitExitSyscall(code)
		return nil
	}
	if n.Argument != nil {
		r, err := c.rvalue(n.Argument)
		if err != nil {
			return err
		}
		if r != EAX {
			c.movRR(EAX, r)
		}
	}
	c.epilogue()
	return nil
}

func (c *Context) processIfStmt(n *ast.IfStmtNode) error {
	condReg, err := c.rvalue(n.Test)
	if err != nil {
		return err
	}
	c.emitByte(0x85) // test condReg, condReg
	c.emitByte(modRM(3, condReg, condReg))
	elseJump := c.jccRel8(0x4) // jz -> else/end

	if err := c.process(n.Then); err != nil {
		return err
	}

	if n.Else != nil {
		endJump := c.jmpRel8()
		elsePos := c.Pos()
		if err := c.patchRel8To(elseJump, elsePos); err != nil {
			return err
		}
		if err := c.process(n.Else); err != nil {
			return err
		}
		endPos := c.Pos()
		if err := c.patchRel8To(endJump, endPos); err != nil {
			return err
		}
		return nil
	}

	endPos := c.Pos()
	return c.patchRel8To(elseJump, endPos)
}

func (c *Context) processWhileStmt(n *ast.WhileStmtNode) error {
	top := c.Pos()
	condReg, err := c.rvalue(n.Test)
	if err != nil {
		return err
	}
	c.emitByte(0x85)
	c.emitByte(modRM(3, condReg, condReg))
	exitJump := c.jzRel32()

	c.pushLoopEnd()
	if err := c.process(n.Body); err != nil {
		return err
	}
	backJump := c.jmpRel32()
	c.patchRel32To(backJump, top)

	end := c.Pos()
	c.patchRel32To(exitJump, end)
	c.popLoopEndAndPatch(end)
	return nil
}

func (c *Context) processDoWhileStmt(n *ast.DoWhileStmtNode) error {
	top := c.Pos()
	c.pushLoopEnd()
	if err := c.process(n.Body); err != nil {
		return err
	}
	condReg, err := c.rvalue(n.Test)
	if err != nil {
		return err
	}
	c.emitByte(0x85)
	c.emitByte(modRM(3, condReg, condReg))
	exitJump := c.jzRel32()
	backJump := c.jmpRel32()
	c.patchRel32To(backJump, top)
	end := c.Pos()
	c.patchRel32To(exitJump, end)
	c.popLoopEndAndPatch(end)
	return nil
}

func (c *Context) processForStmt(n *ast.ForStmtNode) error {
	if n.Init != nil {
		if err := c.process(wrapExprStmt(n.Init)); err != nil {
			return err
		}
	}
	top := c.Pos()
	var exitJump int
	hasTest := n.Test != nil
	if hasTest {
		condReg, err := c.rvalue(n.Test)
		if err != nil {
			return err
		}
		c.emitByte(0x85)
		c.emitByte(modRM(3, condReg, condReg))
		exitJump = c.jzRel32()
	}

	c.pushLoopEnd()
	if err := c.process(n.Body); err != nil {
		return err
	}
	if n.Update != nil {
		if _, err := c.rvalue(n.Update); err != nil {
			return err
		}
	}
	backJump := c.jmpRel32()
	c.patchRel32To(backJump, top)

	end := c.Pos()
	if hasTest {
		c.patchRel32To(exitJump, end)
	}
	c.popLoopEndAndPatch(end)
	return nil
}

// wrapExprStmt lets a for-loop's Init (which may be either a declaration
// or a bare expression) be processed uniformly via process().
func wrapExprStmt(n ast.Node) ast.Node {
	switch n.(type) {
	case *ast.VariableDeclNode:
		return n
	default:
		return &ast.ExprStmtNode{Expr: n}
	}
}
