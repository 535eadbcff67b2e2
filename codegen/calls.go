package codegen

import (
	"fmt"

	"github.com/riicchhaarrd/rcc/ast"
)

// builtins are call targets the generator recognizes by name and expands
// directly to a syscall or a single instruction, rather than emitting a
// `call` to a user-defined function — grounded on
// original_source/x86.c's function_call_ident special cases for exit,
// write, and int3.
var builtins map[string]func(c *Context, args []ast.Node) (int, error)

// The table is filled in init rather than by its declaration because the
// handlers reach rvalue, which reads builtins again.
func init() {
	builtins = map[string]func(c *Context, args []ast.Node) (int, error){
		"exit":  (*Context).callExit,
		"write": (*Context).callWrite,
		"int3":  (*Context).callInt3,
	}
}

func (c *Context) rvalueCall(n *ast.FunctionCallExprNode) (int, error) {
	if len(n.Args) > ast.MaxArgs {
		return 0, ErrTooManyArguments
	}
	callee, ok := n.Callee.(*ast.IdentifierNode)
	if !ok {
		return 0, fmt.Errorf("indirect calls: %w", ErrUnhandledASTNode)
	}
	if fn, ok := builtins[callee.Name]; ok {
		return fn(c, n.Args)
	}
	return c.callUserFunction(callee.Name, n.Args)
}

func (c *Context) callExit(args []ast.Node) (int, error) {
	code := uint32(0)
	if len(args) > 0 {
		r, err := c.rvalue(args[0])
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

// callWrite expands write(fd, buf, len) to the Linux write syscall
// (eax=4, ebx=fd, ecx=buf, edx=len).
func (c *Context) callWrite(args []ast.Node) (int, error) {
	if len(args) != 3 {
		return 0, fmt.Errorf("write expects 3 arguments: %w", ErrUnhandledASTNode)
	}
	// Every argument is pushed before any is popped into its register, so
	// evaluating a later argument cannot clobber an earlier one.
	for _, a := range args {
		r, err := c.rvalue(a)
		if err != nil {
			return 0, err
		}
		c.push(r)
	}
	c.pop(EDX)
	c.pop(ECX)
	c.pop(EBX)
	c.movImm32(EAX, 4)
	c.int80()
	return EAX, nil
}

// callInt3 splices a single breakpoint instruction (0xCC) directly — a
// debugging escape hatch, not a real call.
func (c *Context) callInt3(args []ast.Node) (int, error) {
	c.emitByte(0xCC)
	return EAX, nil
}

// callUserFunction pushes arguments right-to-left (cdecl) and emits a
// relative call, deferring resolution of the target's address to
// resolvePendingCalls if the callee hasn't been generated yet.
func (c *Context) callUserFunction(name string, args []ast.Node) (int, error) {
	for i := len(args) - 1; i >= 0; i-- {
		r, err := c.rvalue(args[i])
		if err != nil {
			return 0, err
		}
		c.push(r)
	}

	if fn := c.lookupFunction(name); fn != nil {
		at := c.callRel32()
		c.patchRel32To(at, fn.Location)
	} else {
		at := c.callRel32()
		c.PendingCalls = append(c.PendingCalls, PendingCall{At: at, Name: name})
	}

	if n := len(args); n > 0 {
		c.emitByte(0x81) // add esp, imm32 (4*numargs)
		c.emitByte(modRM(3, 0, ESP))
		at := c.emitU32Placeholder()
		c.patchU32(at, uint32(4*n))
		c.shadowInvalidate(ESP)
	}
	return EAX, nil
}

// resolvePendingCalls patches every forward-referenced call site now that
// every FunctionDecl has been processed. A name that still isn't a known
// function is an unknown callee: per spec.md §7 this is non-fatal — the
// call is overwritten with a 3-byte 0xCC sentinel (padded with two NOPs to
// preserve the 5-byte call-site length) and a Warning is recorded instead
// of aborting compilation.
func (c *Context) resolvePendingCalls() {
	for _, pc := range c.PendingCalls {
		if fn := c.lookupFunction(pc.Name); fn != nil {
			c.patchRel32To(pc.At, fn.Location)
			continue
		}
		opcodeAt := pc.At - 1
		c.Instr[opcodeAt] = 0xCC
		c.Instr[opcodeAt+1] = 0xCC
		c.Instr[opcodeAt+2] = 0xCC
		c.Instr[opcodeAt+3] = 0x90
		c.Instr[opcodeAt+4] = 0x90
		c.warn(fmt.Sprintf("call to unknown function %q replaced with a breakpoint sentinel", pc.Name))
	}
}
