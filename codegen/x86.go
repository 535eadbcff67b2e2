package codegen

// Register numbers, in the x86 ModRM encoding order (spec.md §4.3 /
// original_source/x86.c).
const (
	EAX = 0
	ECX = 1
	EDX = 2
	EBX = 3
	ESP = 4
	EBP = 5
	ESI = 6
	EDI = 7
)

// movImm32 emits `mov r32, imm32` (0xB8+r id) and updates r's compile-time
// shadow to imm.
func (c *Context) movImm32(r int, imm uint32) {
	c.emitByte(0xB8 + byte(r))
	c.emitU32Placeholder()
	c.patchU32(c.Pos()-4, imm)
	c.shadowSet(r, int64(imm))
}

// movImm32Reloc is movImm32 but the immediate is an unresolved reference
// into kind (code or data); a Relocation is recorded instead of a shadow.
func (c *Context) movImm32Reloc(r int, target int, kind RelocKind) {
	c.emitByte(0xB8 + byte(r))
	at := c.emitU32Placeholder()
	c.addRelocation(at, target, 4, kind)
	c.shadowInvalidate(r)
}

// push emits `push r32` (0x50+r).
func (c *Context) push(r int) {
	c.emitByte(0x50 + byte(r))
}

// pop emits `pop r32` (0x58+r) and invalidates r's shadow.
func (c *Context) pop(r int) {
	c.emitByte(0x58 + byte(r))
	c.shadowInvalidate(r)
}

// addRR emits `add dst, src` (0x01 /r) unless both registers' shadows are
// known to be zero, in which case the (provably dead) instruction is
// elided entirely — the single peephole spec.md §4.3 specifies. dst's
// shadow is invalidated (or updated, if both operands are known).
func (c *Context) addRR(dst, src int) {
	if c.shadowIsZero(dst) && c.shadowIsZero(src) {
		c.shadowSet(dst, 0)
		return
	}
	dv, sv := c.registers[dst], c.registers[src]
	c.emitByte(0x01)
	c.emitByte(modRM(3, src, dst))
	if dv != nil && sv != nil {
		c.shadowSet(dst, *dv+*sv)
	} else {
		c.shadowInvalidate(dst)
	}
}

// movRR emits `mov dst, src` (0x89 /r), a plain register-to-register copy.
func (c *Context) movRR(dst, src int) {
	if dst == src {
		return
	}
	c.emitByte(0x89)
	c.emitByte(modRM(3, src, dst))
	if sv := c.registers[src]; sv != nil {
		c.shadowSet(dst, *sv)
	} else {
		c.shadowInvalidate(dst)
	}
}

// subRR emits `sub dst, src` (0x29 /r).
func (c *Context) subRR(dst, src int) {
	c.emitByte(0x29)
	c.emitByte(modRM(3, src, dst))
	c.shadowInvalidate(dst)
}

// modRM builds a ModRM byte from its mod, reg and rm fields: mod=3 is
// register-direct, mod=0 is [rm] with no displacement, mod=1 is
// [rm+disp8].
func modRM(mod, reg, rm int) byte {
	return byte(mod<<6) | byte(reg<<3) | byte(rm)
}

// disp8FromVarOffset converts a local-variable offset (0 = first local, at
// ebp-4) into the signed displacement byte x86.c's codegen uses:
// 0xFC - offset (ebp-4-offset). Parameter displacements are not passed
// through it.
func disp8FromVarOffset(offset int) byte {
	return byte(0xFC - offset)
}

// movLoadDisp8 emits `mov r32, [ebp+disp8]` (0x8B 0x45+8*r disp8).
func (c *Context) movLoadDisp8(r int, disp int8) {
	c.emitByte(0x8B)
	c.emitByte(0x45 + byte(r)*8)
	c.emitByte(byte(disp))
	c.shadowInvalidate(r)
}

// movStoreDisp8 emits `mov [ebp+disp8], r32` (0x89 0x45+8*r disp8), or the
// byte-width form (0x88) when size8 is set — used for narrow (char-sized)
// stores.
func (c *Context) movStoreDisp8(r int, disp int8, size8 bool) {
	if size8 {
		c.emitByte(0x88)
	} else {
		c.emitByte(0x89)
	}
	c.emitByte(0x45 + byte(r)*8)
	c.emitByte(byte(disp))
}

// leaDisp8 emits `lea r32, [ebp+disp8]` (0x8D 0x45+8*r disp8).
func (c *Context) leaDisp8(r int, disp int8) {
	c.emitByte(0x8D)
	c.emitByte(0x45 + byte(r)*8)
	c.emitByte(byte(disp))
	c.shadowInvalidate(r)
}

// cmpRR emits `cmp dst, src` (0x39 /r).
func (c *Context) cmpRR(dst, src int) {
	c.emitByte(0x39)
	c.emitByte(modRM(3, src, dst))
}

// jccRel8 emits a short conditional jump `0x7x rel8` and returns the
// offset of the (not yet patched) displacement byte.
func (c *Context) jccRel8(cc byte) int {
	c.emitByte(0x70 | cc)
	return c.emitByte(0) // placeholder
}

// jmpRel8 emits a short unconditional jump and returns the displacement
// byte's offset.
func (c *Context) jmpRel8() int {
	c.emitByte(0xEB)
	return c.emitByte(0)
}

// jzRel32 emits `jz rel32` (0x0F 0x84 rel32) and returns the placeholder
// offset.
func (c *Context) jzRel32() int {
	c.emitByte(0x0F)
	c.emitByte(0x84)
	return c.emitU32Placeholder()
}

// jmpRel32 emits `jmp rel32` (0xE9 rel32) and returns the placeholder
// offset.
func (c *Context) jmpRel32() int {
	c.emitByte(0xE9)
	return c.emitU32Placeholder()
}

// patchRel8To patches the rel8 placeholder at 'at' to branch to target,
// computed relative to the byte after the displacement. Returns
// ErrShortJumpOverflow if target is out of an 8-bit signed range.
func (c *Context) patchRel8To(at, target int) error {
	rel := target - (at + 1)
	if rel < -128 || rel > 127 {
		return ErrShortJumpOverflow
	}
	c.patchRel8(at, int8(rel))
	return nil
}

// patchRel32To patches the rel32 placeholder at 'at' (where 'at' is the
// offset of the 4-byte field) to branch to target.
func (c *Context) patchRel32To(at, target int) {
	c.patchU32(at, uint32(int32(target-(at+4))))
}

// xorRR emits `xor dst, src` (0x31 /r).
func (c *Context) xorRR(dst, src int) {
	c.emitByte(0x31)
	c.emitByte(modRM(3, src, dst))
	c.shadowInvalidate(dst)
}

// incR emits `inc r32` (0x40+r).
func (c *Context) incR(r int) {
	c.emitByte(0x40 + byte(r))
	c.shadowInvalidate(r)
}

// decR emits `dec r32` (0x48+r).
func (c *Context) decR(r int) {
	c.emitByte(0x48 + byte(r))
	c.shadowInvalidate(r)
}

// negR emits `neg r32` (0xF7 /3).
func (c *Context) negR(r int) {
	c.emitByte(0xF7)
	c.emitByte(modRM(3, 3, r))
	c.shadowInvalidate(r)
}

// notR emits `not r32` (0xF7 /2).
func (c *Context) notR(r int) {
	c.emitByte(0xF7)
	c.emitByte(modRM(3, 2, r))
	c.shadowInvalidate(r)
}

// andImm8 emits `and r32, imm8` via the sign-extending short form
// (0x83 /4 ib) — used for the `!x` boolean-normalization idiom.
func (c *Context) andImm8(r int, imm int8) {
	c.emitByte(0x83)
	c.emitByte(modRM(3, 4, r))
	c.emitByte(byte(imm))
	c.shadowInvalidate(r)
}

// imulRR emits `imul dst, src` (0x0F 0xAF /r), sign-extended 32x32->32.
func (c *Context) imulRR(dst, src int) {
	c.emitByte(0x0F)
	c.emitByte(0xAF)
	c.emitByte(modRM(3, dst, src))
	c.shadowInvalidate(dst)
}

// cdq emits `cdq` (0x99), sign-extending eax into edx:eax ahead of idiv.
func (c *Context) cdq() { c.emitByte(0x99) }

// idivR emits `idiv r32` (0xF7 /7).
func (c *Context) idivR(r int) {
	c.emitByte(0xF7)
	c.emitByte(modRM(3, 7, r))
	c.shadowInvalidate(EAX)
	c.shadowInvalidate(EDX)
}

// shiftCL emits `shl/sar r32, cl` (0xD3 /4 or /7); right shifts are
// arithmetic.
func (c *Context) shiftCL(r int, left bool) {
	c.emitByte(0xD3)
	reg := 7
	if left {
		reg = 4
	}
	c.emitByte(modRM(3, reg, r))
	c.shadowInvalidate(r)
}

// orRR / andRR (with xorRR above) mirror addRR/subRR for the bitwise operators.
func (c *Context) orRR(dst, src int) {
	c.emitByte(0x09)
	c.emitByte(modRM(3, src, dst))
	c.shadowInvalidate(dst)
}

func (c *Context) andRR(dst, src int) {
	c.emitByte(0x21)
	c.emitByte(modRM(3, src, dst))
	c.shadowInvalidate(dst)
}

// callRel32 emits `call rel32` (0xE8 rel32) and returns the placeholder
// offset.
func (c *Context) callRel32() int {
	c.emitByte(0xE8)
	return c.emitU32Placeholder()
}

// int80 emits `int 0x80` (0xCD 0x80), the Linux x86-32 syscall gate.
func (c *Context) int80() {
	c.emitByte(0xCD)
	c.emitByte(0x80)
}

// prologue emits the standard frame setup:
// push ebp; mov ebp,esp; sub esp, imm32 (always the 32-bit immediate
// form, matching x86.c regardless of how small localSize is).
func (c *Context) prologue(localSize uint32) {
	c.push(EBP)
	c.emitByte(0x89) // mov ebp, esp -> 0x89 /r, mod=3 reg=esp(4) rm=ebp(5)
	c.emitByte(modRM(3, ESP, EBP))
	c.emitByte(0x81) // sub esp, imm32 -> 0x81 /5 id
	c.emitByte(modRM(3, 5, ESP))
	c.emitU32Placeholder()
	c.patchU32(c.Pos()-4, localSize)
	c.shadowInvalidate(ESP)
	c.shadowInvalidate(EBP)
}

// epilogue emits mov esp,ebp; pop ebp; ret.
func (c *Context) epilogue() {
	c.emitByte(0x89)
	c.emitByte(modRM(3, EBP, ESP))
	c.pop(EBP)
	c.emitByte(0xC3)
}

// retBare emits a bare ret (0xC3) without unwinding a frame. The generator
// does not call it: main sets up a frame and leaves through the exit
// syscall.
func (c *Context) retBare() { c.emitByte(0xC3) }
