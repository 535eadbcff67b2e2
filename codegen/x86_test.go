package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovImm32Encoding(t *testing.T) {
	c := NewContext()
	c.movImm32(EAX, 0x12345678)
	assert.Equal(t, []byte{0xB8, 0x78, 0x56, 0x34, 0x12}, c.Instr)
}

func TestPushPopEncoding(t *testing.T) {
	c := NewContext()
	c.push(EAX)
	c.pop(ECX)
	assert.Equal(t, []byte{0x50, 0x59}, c.Instr)
}

func TestAddRREncoding(t *testing.T) {
	c := NewContext()
	c.addRR(EAX, ECX)
	assert.Equal(t, []byte{0x01, 0xC8}, c.Instr)
}

func TestAddElidedWhenBothShadowsZero(t *testing.T) {
	c := NewContext()
	c.shadowSet(EAX, 0)
	c.shadowSet(ECX, 0)
	c.addRR(EAX, ECX)
	assert.Empty(t, c.Instr, "add with both known-zero operands must be elided")
}

func TestMovLoadDisp8Encoding(t *testing.T) {
	c := NewContext()
	c.movLoadDisp8(EAX, -4)
	assert.Equal(t, []byte{0x8B, 0x45, 0xFC}, c.Instr)
}

func TestLeaDisp8Encoding(t *testing.T) {
	c := NewContext()
	c.leaDisp8(EAX, -4)
	assert.Equal(t, []byte{0x8D, 0x45, 0xFC}, c.Instr)
}

func TestPrologueEpilogueEncoding(t *testing.T) {
	c := NewContext()
	c.prologue(32)
	assert.Equal(t, []byte{
		0x55,             // push ebp
		0x89, 0xE5,       // mov ebp, esp
		0x81, 0xEC, 0x20, 0x00, 0x00, 0x00, // sub esp, 32
	}, c.Instr)

	c2 := NewContext()
	c2.epilogue()
	assert.Equal(t, []byte{0x89, 0xEC, 0x5D, 0xC3}, c2.Instr)
}

func TestCallRel32Encoding(t *testing.T) {
	c := NewContext()
	at := c.callRel32()
	c.patchRel32To(at, 10)
	assert.Equal(t, byte(0xE8), c.Instr[0])
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00}, c.Instr[1:5])
}
