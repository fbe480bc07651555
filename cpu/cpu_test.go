package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB memory, sufficient to drive the CPU-level
// scenarios without a real bus/memory-map component. The low 32KiB backs
// addresses below the reset vector and the high 32KiB backs the reset
// vector window, so a program placed at the reset vector never aliases
// data at address 0.
type fakeBus struct {
	mem [0x10000]byte
}

func (b *fakeBus) off(vaddr uint32) uint32 {
	if vaddr >= resetVector {
		return 0x8000 | (vaddr & 0x7FFF)
	}
	return vaddr & 0x7FFF
}

func (b *fakeBus) Load8(vaddr uint32) uint8 { return b.mem[b.off(vaddr)] }
func (b *fakeBus) Load16(vaddr uint32) uint16 {
	o := b.off(vaddr)
	return uint16(b.mem[o]) | uint16(b.mem[o+1])<<8
}
func (b *fakeBus) Load32(vaddr uint32) uint32 {
	o := b.off(vaddr)
	return uint32(b.mem[o]) | uint32(b.mem[o+1])<<8 | uint32(b.mem[o+2])<<16 | uint32(b.mem[o+3])<<24
}
func (b *fakeBus) Store8(vaddr uint32, v uint8) { b.mem[b.off(vaddr)] = v }
func (b *fakeBus) Store16(vaddr uint32, v uint16) {
	o := b.off(vaddr)
	b.mem[o] = byte(v)
	b.mem[o+1] = byte(v >> 8)
}
func (b *fakeBus) Store32(vaddr uint32, v uint32) {
	o := b.off(vaddr)
	b.mem[o] = byte(v)
	b.mem[o+1] = byte(v >> 8)
	b.mem[o+2] = byte(v >> 16)
	b.mem[o+3] = byte(v >> 24)
}
func (b *fakeBus) PendingInterrupt() bool { return false }

func (b *fakeBus) writeWordAt(vaddr uint32, word uint32) {
	b.Store32(vaddr, word)
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	return New(bus), bus
}

func TestCPU_LUI(t *testing.T) {
	c, bus := newTestCPU()
	bus.writeWordAt(resetVector, 0x3C0801F0)

	c.Step()

	assert.Equal(t, uint32(0x01F00000), c.Reg(8))
}

func TestCPU_BranchDelaySlot(t *testing.T) {
	c, bus := newTestCPU()
	bus.writeWordAt(resetVector, 0x10000002)   // BEQ r0, r0, +2
	bus.writeWordAt(resetVector+4, 0x24080005) // ADDIU r8, r0, 5

	c.Step()
	c.Step()

	assert.Equal(t, uint32(5), c.Reg(8))
	assert.Equal(t, uint32(resetVector+0x10), c.PC())
}

func TestCPU_LoadDelayVisibility(t *testing.T) {
	c, bus := newTestCPU()
	bus.writeWordAt(0, 0x12345678)
	bus.writeWordAt(resetVector, 0x8C080000)   // LW r8, 0(r0)
	bus.writeWordAt(resetVector+4, 0x24080007) // ADDIU r8, r0, 7
	bus.writeWordAt(resetVector+8, 0x00000000) // NOP

	c.Step() // issues the load
	c.Step() // commits 0x12345678 then ADDIU overwrites with 7

	require.Equal(t, uint32(7), c.Reg(8))

	c.Step() // one more cycle: nothing should clobber register 8 again

	assert.Equal(t, uint32(7), c.Reg(8))
}

func TestCPU_DivideByZero(t *testing.T) {
	c, _ := newTestCPU()
	c.SetReg(8, 0xCAFEBABE)
	c.SetReg(9, 0)

	// DIVU r8, r9: SPECIAL opcode, rs=8, rt=9, funct 0x1B.
	i := instruction(uint32(8)<<21 | uint32(9)<<16 | 0x1B)
	c.execute(i)

	assert.Equal(t, uint32(0xFFFFFFFF), c.LO())
	assert.Equal(t, uint32(0xCAFEBABE), c.HI())
}

func TestCPU_CacheIsolatedStoreIsDropped(t *testing.T) {
	c, bus := newTestCPU()
	c.SetStatus(1 << 16)
	c.SetReg(9, 0xDEADBEEF)
	bus.writeWordAt(resetVector, 0xAC090000) // SW r9, 0(r0)

	c.Step()

	assert.Equal(t, uint32(0), bus.Load32(0))
}

func TestCPU_SyscallShortCircuitEntersCriticalSection(t *testing.T) {
	c, bus := newTestCPU()
	c.SetStatus(1) // interrupts currently enabled
	c.SetReg(4, syscallEnterCriticalSection)
	bus.writeWordAt(resetVector, 0x0000000C) // SYSCALL

	c.Step()

	assert.False(t, c.cop0.interruptsEnabled())
	assert.Equal(t, uint32(resetVector+4), c.PC())
}

func TestCPU_MFC0IsScheduledLikeALoad(t *testing.T) {
	c, bus := newTestCPU()
	c.cop0.status = 0x1234
	bus.writeWordAt(resetVector, 0x40086000)   // MFC0 r8, $12 (status)
	bus.writeWordAt(resetVector+4, 0x24080007) // ADDIU r8, r0, 7
	bus.writeWordAt(resetVector+8, 0x00000000) // NOP

	c.Step() // issues the MFC0

	assert.Equal(t, uint32(0), c.Reg(8), "MFC0's result must not be visible in its own cycle")

	c.Step() // commits 0x1234 then ADDIU overwrites with 7

	require.Equal(t, uint32(7), c.Reg(8))

	c.Step() // one more cycle: nothing should clobber register 8 again

	assert.Equal(t, uint32(7), c.Reg(8))
}

func TestCPU_LWLMergesUnalignedHighBytes(t *testing.T) {
	cases := []struct {
		offset uint32
		want   uint32
	}{
		{0, 0x78BBCCDD},
		{1, 0x5678CCDD},
		{2, 0x345678DD},
		{3, 0x12345678},
	}
	for _, tc := range cases {
		c, bus := newTestCPU()
		bus.writeWordAt(0, 0x12345678)
		c.SetReg(8, 0xAABBCCDD)

		// LWL r8, offset(r0)
		i := instruction(uint32(0x22)<<26 | uint32(8)<<16 | tc.offset)
		c.execute(i)

		assert.Equal(t, tc.want, c.load.value, "offset %d", tc.offset)
		assert.Equal(t, uint8(8), c.load.target, "offset %d", tc.offset)
	}
}

func TestCPU_SWLMergesUnalignedLowMemoryBytes(t *testing.T) {
	cases := []struct {
		offset uint32
		want   uint32
	}{
		{0, 0xAABBCC12},
		{1, 0xAABB1234},
		{2, 0xAA123456},
		{3, 0x12345678},
	}
	for _, tc := range cases {
		c, bus := newTestCPU()
		bus.writeWordAt(0, 0xAABBCCDD)
		c.SetReg(9, 0x12345678)

		// SWL r9, offset(r0)
		i := instruction(uint32(0x2A)<<26 | uint32(9)<<16 | tc.offset)
		c.execute(i)

		assert.Equal(t, tc.want, bus.Load32(0), "offset %d", tc.offset)
	}
}

func TestCPU_UnhandledSyscallRaisesException(t *testing.T) {
	c, bus := newTestCPU()
	c.SetStatus(1 << 22) // boot exception vectors
	c.SetReg(4, 99)
	bus.writeWordAt(resetVector, 0x0000000C) // SYSCALL

	c.Step()

	assert.Equal(t, uint32(0xBFC0_0180), c.PC())
}
