// Package cpu implements the MIPS-I interpreter (J): the two-bank register
// file realizing load-delay visibility, the branch-delay pipeline, the
// instruction cache, COP0, and the exception path.
package cpu

import "log/slog"

// Bus is the memory-mapped I/O surface the CPU drives (E). Addresses are
// virtual; the bus performs translation and dispatch.
type Bus interface {
	Load8(vaddr uint32) uint8
	Load16(vaddr uint32) uint16
	Load32(vaddr uint32) uint32
	Store8(vaddr uint32, v uint8)
	Store16(vaddr uint32, v uint16)
	Store32(vaddr uint32, v uint32)
	PendingInterrupt() bool
}

// resetVector is the BIOS entry point, in the uncached KSEG1 window.
const resetVector = 0xBFC0_0000

type pendingLoad struct {
	target uint8
	value  uint32
}

// CPU is the MIPS-I interpreter.
type CPU struct {
	bus Bus

	regs   [32]uint32 // output bank, written by execute and committed loads
	inRegs [32]uint32 // input bank, snapshotted once per cycle

	hi, lo uint32

	pc, nextPC  uint32
	branchTaken bool
	inDelaySlot bool

	// currentFetch is this cycle's fetch address, used as the fault address
	// for exceptions raised during execute (bad alignment, illegal opcode).
	currentFetch uint32

	load pendingLoad

	cop0 cop0
	ic   icache
}

// New returns a CPU reset to the BIOS entry point.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset restores power-on state: PC at the BIOS reset vector, all other
// state zeroed.
func (c *CPU) Reset() {
	c.regs = [32]uint32{}
	c.inRegs = [32]uint32{}
	c.hi, c.lo = 0, 0
	c.pc = resetVector
	c.nextPC = resetVector + 4
	c.branchTaken = false
	c.inDelaySlot = false
	c.load = pendingLoad{}
	c.cop0 = cop0{}
	c.ic = icache{}
}

// PC returns the address that will be fetched on the next Step.
func (c *CPU) PC() uint32 { return c.pc }

// Reg returns the committed value of general register i (register 0 is
// always zero).
func (c *CPU) Reg(i uint8) uint32 {
	if i == 0 {
		return 0
	}
	return c.regs[i]
}

// SetReg forces the value of general register i in both register banks,
// bypassing the load-delay pipeline, so the next executed instruction
// reads it. Used by tests.
func (c *CPU) SetReg(i uint8, v uint32) {
	if i == 0 {
		return
	}
	c.regs[i] = v
	c.inRegs[i] = v
}

// HI and LO expose the multiply/divide result registers.
func (c *CPU) HI() uint32 { return c.hi }
func (c *CPU) LO() uint32 { return c.lo }

// Status exposes the COP0 status register, for tests and boot wiring.
func (c *CPU) Status() uint32     { return c.cop0.status }
func (c *CPU) SetStatus(v uint32) { c.cop0.status = v }

func (c *CPU) readReg(i uint8) uint32 {
	if i == 0 {
		return 0
	}
	return c.inRegs[i]
}

func (c *CPU) writeReg(i uint8, v uint32) {
	if i == 0 {
		return
	}
	c.regs[i] = v
}

// scheduleLoad records (target, value) to commit at the start of the next
// Step. A later load in the same instruction stream (or the
// same cycle, for LWL/LWR) simply overwrites this record.
func (c *CPU) scheduleLoad(target uint8, value uint32) {
	c.load = pendingLoad{target: target, value: value}
}

// Step executes one CPU cycle: check for a pending interrupt, commit any
// pending load, fetch, advance the delay-slot flag and PC, snapshot the
// register file, then decode and execute.
func (c *CPU) Step() {
	// 1. Interrupt sampling happens before anything else this cycle touches.
	if c.bus.PendingInterrupt() && c.cop0.interruptsEnabled() {
		c.enterException(ExcInterrupt, c.pc, c.inDelaySlot)
		return
	}

	// 2. Commit the previous cycle's scheduled load.
	if c.load.target != 0 {
		c.regs[c.load.target] = c.load.value
	}
	c.load = pendingLoad{}

	// 3. Fetch.
	fetchAddr := c.pc
	if fetchAddr%4 != 0 {
		c.enterException(ExcLoadAddrError, fetchAddr, c.inDelaySlot)
		return
	}
	word := c.ic.fetch(fetchAddr, c.bus)

	// 4. Roll the delay-slot flag.
	nowInDelaySlot := c.branchTaken
	c.branchTaken = false

	// 5. Advance PC.
	c.pc = c.nextPC
	c.nextPC += 4

	// 6. Snapshot the input bank.
	c.inRegs = c.regs

	// 7. Decode and execute.
	c.inDelaySlot = nowInDelaySlot
	c.currentFetch = fetchAddr
	c.execute(instruction(word))
}

func (c *CPU) enterException(code uint32, faultAddr uint32, inDelaySlot bool) {
	vector := c.cop0.raise(code, faultAddr, inDelaySlot)
	c.pc = vector
	c.nextPC = vector + 4
	c.branchTaken = false
	slog.Debug("cpu exception", "code", code, "epc", c.cop0.epc, "vector", vector, "delaySlot", inDelaySlot)
}
