package cpu

// instruction wraps a raw 32-bit fetched word with MIPS-I field extraction.
type instruction uint32

func (i instruction) opcode() uint8 { return uint8(i >> 26) }
func (i instruction) rs() uint8     { return uint8((i >> 21) & 0x1F) }
func (i instruction) rt() uint8     { return uint8((i >> 16) & 0x1F) }
func (i instruction) rd() uint8     { return uint8((i >> 11) & 0x1F) }
func (i instruction) shamt() uint8  { return uint8((i >> 6) & 0x1F) }
func (i instruction) funct() uint8  { return uint8(i & 0x3F) }
func (i instruction) imm16() uint16 { return uint16(i & 0xFFFF) }
func (i instruction) simm16() int32 { return int32(int16(i & 0xFFFF)) }
func (i instruction) target26() uint32 { return uint32(i & 0x03FF_FFFF) }

// execute decodes one instruction and dispatches to its handler. Unknown
// primary opcodes and unknown SPECIAL functs raise a reserved-instruction
// exception.
func (c *CPU) execute(i instruction) {
	switch i.opcode() {
	case 0x00:
		c.executeSpecial(i)
	case 0x01:
		c.executeRegimm(i)
	case 0x02:
		c.opJ(i)
	case 0x03:
		c.opJAL(i)
	case 0x04:
		c.opBEQ(i)
	case 0x05:
		c.opBNE(i)
	case 0x06:
		c.opBLEZ(i)
	case 0x07:
		c.opBGTZ(i)
	case 0x08:
		c.opADDI(i)
	case 0x09:
		c.opADDIU(i)
	case 0x0A:
		c.opSLTI(i)
	case 0x0B:
		c.opSLTIU(i)
	case 0x0C:
		c.opANDI(i)
	case 0x0D:
		c.opORI(i)
	case 0x0E:
		c.opXORI(i)
	case 0x0F:
		c.opLUI(i)
	case 0x10:
		c.executeCop0(i)
	case 0x20:
		c.opLB(i)
	case 0x21:
		c.opLH(i)
	case 0x22:
		c.opLWL(i)
	case 0x23:
		c.opLW(i)
	case 0x24:
		c.opLBU(i)
	case 0x25:
		c.opLHU(i)
	case 0x26:
		c.opLWR(i)
	case 0x28:
		c.opSB(i)
	case 0x29:
		c.opSH(i)
	case 0x2A:
		c.opSWL(i)
	case 0x2B:
		c.opSW(i)
	case 0x2E:
		c.opSWR(i)
	default:
		c.enterException(ExcIllegal, c.currentFetch, c.inDelaySlot)
	}
}

func (c *CPU) executeSpecial(i instruction) {
	switch i.funct() {
	case 0x00:
		c.opSLL(i)
	case 0x02:
		c.opSRL(i)
	case 0x03:
		c.opSRA(i)
	case 0x04:
		c.opSLLV(i)
	case 0x06:
		c.opSRLV(i)
	case 0x07:
		c.opSRAV(i)
	case 0x08:
		c.opJR(i)
	case 0x09:
		c.opJALR(i)
	case 0x0C:
		c.opSYSCALL(i)
	case 0x0D:
		c.opBREAK(i)
	case 0x10:
		c.opMFHI(i)
	case 0x11:
		c.opMTHI(i)
	case 0x12:
		c.opMFLO(i)
	case 0x13:
		c.opMTLO(i)
	case 0x18:
		c.opMULT(i)
	case 0x19:
		c.opMULTU(i)
	case 0x1A:
		c.opDIV(i)
	case 0x1B:
		c.opDIVU(i)
	case 0x20:
		c.opADD(i)
	case 0x21:
		c.opADDU(i)
	case 0x22:
		c.opSUB(i)
	case 0x23:
		c.opSUBU(i)
	case 0x24:
		c.opAND(i)
	case 0x25:
		c.opOR(i)
	case 0x26:
		c.opXOR(i)
	case 0x27:
		c.opNOR(i)
	case 0x2A:
		c.opSLT(i)
	case 0x2B:
		c.opSLTU(i)
	default:
		c.enterException(ExcIllegal, c.currentFetch, c.inDelaySlot)
	}
}

func (c *CPU) executeRegimm(i instruction) {
	switch i.rt() {
	case 0x00:
		c.opBLTZ(i)
	case 0x01:
		c.opBGEZ(i)
	case 0x10:
		c.opBLTZAL(i)
	case 0x11:
		c.opBGEZAL(i)
	default:
		c.enterException(ExcIllegal, c.currentFetch, c.inDelaySlot)
	}
}

func (c *CPU) executeCop0(i instruction) {
	// bits 25:21 of the COP0 instruction select the sub-operation.
	switch i.rs() {
	case 0x00: // MFC0
		c.scheduleLoad(i.rt(), c.cop0.read(i.rd()))
	case 0x04: // MTC0
		c.cop0.write(i.rd(), c.readReg(i.rt()))
	case 0x10: // RFE (funct 0x10 in the low bits, COP0 rs field co-opted here)
		if i.funct() == 0x10 {
			c.cop0.rfe()
		}
	default:
		c.enterException(ExcIllegal, c.currentFetch, c.inDelaySlot)
	}
}

// branchTo resolves a PC-relative branch target. target is computed from
// the already-advanced pc (this cycle's delay-slot address), per the
// derivation fixed against the branch-delay scenario: nextPC is
// overwritten directly and the delay slot (the instruction at the current
// pc) still executes next cycle.
func (c *CPU) branchTo(offset int32) {
	c.nextPC = c.pc + 4 + uint32(offset*4)
	c.branchTaken = true
}
