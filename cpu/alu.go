package cpu

// Arithmetic, logical, shift, and multiply/divide instructions.

func (c *CPU) opADD(i instruction) {
	a, b := c.readReg(i.rs()), c.readReg(i.rt())
	sum := a + b
	if overflowsAddS32(a, b, sum) {
		c.enterException(ExcOverflow, c.currentFetch, c.inDelaySlot)
		return
	}
	c.writeReg(i.rd(), sum)
}

func (c *CPU) opADDU(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rs())+c.readReg(i.rt()))
}

func (c *CPU) opSUB(i instruction) {
	a, b := c.readReg(i.rs()), c.readReg(i.rt())
	diff := a - b
	if overflowsSubS32(a, b, diff) {
		c.enterException(ExcOverflow, c.currentFetch, c.inDelaySlot)
		return
	}
	c.writeReg(i.rd(), diff)
}

func (c *CPU) opSUBU(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rs())-c.readReg(i.rt()))
}

func (c *CPU) opADDI(i instruction) {
	a := c.readReg(i.rs())
	b := uint32(i.simm16())
	sum := a + b
	if overflowsAddS32(a, b, sum) {
		c.enterException(ExcOverflow, c.currentFetch, c.inDelaySlot)
		return
	}
	c.writeReg(i.rt(), sum)
}

func (c *CPU) opADDIU(i instruction) {
	c.writeReg(i.rt(), c.readReg(i.rs())+uint32(i.simm16()))
}

func overflowsAddS32(a, b, sum uint32) bool {
	return (a^sum)&(b^sum)&0x8000_0000 != 0
}

func overflowsSubS32(a, b, diff uint32) bool {
	return (a^b)&(a^diff)&0x8000_0000 != 0
}

func (c *CPU) opAND(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rs())&c.readReg(i.rt()))
}

func (c *CPU) opOR(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rs())|c.readReg(i.rt()))
}

func (c *CPU) opXOR(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rs())^c.readReg(i.rt()))
}

func (c *CPU) opNOR(i instruction) {
	c.writeReg(i.rd(), ^(c.readReg(i.rs()) | c.readReg(i.rt())))
}

func (c *CPU) opANDI(i instruction) {
	c.writeReg(i.rt(), c.readReg(i.rs())&uint32(i.imm16()))
}

func (c *CPU) opORI(i instruction) {
	c.writeReg(i.rt(), c.readReg(i.rs())|uint32(i.imm16()))
}

func (c *CPU) opXORI(i instruction) {
	c.writeReg(i.rt(), c.readReg(i.rs())^uint32(i.imm16()))
}

func (c *CPU) opLUI(i instruction) {
	c.writeReg(i.rt(), uint32(i.imm16())<<16)
}

func (c *CPU) opSLT(i instruction) {
	if int32(c.readReg(i.rs())) < int32(c.readReg(i.rt())) {
		c.writeReg(i.rd(), 1)
	} else {
		c.writeReg(i.rd(), 0)
	}
}

func (c *CPU) opSLTU(i instruction) {
	if c.readReg(i.rs()) < c.readReg(i.rt()) {
		c.writeReg(i.rd(), 1)
	} else {
		c.writeReg(i.rd(), 0)
	}
}

func (c *CPU) opSLTI(i instruction) {
	if int32(c.readReg(i.rs())) < i.simm16() {
		c.writeReg(i.rt(), 1)
	} else {
		c.writeReg(i.rt(), 0)
	}
}

func (c *CPU) opSLTIU(i instruction) {
	if c.readReg(i.rs()) < uint32(i.simm16()) {
		c.writeReg(i.rt(), 1)
	} else {
		c.writeReg(i.rt(), 0)
	}
}

func (c *CPU) opSLL(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rt())<<i.shamt())
}

func (c *CPU) opSRL(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rt())>>i.shamt())
}

func (c *CPU) opSRA(i instruction) {
	c.writeReg(i.rd(), uint32(int32(c.readReg(i.rt()))>>i.shamt()))
}

func (c *CPU) opSLLV(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rt())<<(c.readReg(i.rs())&0x1F))
}

func (c *CPU) opSRLV(i instruction) {
	c.writeReg(i.rd(), c.readReg(i.rt())>>(c.readReg(i.rs())&0x1F))
}

func (c *CPU) opSRAV(i instruction) {
	c.writeReg(i.rd(), uint32(int32(c.readReg(i.rt()))>>(c.readReg(i.rs())&0x1F)))
}

func (c *CPU) opMFHI(i instruction) { c.writeReg(i.rd(), c.hi) }
func (c *CPU) opMTHI(i instruction) { c.hi = c.readReg(i.rs()) }
func (c *CPU) opMFLO(i instruction) { c.writeReg(i.rd(), c.lo) }
func (c *CPU) opMTLO(i instruction) { c.lo = c.readReg(i.rs()) }

func (c *CPU) opMULT(i instruction) {
	a, b := int64(int32(c.readReg(i.rs()))), int64(int32(c.readReg(i.rt())))
	result := uint64(a * b)
	c.lo, c.hi = uint32(result), uint32(result>>32)
}

func (c *CPU) opMULTU(i instruction) {
	a, b := uint64(c.readReg(i.rs())), uint64(c.readReg(i.rt()))
	result := a * b
	c.lo, c.hi = uint32(result), uint32(result>>32)
}

// opDIV implements the documented divide-by-zero and INT_MIN/-1 special
// cases rather than letting Go's integer division trap (scenario S4).
func (c *CPU) opDIV(i instruction) {
	a, b := int32(c.readReg(i.rs())), int32(c.readReg(i.rt()))
	switch {
	case b == 0:
		c.lo = quotientSignOf(a)
		c.hi = uint32(a)
	case a == -0x8000_0000 && b == -1:
		c.lo = 0x8000_0000
		c.hi = 0
	default:
		c.lo = uint32(a / b)
		c.hi = uint32(a % b)
	}
}

func quotientSignOf(dividend int32) uint32 {
	if dividend < 0 {
		return 1
	}
	return 0xFFFF_FFFF
}

func (c *CPU) opDIVU(i instruction) {
	a, b := c.readReg(i.rs()), c.readReg(i.rt())
	if b == 0 {
		c.lo = 0xFFFF_FFFF
		c.hi = a
		return
	}
	c.lo, c.hi = a/b, a%b
}
