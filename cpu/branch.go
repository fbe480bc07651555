package cpu

// Jumps and branches. Branch targets are computed from the
// already-advanced pc (this cycle's delay-slot address), matching the
// literal step order: step 5 advances pc before step 7 executes.

func (c *CPU) opJ(i instruction) {
	c.nextPC = (c.pc & 0xF000_0000) | (i.target26() << 2)
	c.branchTaken = true
}

func (c *CPU) opJAL(i instruction) {
	c.writeReg(31, c.pc+4)
	c.nextPC = (c.pc & 0xF000_0000) | (i.target26() << 2)
	c.branchTaken = true
}

func (c *CPU) opJR(i instruction) {
	c.nextPC = c.readReg(i.rs())
	c.branchTaken = true
}

func (c *CPU) opJALR(i instruction) {
	target := c.readReg(i.rs())
	c.writeReg(i.rd(), c.pc+4)
	c.nextPC = target
	c.branchTaken = true
}

func (c *CPU) opBEQ(i instruction) {
	if c.readReg(i.rs()) == c.readReg(i.rt()) {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBNE(i instruction) {
	if c.readReg(i.rs()) != c.readReg(i.rt()) {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBLEZ(i instruction) {
	if int32(c.readReg(i.rs())) <= 0 {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBGTZ(i instruction) {
	if int32(c.readReg(i.rs())) > 0 {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBLTZ(i instruction) {
	if int32(c.readReg(i.rs())) < 0 {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBGEZ(i instruction) {
	if int32(c.readReg(i.rs())) >= 0 {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBLTZAL(i instruction) {
	c.writeReg(31, c.pc+4)
	if int32(c.readReg(i.rs())) < 0 {
		c.branchTo(i.simm16())
	}
}

func (c *CPU) opBGEZAL(i instruction) {
	c.writeReg(31, c.pc+4)
	if int32(c.readReg(i.rs())) >= 0 {
		c.branchTo(i.simm16())
	}
}
