// Package irq implements the interrupt controller (D): two 11-bit
// registers, OR-reduced onto the single CPU interrupt line.
package irq

import "github.com/go-pstation/pstation/addr"

const lineMask uint32 = 0x7FF // 11 bits, lines 0..10

// Controller holds the pending and mask registers.
type Controller struct {
	status uint32 // I_STAT: pending bits
	mask   uint32 // I_MASK: enable bits
}

// New returns a powered-on interrupt controller (all lines clear).
func New() *Controller {
	return &Controller{}
}

// Request ORs the given line's bit into the pending register. This is the
// capability peripherals receive instead of owning the controller.
func (c *Controller) Request(line addr.IRQLine) {
	c.status |= 1 << uint(line)
	c.status &= lineMask
}

// Status returns the raw pending register (low 11 bits).
func (c *Controller) Status() uint32 {
	return c.status & lineMask
}

// Mask returns the raw mask register (low 11 bits).
func (c *Controller) Mask() uint32 {
	return c.mask & lineMask
}

// WriteStatus acknowledges interrupts: the written value is a mask of bits
// to *clear* from pending, not a value to replace it with.
func (c *Controller) WriteStatus(value uint32) {
	c.status &^= value & lineMask
}

// WriteMask replaces the mask register outright.
func (c *Controller) WriteMask(value uint32) {
	c.mask = value & lineMask
}

// Pending reports whether any enabled interrupt line is currently pending;
// the CPU samples this once per step before fetching.
func (c *Controller) Pending() bool {
	return c.status&c.mask&lineMask != 0
}
