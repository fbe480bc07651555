package cpu

import "github.com/go-pstation/pstation/bit"

// Syscall numbers the boot ROM's self-dispatch hands off directly, handled
// here without taking the full exception path.
const (
	syscallNoop                 = 0
	syscallEnterCriticalSection = 1
	syscallExitCriticalSection  = 2
)

func (c *CPU) opSYSCALL(i instruction) {
	switch c.readReg(4) {
	case syscallNoop:
		return
	case syscallEnterCriticalSection:
		c.cop0.status = bit.SetTo(0, c.cop0.status, false)
		return
	case syscallExitCriticalSection:
		c.cop0.status = bit.SetTo(0, c.cop0.status, bit.IsSet(1, c.cop0.status))
		return
	}
	c.enterException(ExcSyscall, c.currentFetch, c.inDelaySlot)
}

func (c *CPU) opBREAK(i instruction) {
	c.enterException(ExcBreak, c.currentFetch, c.inDelaySlot)
}
