package cpu

import "github.com/go-pstation/pstation/bit"

// Exception codes placed in cause bits 6:2.
const (
	ExcInterrupt       = 0
	ExcLoadAddrError   = 4
	ExcStoreAddrError  = 5
	ExcSyscall         = 8
	ExcBreak           = 9
	ExcIllegal         = 10
	ExcCoprocessorErr  = 11
	ExcOverflow        = 12
)

// cop0 is the simplified system-coprocessor state: status, cause, and
// exception-PC only.
type cop0 struct {
	status uint32
	cause  uint32
	epc    uint32
}

func (c *cop0) interruptsEnabled() bool {
	return bit.IsSet(0, c.status)
}

func (c *cop0) bootExceptionVectors() bool {
	return bit.IsSet(22, c.status)
}

func (c *cop0) cacheIsolated() bool {
	return bit.IsSet(16, c.status)
}

// read returns the COP0 register named by the MFC0 rd field: 12=status,
// 13=cause, 14=epc. Any other register reads as zero.
func (c *cop0) read(rd uint8) uint32 {
	switch rd {
	case 12:
		return c.status
	case 13:
		return c.cause
	case 14:
		return c.epc
	default:
		return 0
	}
}

func (c *cop0) write(rd uint8, value uint32) {
	switch rd {
	case 12:
		c.status = value
	case 13:
		c.cause = value
	case 14:
		c.epc = value
	}
}

// rfe pops the interrupt/kernel-mode stack by right-shifting the bottom
// six status bits.
func (c *cop0) rfe() {
	low6 := c.status & 0x3F
	c.status = (c.status &^ 0x3F) | (low6 >> 2)
}

// raise pushes the status stack, records the cause and exception PC, and
// returns the vector to jump to.
func (c *cop0) raise(code uint32, faultAddr uint32, inDelaySlot bool) uint32 {
	low6 := c.status & 0x3F
	c.status = (c.status &^ 0x3F) | ((low6 << 2) & 0x3F)

	c.cause = (c.cause &^ (0x1F << 2)) | (code << 2)
	c.cause = bit.SetTo(31, c.cause, inDelaySlot)

	if inDelaySlot {
		c.epc = faultAddr - 4
	} else {
		c.epc = faultAddr
	}

	if c.bootExceptionVectors() {
		return 0xBFC0_0180
	}
	return 0x8000_0080
}
