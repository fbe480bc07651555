package timer

import (
	"testing"

	"github.com/go-pstation/pstation/addr"
	"github.com/stretchr/testify/assert"
)

func newTestBlock() (*Block, *[]addr.IRQLine) {
	var requested []addr.IRQLine
	b := New(func(line addr.IRQLine) { requested = append(requested, line) })
	return b, &requested
}

// TestTimer2TargetInterrupt exercises the S6 scenario: clock-source
// system/8, target 100, IRQ-on-target enabled, 800 CPU cycles.
func TestTimer2TargetInterrupt(t *testing.T) {
	b, requested := newTestBlock()

	const timer2Base = addr.TimerStride * 2
	b.WriteRegister(timer2Base+0x8, 100) // target
	b.WriteRegister(timer2Base+0x4, (1<<bitIRQOnTarget)|(0x2<<bitClockSourceLo))

	b.Tick(800)

	mode := b.ReadRegister(timer2Base + 0x4)
	assert.True(t, mode&(1<<bitIRQRequest) != 0)
	assert.True(t, mode&(1<<bitReachedTarget) != 0)
	assert.Contains(t, *requested, addr.IRQTimer2)
}

func TestTimerModeWriteClearsStickyAndIRQ(t *testing.T) {
	b, _ := newTestBlock()
	const timer2Base = addr.TimerStride * 2

	b.WriteRegister(timer2Base+0x8, 100)
	b.WriteRegister(timer2Base+0x4, (1<<bitIRQOnTarget)|(0x2<<bitClockSourceLo))
	b.Tick(800)

	b.WriteRegister(timer2Base+0x4, 0)
	mode := b.ReadRegister(timer2Base + 0x4)
	assert.Equal(t, uint32(0), mode)

	// Two successive writes produce the same final state.
	b.WriteRegister(timer2Base+0x4, 0)
	assert.Equal(t, uint32(0), b.ReadRegister(timer2Base+0x4))
}

func TestTimerResetOnTargetZeroesCounterNotSticky(t *testing.T) {
	b, _ := newTestBlock()
	const timer2Base = addr.TimerStride * 2

	b.WriteRegister(timer2Base+0x8, 10)
	b.WriteRegister(timer2Base+0x4, (1<<bitResetOnTarget)|(0x2<<bitClockSourceLo))
	b.Tick(80) // 10 ticks at ratio 1/8

	assert.Equal(t, uint32(0), b.ReadRegister(timer2Base+0x0))
	mode := b.ReadRegister(timer2Base + 0x4)
	assert.True(t, mode&(1<<bitReachedTarget) != 0)
}

func TestTimerOverflowSetsStickyFlag(t *testing.T) {
	b, _ := newTestBlock()
	const timer0Base = addr.TimerStride * 0

	b.WriteRegister(timer0Base+0x4, 0) // system clock, 1:1 ratio
	b.Tick(0x10000)

	mode := b.ReadRegister(timer0Base + 0x4)
	assert.True(t, mode&(1<<bitReachedOverflow) != 0)
}
