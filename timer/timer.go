// Package timer implements the programmable timer block (F): three
// independent 16-bit counters with configurable clock sources, targets,
// and sticky interrupt flags.
package timer

import (
	"log/slog"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/bit"
)

// clockSource identifies where a timer's ticks come from.
type clockSource int

const (
	sourceSystem clockSource = iota
	sourceAlternate
)

// Approximate ratios of source_hz / cpu_hz used to convert CPU cycles into
// timer ticks. Not cycle-exact, matching the GPU's scanline model.
const (
	ratioSystem      = 1.0
	ratioSystemDiv8  = 1.0 / 8.0
	ratioDotClock    = 8.0 / 5.0  // approximates a 320px-mode dot clock
	ratioHBlank      = 1.0 / 2147 // one tick per GPU scanline
)

// Mode register bit layout.
const (
	bitSyncEnable     = 0
	bitSyncModeLo     = 1
	bitResetOnTarget  = 3
	bitIRQOnTarget    = 4
	bitIRQOnOverflow  = 5
	bitRepeat         = 6
	bitPulse          = 7
	bitClockSourceLo  = 8
	bitIRQRequest     = 10
	bitReachedTarget  = 11
	bitReachedOverflow = 12
)

const controlFieldMask = 0x3FF // bits 0-9 echo back verbatim

// Timer is one of the three counter/target/mode instances.
type Timer struct {
	index      int
	irqLine    addr.IRQLine
	requestIRQ addr.RequestIRQ

	counter uint16
	target  uint16
	control uint32 // bits 0-9 as written; bits 10-12 are computed

	reachedTarget   bool
	reachedOverflow bool
	irqRequested    bool

	fraction float64

	syncWarned bool
}

// Block owns the three timer instances and dispatches register reads and
// writes by byte offset from addr.TimerStart.
type Block struct {
	timers [3]*Timer
}

// New returns a Block with all three timers powered on at zero.
func New(requestIRQ addr.RequestIRQ) *Block {
	lines := [3]addr.IRQLine{addr.IRQTimer0, addr.IRQTimer1, addr.IRQTimer2}
	b := &Block{}
	for i := range b.timers {
		b.timers[i] = &Timer{index: i, irqLine: lines[i], requestIRQ: requestIRQ}
	}
	return b
}

// Tick advances every timer by cycles CPU clocks.
func (b *Block) Tick(cycles int) {
	for _, t := range b.timers {
		t.tick(cycles)
	}
}

func (t *Timer) clockRatio() float64 {
	source := clockSource((t.control >> bitClockSourceLo) & 0x3)
	switch t.index {
	case 0:
		if source&1 == 1 {
			return ratioDotClock
		}
		return ratioSystem
	case 1:
		if source&1 == 1 {
			return ratioHBlank
		}
		return ratioSystem
	default: // timer 2
		if source >= 2 {
			return ratioSystemDiv8
		}
		return ratioSystem
	}
}

func (t *Timer) syncMode() int {
	return int((t.control >> bitSyncModeLo) & 0x3)
}

func (t *Timer) tick(cycles int) {
	if t.control&(1<<bitSyncEnable) != 0 && t.syncMode() != 0 && !t.syncWarned {
		t.syncWarned = true
		slog.Warn("timer sync mode beyond pause is not modeled", "timer", t.index, "mode", t.syncMode())
	}

	t.fraction += float64(cycles) * t.clockRatio()
	whole := int(t.fraction)
	if whole <= 0 {
		return
	}
	t.fraction -= float64(whole)

	for i := 0; i < whole; i++ {
		t.counter++
		crossedTarget := t.counter == t.target
		crossedOverflow := t.counter == 0 // wrapped past 0xFFFF

		if crossedTarget {
			t.reachedTarget = true
			if t.control&(1<<bitResetOnTarget) != 0 {
				t.counter = 0
			}
		}
		if crossedOverflow {
			t.reachedOverflow = true
		}
	}

	t.updateIRQ()
}

func (t *Timer) updateIRQ() {
	wantIRQ := false
	if t.control&(1<<bitIRQOnTarget) != 0 && t.reachedTarget {
		wantIRQ = true
	}
	if t.control&(1<<bitIRQOnOverflow) != 0 && t.reachedOverflow {
		wantIRQ = true
	}
	if wantIRQ && !t.irqRequested {
		t.irqRequested = true
		t.requestIRQ(t.irqLine)
	}
	if !wantIRQ {
		t.irqRequested = false
	}
}

func (t *Timer) readMode() uint32 {
	m := t.control & controlFieldMask
	m = bit.SetTo(bitIRQRequest, m, t.irqRequested)
	m = bit.SetTo(bitReachedTarget, m, t.reachedTarget)
	m = bit.SetTo(bitReachedOverflow, m, t.reachedOverflow)
	return m
}

// writeMode replaces the control fields and clears both sticky flags and
// the IRQ-request flag, the only way to clear them.
func (t *Timer) writeMode(value uint32) {
	t.control = value & controlFieldMask
	t.reachedTarget = false
	t.reachedOverflow = false
	t.irqRequested = false
	t.counter = 0
}

// ReadRegister reads one of the three (counter, target, mode) registers.
func (b *Block) ReadRegister(offset uint32) uint32 {
	idx := offset / addr.TimerStride
	reg := offset % addr.TimerStride
	if int(idx) >= len(b.timers) {
		return 0
	}
	t := b.timers[idx]
	switch reg {
	case 0x0:
		return uint32(t.counter)
	case 0x4:
		return t.readMode()
	case 0x8:
		return uint32(t.target)
	default:
		return 0
	}
}

// WriteRegister writes one of the three (counter, target, mode) registers.
func (b *Block) WriteRegister(offset uint32, value uint32) {
	idx := offset / addr.TimerStride
	reg := offset % addr.TimerStride
	if int(idx) >= len(b.timers) {
		return
	}
	t := b.timers[idx]
	switch reg {
	case 0x0:
		t.counter = uint16(value)
	case 0x4:
		t.writeMode(value)
	case 0x8:
		t.target = uint16(value)
	}
}
