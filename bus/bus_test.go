package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/cdrom"
	"github.com/go-pstation/pstation/dma"
	"github.com/go-pstation/pstation/gpu"
	"github.com/go-pstation/pstation/irq"
	"github.com/go-pstation/pstation/timer"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	irqCtl := irq.New()
	timers := timer.New(irqCtl.Request)
	g := gpu.New(irqCtl.Request, nil)
	cd := cdrom.New(irqCtl.Request)
	b := New(irqCtl, nil, timers, g, cd)
	b.DMA = dma.New(b.RAM, irqCtl.Request)
	return b
}

func TestBus_RAMRoundTrip(t *testing.T) {
	b := newTestBus(t)

	b.Store32(addr.RAMStart+0x100, 0xDEADBEEF)

	assert.Equal(t, uint32(0xDEADBEEF), b.Load32(addr.RAMStart+0x100))
	assert.Equal(t, uint8(0xEF), b.Load8(addr.RAMStart+0x100))
}

func TestBus_KSEG0AndKSEG1AliasSamePhysicalRAM(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x8000_0040, 0x12345678) // KSEG0
	assert.Equal(t, uint32(0x12345678), b.Load32(0xA000_0040)) // KSEG1, same physical word
}

func TestBus_InterruptRegistersRoundTrip(t *testing.T) {
	b := newTestBus(t)

	b.IRQ.Request(addr.IRQVBlank)
	assert.Equal(t, uint32(1), b.Load32(addr.InterruptStatus))

	b.Store32(addr.InterruptMask, 1)
	assert.True(t, b.PendingInterrupt())

	b.Store32(addr.InterruptStatus, 1) // ack: clear bit 0
	assert.False(t, b.PendingInterrupt())
}

func TestBus_DMAActivationDrainsImmediately(t *testing.T) {
	b := newTestBus(t)
	fake := &fakeGPUDMA{}
	b.DMA.Connect(dma.GPUChannel, fake)

	base := addr.DMAStart + dma.GPUChannel*addr.DMAChannelStride
	b.Store32(addr.RAMStart, 0xABCD_EF01)
	b.Store32(base+0x0, addr.RAMStart)
	b.Store32(base+0x4, 1) // block size 1, block count 0
	b.Store32(base+0x8, 0x1100_0001) // from-RAM, enable, trigger, manual sync

	assert.Equal(t, []uint32{0xABCD_EF01}, fake.written)
}

type fakeGPUDMA struct{ written []uint32 }

func (f *fakeGPUDMA) DMAWrite(word uint32) { f.written = append(f.written, word) }
func (f *fakeGPUDMA) DMARead() uint32      { return 0 }
