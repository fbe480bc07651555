package gpu

import (
	"testing"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/rasterizer"
	"github.com/stretchr/testify/assert"
)

func newTestGPU() (*GPU, *rasterizer.LogRasterizer, *[]addr.IRQLine) {
	var requested []addr.IRQLine
	ras := rasterizer.NewLogRasterizer()
	g := New(func(line addr.IRQLine) { requested = append(requested, line) }, ras)
	return g, ras, &requested
}

func TestGPU_noopReturnsToAwaitingCommand(t *testing.T) {
	g, _, _ := newTestGPU()

	g.WriteGP0(0x00000000)

	assert.Equal(t, modeAwaitingCommand, g.mode)
	assert.Equal(t, 0, g.cmdCount)
}

func TestGPU_monoQuadPushesToRasterizer(t *testing.T) {
	g, ras, _ := newTestGPU()

	g.WriteGP0(0x28FF0000) // opcode 0x28, color
	g.WriteGP0(0x00100010)
	g.WriteGP0(0x00100020)
	g.WriteGP0(0x00200020)
	g.WriteGP0(0x00200010)

	assert.Equal(t, "quad", ras.LastCall())
	assert.Equal(t, modeAwaitingCommand, g.mode)
}

func TestGPU_cpuToVRAMTransfer(t *testing.T) {
	g, _, _ := newTestGPU()

	g.WriteGP0(0xA0000000)
	g.WriteGP0(0x00000000) // x=0,y=0
	g.WriteGP0(0x00010002) // w=2,h=1

	assert.Equal(t, modeReceivingPixels, g.mode)

	g.WriteGP0(0xBEEFCAFE)

	assert.Equal(t, modeAwaitingCommand, g.mode)
	assert.Equal(t, uint16(0xCAFE), g.vram.At(0, 0))
	assert.Equal(t, uint16(0xBEEF), g.vram.At(1, 0))
}

func TestGPU_oddSizedTransferConsumesRoundedUpWords(t *testing.T) {
	g, _, _ := newTestGPU()

	g.WriteGP0(0xA0000000)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00010003) // w=3,h=1 -> 3 pixels, needs 2 words

	g.WriteGP0(0x22221111)
	assert.Equal(t, modeReceivingPixels, g.mode)
	g.WriteGP0(0x00003333)
	assert.Equal(t, modeAwaitingCommand, g.mode)
	assert.Equal(t, uint16(0x1111), g.vram.At(0, 0))
	assert.Equal(t, uint16(0x2222), g.vram.At(1, 0))
	assert.Equal(t, uint16(0x3333), g.vram.At(2, 0))
}

func TestGPU_vblankRequestsInterrupt(t *testing.T) {
	g, _, requested := newTestGPU()

	g.Tick(ntscCyclesPerLine * ntscLinesPerFrame)

	found := false
	for _, l := range *requested {
		if l == addr.IRQVBlank {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGPU_statusReadyBitsAlwaysSet(t *testing.T) {
	g, _, _ := newTestGPU()

	s := g.ReadStatus()

	assert.True(t, s&(1<<26) != 0)
	assert.True(t, s&(1<<27) != 0)
	assert.True(t, s&(1<<28) != 0)
}

func TestGPU_gp1ResetMatchesFreshStatus(t *testing.T) {
	g, _, _ := newTestGPU()
	fresh := g.ReadStatus()

	g.WriteGP0(0xE1000001) // mutate draw mode
	g.WriteGP1(0x00000000) // full reset

	assert.Equal(t, fresh, g.ReadStatus())
}

func TestGPU_interruptAcknowledge(t *testing.T) {
	g, _, _ := newTestGPU()
	g.irqFlag = true

	g.WriteGP1(0x02000000)

	assert.False(t, g.irqFlag)
}
