// Package gpu implements the graphics front-end (G): the GP0 command
// FIFO, GP1 control registers, the VRAM transfer state machine, and the
// status register. It owns the video memory (C).
package gpu

import (
	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/bit"
	"github.com/go-pstation/pstation/rasterizer"
)

// mode is the GP0 transfer state.
type mode int

const (
	modeAwaitingCommand mode = iota
	modeReceivingPixels
	modeSendingPixels
)

const (
	ntscLinesPerFrame = 263
	ntscCyclesPerLine = 2147 // ~33.8688MHz / 60Hz / 263 lines, not cycle-exact
	vblankStartLine   = 240
)

// drawMode holds the latched fields of GP0 0xE1.
type drawMode struct {
	texPageX   int // 64px units
	texPageY   int // 256px units
	semiTransp int
	texDepth   int
	dither     bool
	drawToDisp bool
	texDisable bool
	rectFlipX  bool
	rectFlipY  bool
}

// GPU is the graphics front-end.
type GPU struct {
	vram *VRAM
	ras  rasterizer.Rasterizer

	requestIRQ addr.RequestIRQ
	irqFlag    bool

	mode mode

	cmdBuffer  [16]uint32
	cmdCount   int
	cmdNeeded  int
	cmdOpcode  uint8

	xferX, xferY   int
	xferW, xferH   int
	xferProgress   int
	gpuread        uint32

	dm drawMode

	texWindowMaskX, texWindowMaskY     int
	texWindowOffsetX, texWindowOffsetY int

	drawAreaLeft, drawAreaTop         int
	drawAreaRight, drawAreaBottom     int
	drawOffsetX, drawOffsetY          int

	forceMask    bool
	checkMask    bool

	displayEnabled bool
	dmaDirection   int // 0=off,1=FIFO,2=CPUtoGP0,3=GPUREADtoCPU

	dispOriginX, dispOriginY int
	dispRangeX1, dispRangeX2 int
	dispRangeY1, dispRangeY2 int

	horizRes1, horizRes2 int
	vertRes              int
	videoModePAL         bool
	colorDepth24         bool
	interlace            bool
	reverseWarned        bool

	line       int
	lineCycles int
	inVBlank   bool
}

// New returns a GPU wired to a rasterizer collaborator and an interrupt
// capability. ras may be nil, in which case a LogRasterizer is used.
func New(requestIRQ addr.RequestIRQ, ras rasterizer.Rasterizer) *GPU {
	if ras == nil {
		ras = rasterizer.NewLogRasterizer()
	}
	g := &GPU{
		vram:       NewVRAM(),
		ras:        ras,
		requestIRQ: requestIRQ,
	}
	g.reset()
	return g
}

func (g *GPU) reset() {
	g.mode = modeAwaitingCommand
	g.cmdCount = 0
	g.cmdNeeded = 0
	g.dm = drawMode{}
	g.texWindowMaskX, g.texWindowMaskY = 0, 0
	g.texWindowOffsetX, g.texWindowOffsetY = 0, 0
	g.drawAreaLeft, g.drawAreaTop = 0, 0
	g.drawAreaRight, g.drawAreaBottom = 0, 0
	g.drawOffsetX, g.drawOffsetY = 0, 0
	g.forceMask, g.checkMask = false, false
	g.displayEnabled = false
	g.dmaDirection = 0
	g.dispOriginX, g.dispOriginY = 0, 0
	g.dispRangeX1, g.dispRangeX2 = 0x200, 0xC00
	g.dispRangeY1, g.dispRangeY2 = 0x10, 0x100
	g.horizRes1, g.horizRes2 = 0, 0
	g.vertRes, g.videoModePAL, g.colorDepth24, g.interlace = 0, false, false, false
	g.line, g.lineCycles, g.inVBlank = 0, 0, false
	g.irqFlag = false
}

// VRAM exposes the owned framebuffer for inspection (tests, debug tools).
func (g *GPU) VRAM() *VRAM {
	return g.vram
}

// Tick advances the scanline counter by cycles CPU clocks and raises the
// VBlank interrupt (line 0) on entry to the vertical blanking interval.
// Timing is a simple fixed-length-scanline model, not cycle-exact.
func (g *GPU) Tick(cycles int) {
	g.lineCycles += cycles
	for g.lineCycles >= ntscCyclesPerLine {
		g.lineCycles -= ntscCyclesPerLine
		g.line++
		if g.line >= ntscLinesPerFrame {
			g.line = 0
		}
		wasVBlank := g.inVBlank
		g.inVBlank = g.line >= vblankStartLine
		if g.inVBlank && !wasVBlank {
			g.requestIRQ(addr.IRQVBlank)
			g.ras.Display()
		}
	}
}

// ReadStatus computes GPUSTAT from the latched drawing-state fields.
func (g *GPU) ReadStatus() uint32 {
	var s uint32
	s |= uint32(g.dm.texPageX) & 0xF
	if g.dm.texPageY != 0 {
		s = bit.Set(4, s)
	}
	s |= uint32(g.dm.semiTransp&0x3) << 5
	s |= uint32(g.dm.texDepth&0x3) << 7
	s = bit.SetTo(9, s, g.dm.dither)
	s = bit.SetTo(10, s, g.dm.drawToDisp)
	s = bit.SetTo(11, s, g.forceMask)
	s = bit.SetTo(12, s, g.checkMask)
	// bit 13: interlace field (not tracked per-field, always even)
	s = bit.SetTo(15, s, g.dm.texDisable)
	s |= uint32(g.horizRes2&1) << 16
	s |= uint32(g.horizRes1&0x3) << 17
	s |= uint32(g.vertRes&1) << 19
	s = bit.SetTo(20, s, g.videoModePAL)
	s = bit.SetTo(21, s, g.colorDepth24)
	s = bit.SetTo(22, s, g.interlace)
	s = bit.SetTo(23, s, !g.displayEnabled)
	s = bit.SetTo(24, s, g.irqFlag)

	// Ready bits: always 1.
	s = bit.Set(26, s)
	s = bit.Set(27, s)
	s = bit.Set(28, s)

	s |= uint32(g.dmaDirection&0x3) << 29

	// bit 25: DMA request, synthesized from direction + matching ready bit.
	dmaRequest := false
	switch g.dmaDirection {
	case 1: // FIFO
		dmaRequest = true
	case 2: // CPU->GP0
		dmaRequest = bit.IsSet(28, s)
	case 3: // GPUREAD->CPU
		dmaRequest = bit.IsSet(27, s)
	}
	s = bit.SetTo(25, s, dmaRequest)

	return s
}

// ReadGPUREAD returns the GPUREAD buffer (the current word of a VRAM->CPU
// transfer, or the latest value latched by other reads). While a VRAM->CPU
// transfer is active, each read latches the next two pixels.
func (g *GPU) ReadGPUREAD() uint32 {
	word := g.gpuread
	if g.mode == modeSendingPixels {
		g.fillGPUREAD()
	}
	return word
}
