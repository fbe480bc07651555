package gpu

import (
	"log/slog"

	"github.com/go-pstation/pstation/rasterizer"
)

// gp0Length is the per-opcode word count table, including the
// command word itself. Opcodes not listed default to length 1 and are
// treated as a logged no-op.
var gp0Length = map[uint8]int{
	0x00: 1,
	0x01: 1,
	0x02: 3,
	0x28: 5,
	0x2C: 9,
	0x30: 6,
	0x38: 8,
	0xA0: 3,
	0xC0: 3,
	0xE1: 1,
	0xE2: 1,
	0xE3: 1,
	0xE4: 1,
	0xE5: 1,
	0xE6: 1,
}

// WriteGP0 feeds one 32-bit word into the command/data FIFO.
func (g *GPU) WriteGP0(word uint32) {
	switch g.mode {
	case modeReceivingPixels:
		g.receivePixelWord(word)
		return
	case modeSendingPixels:
		// A stray GP0 write during a CPU<-VRAM transfer is ignored; the CPU
		// is expected to be reading GPUREAD, not writing GP0.
		return
	}

	if g.cmdCount == 0 {
		g.cmdOpcode = uint8(word >> 24)
		n, ok := gp0Length[g.cmdOpcode]
		if !ok {
			n = 1
			slog.Warn("unhandled GP0 opcode treated as no-op", "opcode", g.cmdOpcode)
		}
		g.cmdNeeded = n
	}

	g.cmdBuffer[g.cmdCount] = word
	g.cmdCount++

	if g.cmdCount < g.cmdNeeded {
		return
	}

	g.dispatchCommand()
	g.cmdCount = 0
	g.cmdNeeded = 0
}

func (g *GPU) dispatchCommand() {
	switch g.cmdOpcode {
	case 0x00:
		// no-op
	case 0x01:
		// clear texture cache: ignored, no cache modeled
	case 0x02:
		g.cmdFillRectangle()
	case 0x28:
		g.cmdMonoQuad()
	case 0x2C:
		g.cmdTexturedBlendQuad()
	case 0x30:
		g.cmdShadedTriangle()
	case 0x38:
		g.cmdShadedQuad()
	case 0xA0:
		g.cmdStartCPUToVRAM()
	case 0xC0:
		g.cmdStartVRAMToCPU()
	case 0xE1:
		g.cmdSetDrawMode()
	case 0xE2:
		g.cmdSetTextureWindow()
	case 0xE3:
		g.cmdSetDrawAreaTopLeft()
	case 0xE4:
		g.cmdSetDrawAreaBottomRight()
	case 0xE5:
		g.cmdSetDrawOffset()
	case 0xE6:
		g.cmdSetMaskBit()
	}
}

func decodeXY(word uint32) (int16, int16) {
	return int16(uint16(word)), int16(uint16(word >> 16))
}

func decodeRGB(word uint32) (uint8, uint8, uint8) {
	return uint8(word), uint8(word >> 8), uint8(word >> 16)
}

func (g *GPU) cmdFillRectangle() {
	// Stub, recorded only — real hardware fills VRAM with a flat
	// color; not exercised by the rasterizer interface.
	color := g.cmdBuffer[0] & 0xFFFFFF
	x, y := decodeXY(g.cmdBuffer[1])
	w, h := decodeXY(g.cmdBuffer[2])
	slog.Debug("GP0 fill rectangle", "color", color, "x", x, "y", y, "w", w, "h", h)
}

func (g *GPU) vertexAt(posWord uint32, r, gc, b uint8) rasterizer.Vertex {
	x, y := decodeXY(posWord)
	return rasterizer.Vertex{X: x, Y: y, R: r, G: gc, B: b}
}

func (g *GPU) cmdMonoQuad() {
	r, gc, b := decodeRGB(g.cmdBuffer[0])
	v0 := g.vertexAt(g.cmdBuffer[1], r, gc, b)
	v1 := g.vertexAt(g.cmdBuffer[2], r, gc, b)
	v2 := g.vertexAt(g.cmdBuffer[3], r, gc, b)
	v3 := g.vertexAt(g.cmdBuffer[4], r, gc, b)
	g.ras.PushQuad(v0, v1, v2, v3)
}

func (g *GPU) cmdShadedTriangle() {
	r0, g0, b0 := decodeRGB(g.cmdBuffer[0])
	v0 := g.vertexAt(g.cmdBuffer[1], r0, g0, b0)
	r1, g1, b1 := decodeRGB(g.cmdBuffer[2])
	v1 := g.vertexAt(g.cmdBuffer[3], r1, g1, b1)
	r2, g2, b2 := decodeRGB(g.cmdBuffer[4])
	v2 := g.vertexAt(g.cmdBuffer[5], r2, g2, b2)
	g.ras.PushTriangle(v0, v1, v2)
}

func (g *GPU) cmdShadedQuad() {
	r0, g0, b0 := decodeRGB(g.cmdBuffer[0])
	v0 := g.vertexAt(g.cmdBuffer[1], r0, g0, b0)
	r1, g1, b1 := decodeRGB(g.cmdBuffer[2])
	v1 := g.vertexAt(g.cmdBuffer[3], r1, g1, b1)
	r2, g2, b2 := decodeRGB(g.cmdBuffer[4])
	v2 := g.vertexAt(g.cmdBuffer[5], r2, g2, b2)
	r3, g3, b3 := decodeRGB(g.cmdBuffer[6])
	v3 := g.vertexAt(g.cmdBuffer[7], r3, g3, b3)
	g.ras.PushQuad(v0, v1, v2, v3)
}

func (g *GPU) cmdTexturedBlendQuad() {
	r, gc, b := decodeRGB(g.cmdBuffer[0])
	page := rasterizer.TexPage{
		PageX: g.dm.texPageX * 64,
		PageY: g.dm.texPageY * 256,
		Depth: g.dm.texDepth,
		Blend: true,
	}
	clut0 := g.cmdBuffer[2] >> 16
	page.CLUTX = int(clut0&0x3F) * 16
	page.CLUTY = int((clut0 >> 6) & 0x1FF)

	uv := func(word uint32) (uint8, uint8) {
		return uint8(word), uint8(word >> 8)
	}

	x0, y0 := decodeXY(g.cmdBuffer[1])
	u0, v0 := uv(g.cmdBuffer[2])
	x1, y1 := decodeXY(g.cmdBuffer[3])
	u1, v1 := uv(g.cmdBuffer[4])
	x2, y2 := decodeXY(g.cmdBuffer[5])
	u2, v2 := uv(g.cmdBuffer[6])
	x3, y3 := decodeXY(g.cmdBuffer[7])
	u3, v3 := uv(g.cmdBuffer[8])

	vtx := func(x, y int16, u, v uint8) rasterizer.Vertex {
		return rasterizer.Vertex{X: x, Y: y, R: r, G: gc, B: b, TexU: u, TexV: v}
	}

	g.ras.PushTexturedQuad(vtx(x0, y0, u0, v0), vtx(x1, y1, u1, v1), vtx(x2, y2, u2, v2), vtx(x3, y3, u3, v3), page)
}

func (g *GPU) cmdStartCPUToVRAM() {
	x, y := decodeXY(g.cmdBuffer[1])
	w, h := decodeXY(g.cmdBuffer[2])
	g.xferX, g.xferY = int(uint16(x)), int(uint16(y))
	g.xferW, g.xferH = int(uint16(w)), int(uint16(h))
	if g.xferW == 0 {
		g.xferW = 1
	}
	if g.xferH == 0 {
		g.xferH = 1
	}
	g.xferProgress = 0
	g.mode = modeReceivingPixels
}

func (g *GPU) cmdStartVRAMToCPU() {
	x, y := decodeXY(g.cmdBuffer[1])
	w, h := decodeXY(g.cmdBuffer[2])
	g.xferX, g.xferY = int(uint16(x)), int(uint16(y))
	g.xferW, g.xferH = int(uint16(w)), int(uint16(h))
	if g.xferW == 0 {
		g.xferW = 1
	}
	if g.xferH == 0 {
		g.xferH = 1
	}
	g.xferProgress = 0
	g.mode = modeSendingPixels
	g.fillGPUREAD()
}

// receivePixelWord writes two little-endian halfword pixels per GP0 word
// during a CPU->VRAM transfer and returns to awaiting-command mode once
// the rectangle's width*height (rounded up to an even number) pixels have
// all been written.
func (g *GPU) receivePixelWord(word uint32) {
	total := g.xferW * g.xferH
	for i := 0; i < 2; i++ {
		idx := g.xferProgress
		if idx < total {
			px := uint16(word >> (16 * i))
			px_x := g.xferX + idx%g.xferW
			px_y := g.xferY + idx/g.xferW
			g.vram.Set(px_x, px_y, px)
		}
		g.xferProgress++
	}

	if g.xferProgress >= total {
		g.mode = modeAwaitingCommand
	}
}

// fillGPUREAD reads the next two pixels of the transfer rectangle into the
// GPUREAD buffer, advancing progress the same way receivePixelWord does.
// Called once up front and again each time GPUREAD is polled via the bus
// while sending pixels remains active.
func (g *GPU) fillGPUREAD() {
	total := g.xferW * g.xferH
	var lo, hi uint16
	if g.xferProgress < total {
		idx := g.xferProgress
		lo = g.vram.At(g.xferX+idx%g.xferW, g.xferY+idx/g.xferW)
		g.xferProgress++
	}
	if g.xferProgress < total {
		idx := g.xferProgress
		hi = g.vram.At(g.xferX+idx%g.xferW, g.xferY+idx/g.xferW)
		g.xferProgress++
	}
	g.gpuread = uint32(lo) | uint32(hi)<<16
	if g.xferProgress >= total {
		g.mode = modeAwaitingCommand
	}
}

func (g *GPU) cmdSetDrawMode() {
	w := g.cmdBuffer[0]
	g.dm.texPageX = int(w & 0xF)
	g.dm.texPageY = int((w >> 4) & 1)
	g.dm.semiTransp = int((w >> 5) & 0x3)
	g.dm.texDepth = int((w >> 7) & 0x3)
	g.dm.dither = (w>>9)&1 != 0
	g.dm.drawToDisp = (w>>10)&1 != 0
	g.dm.texDisable = (w>>11)&1 != 0
	g.dm.rectFlipX = (w>>12)&1 != 0
	g.dm.rectFlipY = (w>>13)&1 != 0
}

func (g *GPU) cmdSetTextureWindow() {
	w := g.cmdBuffer[0]
	g.texWindowMaskX = int(w & 0x1F)
	g.texWindowMaskY = int((w >> 5) & 0x1F)
	g.texWindowOffsetX = int((w >> 10) & 0x1F)
	g.texWindowOffsetY = int((w >> 15) & 0x1F)
}

func (g *GPU) cmdSetDrawAreaTopLeft() {
	w := g.cmdBuffer[0]
	g.drawAreaLeft = int(w & 0x3FF)
	g.drawAreaTop = int((w >> 10) & 0x3FF)
}

func (g *GPU) cmdSetDrawAreaBottomRight() {
	w := g.cmdBuffer[0]
	g.drawAreaRight = int(w & 0x3FF)
	g.drawAreaBottom = int((w >> 10) & 0x3FF)
}

// cmdSetDrawOffset forces a flush of buffered primitives before updating.
// There is no primitive buffering beyond the immediate dispatch to
// the rasterizer in this implementation, so the flush is a no-op beyond
// propagating the new offset downstream.
func (g *GPU) cmdSetDrawOffset() {
	w := g.cmdBuffer[0]
	x := int(int16(uint16(w&0x7FF) << 5 >> 5))
	y := int(int16(uint16((w>>11)&0x7FF) << 5 >> 5))
	g.drawOffsetX, g.drawOffsetY = x, y
	g.ras.SetOffset(x, y)
}

func (g *GPU) cmdSetMaskBit() {
	w := g.cmdBuffer[0]
	g.forceMask = w&1 != 0
	g.checkMask = (w>>1)&1 != 0
}
