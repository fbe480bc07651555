package gpu

import "log/slog"

// WriteGP1 dispatches a GP1 control word by its high byte. Unlike
// GP0, GP1 commands are stateless single-word writes.
func (g *GPU) WriteGP1(word uint32) {
	switch uint8(word >> 24) {
	case 0x00:
		g.reset()
		g.vram.Clear()
	case 0x01:
		g.cmdCount = 0
		g.cmdNeeded = 0
		g.mode = modeAwaitingCommand
	case 0x02:
		g.irqFlag = false
	case 0x03:
		g.displayEnabled = word&1 == 0
	case 0x04:
		g.dmaDirection = int(word & 0x3)
	case 0x05:
		g.dispOriginX = int(word & 0x3FF)
		g.dispOriginY = int((word >> 10) & 0x1FF)
	case 0x06:
		g.dispRangeX1 = int(word & 0xFFF)
		g.dispRangeX2 = int((word >> 12) & 0xFFF)
	case 0x07:
		g.dispRangeY1 = int(word & 0x3FF)
		g.dispRangeY2 = int((word >> 10) & 0x3FF)
	case 0x08:
		g.horizRes1 = int(word & 0x3)
		g.vertRes = int((word >> 2) & 0x1)
		g.videoModePAL = (word>>3)&1 != 0
		g.colorDepth24 = (word>>4)&1 != 0
		g.interlace = (word>>5)&1 != 0
		g.horizRes2 = int((word >> 6) & 0x1)
		// bit 7: "reverse" flag, not modeled, warn once.
		if (word>>7)&1 != 0 && !g.reverseWarned {
			g.reverseWarned = true
			slog.Warn("GP1 0x08 reverse flag is not modeled")
		}
	}
}
