package gpu

import "github.com/go-pstation/pstation/addr"

// VRAM is the 1 MiB video memory (C): 1024x512 16-bit pixels, addressed as
// halfwords. It is not bus-mapped directly — the CPU only ever reaches it
// through GP0 pixel-transfer commands.
type VRAM struct {
	data [addr.VRAMWidth * addr.VRAMHeight]uint16
}

// NewVRAM returns a zeroed 1024x512 framebuffer.
func NewVRAM() *VRAM {
	return &VRAM{}
}

// At returns the halfword at (x, y), wrapping both coordinates the way the
// real VRAM address generator wraps on overflow.
func (v *VRAM) At(x, y int) uint16 {
	x &= addr.VRAMWidth - 1
	y &= addr.VRAMHeight - 1
	return v.data[y*addr.VRAMWidth+x]
}

// Set writes the halfword at (x, y), with the same wrap-around behavior.
func (v *VRAM) Set(x, y int, value uint16) {
	x &= addr.VRAMWidth - 1
	y &= addr.VRAMHeight - 1
	v.data[y*addr.VRAMWidth+x] = value
}

// Clear zeroes the entire framebuffer (used by GP1 0x00 full reset).
func (v *VRAM) Clear() {
	for i := range v.data {
		v.data[i] = 0
	}
}
