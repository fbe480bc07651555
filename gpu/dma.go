package gpu

// DMAWrite implements dma.Peripheral: channel 2 streams command/data words
// straight into GP0.
func (g *GPU) DMAWrite(word uint32) {
	g.WriteGP0(word)
}

// DMARead implements dma.Peripheral: channel 2 to-RAM transfers pull
// consecutive GPUREAD words, advancing the VRAM->CPU transfer state machine
// one word at a time.
func (g *GPU) DMARead() uint32 {
	word := g.gpuread
	if g.mode == modeSendingPixels {
		g.fillGPUREAD()
	}
	return word
}
