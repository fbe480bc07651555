package cpu

import "github.com/go-pstation/pstation/addr"

const (
	icacheLines     = 256
	icacheWordsLine = 4
)

// icacheLine is one 4-word direct-mapped cache line: one 20-bit tag shared
// by all four words, each with its own valid bit.
type icacheLine struct {
	tag   uint32
	words [icacheWordsLine]uint32
	valid [icacheWordsLine]bool
}

// icache is the 256-line instruction cache living inside the CPU.
type icache struct {
	lines [icacheLines]icacheLine
}

// fetch returns the instruction word at vaddr, consulting the cache unless
// the address falls in the uncached KSEG1 window.
func (ic *icache) fetch(vaddr uint32, bus Bus) uint32 {
	paddr, uncached := addr.Translate(vaddr)
	if uncached {
		return bus.Load32(vaddr)
	}

	tag := paddr >> 12
	lineIdx := (paddr >> 4) & 0xFF
	wordIdx := (paddr >> 2) & 0x3

	line := &ic.lines[lineIdx]
	if line.tag == tag && line.valid[wordIdx] {
		return line.words[wordIdx]
	}

	line.tag = tag
	for i := uint32(0); i < wordIdx; i++ {
		line.valid[i] = false
	}
	lineBase := vaddr &^ 0xF
	for i := wordIdx; i < icacheWordsLine; i++ {
		word := bus.Load32(lineBase + i*4)
		line.words[i] = word
		line.valid[i] = true
	}

	return line.words[wordIdx]
}
