// Package dma implements the DMA engine (H): seven channels, three sync
// modes, driving bulk RAM<->peripheral transfers.
package dma

import (
	"log/slog"

	"github.com/go-pstation/pstation/addr"
)

// Peripheral is a DMA-addressable target. The GPU implements it (channel 2)
// to receive/produce the words a channel streams.
type Peripheral interface {
	DMAWrite(word uint32) // from-RAM: one word pushed to the peripheral
	DMARead() uint32      // to-RAM: one word pulled from the peripheral
}

// Direction of a channel's configured transfer.
type Direction int

const (
	ToRAM Direction = iota
	FromRAM
)

// SyncMode selects how a channel's transfer is shaped.
type SyncMode int

const (
	SyncManual SyncMode = iota
	SyncRequest
	SyncLinkedList
)

const numChannels = 7

// GPUChannel and OTCChannel name the two channels with special behavior
// (channel 2 = GPU, channel 6 = OTC/reverse-table synth).
const (
	GPUChannel = 2
	OTCChannel = 6
)

type channel struct {
	base       uint32
	blockSize  uint16
	blockCount uint16
	control    uint32
}

func (c *channel) direction() Direction {
	if c.control&1 != 0 {
		return FromRAM
	}
	return ToRAM
}

func (c *channel) step() int32 {
	if c.control&(1<<1) != 0 {
		return -4
	}
	return 4
}

func (c *channel) syncMode() SyncMode {
	return SyncMode((c.control >> 9) & 0x3)
}

func (c *channel) enabled() bool {
	return c.control&(1<<24) != 0
}

func (c *channel) trigger() bool {
	return c.control&(1<<28) != 0
}

// active reports whether the channel should currently be draining:
// enable ∧ (sync ≠ manual ∨ trigger).
func (c *channel) active() bool {
	if !c.enabled() {
		return false
	}
	if c.syncMode() != SyncManual {
		return true
	}
	return c.trigger()
}

func (c *channel) clearAfterCompletion() {
	c.control &^= 1 << 24
	c.control &^= 1 << 28
}

// Engine holds all seven channels plus the priority and interrupt registers.
type Engine struct {
	channels [numChannels]channel
	priority uint32
	icr      uint32

	requestIRQ  addr.RequestIRQ
	ram         *ramAccess
	peripherals [numChannels]Peripheral
}

// ramAccess is the minimal surface DMA needs from main memory: raw
// little-endian word access by byte offset, used to walk the channel's
// address range directly.
type ramAccess struct {
	read  func(offset uint32) uint32
	write func(offset uint32, value uint32)
	size  uint32
}

// RAMReadWriter is implemented by memory.RAM.
type RAMReadWriter interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, v uint32)
	Len() uint32
}

// New returns a powered-on DMA engine wired to ram and the interrupt
// controller capability.
func New(ram RAMReadWriter, requestIRQ addr.RequestIRQ) *Engine {
	return &Engine{
		requestIRQ: requestIRQ,
		ram: &ramAccess{
			read:  ram.Read32,
			write: ram.Write32,
			size:  ram.Len(),
		},
	}
}

// Connect attaches a peripheral to a channel index (0..6).
func (e *Engine) Connect(channelIndex int, p Peripheral) {
	e.peripherals[channelIndex] = p
}

func (e *Engine) maskAddr(a uint32) uint32 {
	return a & (e.ram.size - 1)
}

// ReadRegister reads one of the per-channel or global DMA registers by
// physical offset from addr.DMAStart.
func (e *Engine) ReadRegister(offset uint32) uint32 {
	if offset == addr.DMAPriorityOffset {
		return e.priority
	}
	if offset == addr.DMAInterruptOffset {
		return e.readICR()
	}
	ch := offset / addr.DMAChannelStride
	reg := offset % addr.DMAChannelStride
	if int(ch) >= numChannels {
		return 0
	}
	c := &e.channels[ch]
	switch reg {
	case 0x0:
		return c.base & 0xFFFFFF
	case 0x4:
		return uint32(c.blockCount)<<16 | uint32(c.blockSize)
	case 0x8:
		return c.control
	default:
		return 0
	}
}

// WriteRegister writes one of the per-channel or global DMA registers.
// It returns true if the write activated a channel, in which case the bus
// must immediately call Drain for that channel index.
func (e *Engine) WriteRegister(offset uint32, value uint32) (activatedChannel int, activated bool) {
	if offset == addr.DMAPriorityOffset {
		e.priority = value
		return 0, false
	}
	if offset == addr.DMAInterruptOffset {
		e.writeICR(value)
		return 0, false
	}
	ch := offset / addr.DMAChannelStride
	reg := offset % addr.DMAChannelStride
	if int(ch) >= numChannels {
		return 0, false
	}
	c := &e.channels[ch]
	wasActive := c.active()
	switch reg {
	case 0x0:
		c.base = value & 0xFFFFFF
	case 0x4:
		c.blockSize = uint16(value)
		c.blockCount = uint16(value >> 16)
	case 0x8:
		c.control = value
	}
	if !wasActive && c.active() {
		return int(ch), true
	}
	return 0, false
}

func (e *Engine) readICR() uint32 {
	return e.icr | e.masterFlagBit()
}

func (e *Engine) masterFlagBit() uint32 {
	forceIRQ := e.icr&(1<<15) != 0
	masterEnable := e.icr&(1<<23) != 0
	anyChannelFired := false
	for ch := 0; ch < numChannels; ch++ {
		enabled := e.icr&(1<<uint(16+ch)) != 0
		flagged := e.icr&(1<<uint(24+ch)) != 0
		if enabled && flagged {
			anyChannelFired = true
		}
	}
	if forceIRQ || (masterEnable && anyChannelFired) {
		return 1 << 31
	}
	return 0
}

func (e *Engine) writeICR(value uint32) {
	// Bits 24-30 (channel flags) are write-1-to-clear (ack); the rest
	// replace outright.
	ackMask := value & 0x7F000000
	kept := value &^ 0x7F000000
	e.icr = kept | (e.icr & 0x7F000000 &^ ackMask)
}

// requestChannelIRQ sets the flag bit for ch and raises the DMA line if the
// channel's enable bit and the master enable bit are both set.
func (e *Engine) requestChannelIRQ(ch int) {
	enabled := e.icr&(1<<uint(16+ch)) != 0
	masterEnable := e.icr&(1<<23) != 0
	e.icr |= 1 << uint(24+ch)
	if enabled && masterEnable {
		e.requestIRQ(addr.IRQDMA)
	}
}

// Drain runs channel ch to completion. DMA drains are atomic from the
// CPU's point of view: this call never yields back to the CPU until
// the transfer (manual/request word-count or linked-list chain) is done.
func (e *Engine) Drain(ch int) {
	c := &e.channels[ch]
	if !c.active() {
		return
	}

	switch c.syncMode() {
	case SyncManual, SyncRequest:
		e.drainBlock(ch, c)
	case SyncLinkedList:
		if ch != GPUChannel || c.direction() != FromRAM {
			slog.Warn("linked-list DMA only supported on channel 2 from-RAM", "channel", ch)
			c.clearAfterCompletion()
			return
		}
		e.drainLinkedList(ch, c)
	}

	c.clearAfterCompletion()
	e.requestChannelIRQ(ch)
}

func (e *Engine) wordCount(c *channel) uint32 {
	switch c.syncMode() {
	case SyncManual:
		if c.blockSize == 0 {
			return 0x10000
		}
		return uint32(c.blockSize)
	case SyncRequest:
		return uint32(c.blockSize) * uint32(c.blockCount)
	default:
		return 0
	}
}

func (e *Engine) drainBlock(ch int, c *channel) {
	count := e.wordCount(c)
	addrCur := c.base
	step := c.step()

	if ch == OTCChannel {
		e.synthReverseTable(addrCur, count, step)
		return
	}

	peripheral := e.peripherals[ch]
	for i := uint32(0); i < count; i++ {
		offset := e.maskAddr(addrCur)
		switch c.direction() {
		case FromRAM:
			word := e.ram.read(offset)
			if peripheral != nil {
				peripheral.DMAWrite(word)
			}
		case ToRAM:
			var word uint32
			if peripheral != nil {
				word = peripheral.DMARead()
			}
			e.ram.write(offset, word)
		}
		addrCur = uint32(int64(addrCur) + int64(step))
	}
}

// synthReverseTable implements channel 6's to-RAM reverse-ordering-table
// generator: each word points to the previous address, the last word is
// the terminator 0x00FFFFFF.
func (e *Engine) synthReverseTable(base uint32, count uint32, step int32) {
	addrCur := base
	for i := uint32(0); i < count; i++ {
		offset := e.maskAddr(addrCur)
		if i == count-1 {
			e.ram.write(offset, 0x00FFFFFF)
		} else {
			prev := uint32(int64(addrCur) + int64(step)) & 0x00FFFFFF
			e.ram.write(offset, prev)
		}
		addrCur = uint32(int64(addrCur) + int64(step))
	}
}

// drainLinkedList walks a chain of (count:next) headers starting at the
// channel's base address, streaming each packet's words into the GPU's
// GP0 port.
func (e *Engine) drainLinkedList(ch int, c *channel) {
	gpu := e.peripherals[ch]
	node := c.base & 0xFFFFFF

	for {
		header := e.ram.read(e.maskAddr(node))
		packetWords := header >> 24
		next := header & 0xFFFFFF

		for i := uint32(0); i < packetWords; i++ {
			wordOffset := e.maskAddr(node + 4 + i*4)
			word := e.ram.read(wordOffset)
			if gpu != nil {
				gpu.DMAWrite(word)
			}
		}

		if header&0x00800000 != 0 || next == 0x00FFFFFF {
			break
		}
		node = next
	}
}
