// Package bus implements the memory-mapped I/O bus (E): virtual-address
// translation and dispatch to every mapped region — RAM, scratchpad, boot
// ROM, and the peripheral register windows.
package bus

import (
	"log/slog"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/cdrom"
	"github.com/go-pstation/pstation/dma"
	"github.com/go-pstation/pstation/gpu"
	"github.com/go-pstation/pstation/irq"
	"github.com/go-pstation/pstation/memory"
	"github.com/go-pstation/pstation/timer"
)

// Bus owns every addressable device and answers the CPU's Load/Store calls
// in physical address space, after translating from the virtual address
// the CPU presents.
type Bus struct {
	RAM     *memory.RAM
	Scratch *memory.RAM
	BootROM *memory.ROM

	IRQ   *irq.Controller
	DMA   *dma.Engine
	Timer *timer.Block
	GPU   *gpu.GPU
	CDROM *cdrom.Drive

	cacheControlWarned bool
	unknownWarned      map[uint32]bool
}

// New wires a bus around already-constructed peripherals. Boot ROM is
// supplied separately via LoadBootROM once its image is read from disk.
func New(irqCtl *irq.Controller, dmaEngine *dma.Engine, timers *timer.Block, g *gpu.GPU, cd *cdrom.Drive) *Bus {
	return &Bus{
		RAM:           memory.NewRAM(addr.RAMSize),
		Scratch:       memory.NewRAM(addr.ScratchpadSize),
		IRQ:           irqCtl,
		DMA:           dmaEngine,
		Timer:         timers,
		GPU:           g,
		CDROM:         cd,
		unknownWarned: make(map[uint32]bool),
	}
}

// LoadBootROM installs the 512 KiB BIOS image at BootROMStart.
func (b *Bus) LoadBootROM(image []byte) {
	b.BootROM = memory.NewROM(image, "boot-rom")
}

// PendingInterrupt satisfies cpu.Bus: the CPU samples this once per step
// before fetching.
func (b *Bus) PendingInterrupt() bool {
	return b.IRQ.Pending()
}

func (b *Bus) translate(vaddr uint32) (paddr uint32, uncached bool) {
	return addr.Translate(vaddr)
}

// Load32 satisfies cpu.Bus and dma's RAM-facing reads where applicable.
func (b *Bus) Load32(vaddr uint32) uint32 {
	paddr, _ := b.translate(vaddr)
	return b.read32(paddr)
}

func (b *Bus) Load16(vaddr uint32) uint16 {
	paddr, _ := b.translate(vaddr)
	return uint16(b.read32Aligned(paddr, 2))
}

func (b *Bus) Load8(vaddr uint32) uint8 {
	paddr, _ := b.translate(vaddr)
	return uint8(b.read32Aligned(paddr, 1))
}

func (b *Bus) Store32(vaddr uint32, v uint32) { b.dispatchStore(vaddr, v, 4) }
func (b *Bus) Store16(vaddr uint32, v uint16) { b.dispatchStore(vaddr, uint32(v), 2) }
func (b *Bus) Store8(vaddr uint32, v uint8)   { b.dispatchStore(vaddr, uint32(v), 1) }

// read32Aligned reads width bytes at an address that need not itself be
// 32-bit aligned (used for the byte/halfword accessors), going through the
// same region dispatch as a full word.
func (b *Bus) read32Aligned(paddr uint32, width uint32) uint32 {
	switch {
	case inRange(paddr, addr.RAMStart, addr.RAMSize):
		off := paddr - addr.RAMStart
		switch width {
		case 1:
			return uint32(b.RAM.Read8(off))
		case 2:
			return uint32(b.RAM.Read16(off))
		default:
			return b.RAM.Read32(off)
		}
	case inRange(paddr, addr.ScratchpadStart, addr.ScratchpadSize):
		off := paddr - addr.ScratchpadStart
		switch width {
		case 1:
			return uint32(b.Scratch.Read8(off))
		case 2:
			return uint32(b.Scratch.Read16(off))
		default:
			return b.Scratch.Read32(off)
		}
	case b.BootROM != nil && inRange(paddr, addr.BootROMStart, addr.BootROMSize):
		off := paddr - addr.BootROMStart
		switch width {
		case 1:
			return uint32(b.BootROM.Read8(off))
		case 2:
			return uint32(b.BootROM.Read16(off))
		default:
			return b.BootROM.Read32(off)
		}
	case inRange(paddr, addr.CDROMStart, addr.CDROMSize):
		return uint32(b.CDROM.ReadRegister(paddr - addr.CDROMStart))
	default:
		return b.read32(paddr)
	}
}

// read32 handles the remaining regions, all of which are register blocks
// natively 32-bit wide.
func (b *Bus) read32(paddr uint32) uint32 {
	switch {
	case inRange(paddr, addr.RAMStart, addr.RAMSize):
		return b.RAM.Read32(paddr - addr.RAMStart)
	case inRange(paddr, addr.ScratchpadStart, addr.ScratchpadSize):
		return b.Scratch.Read32(paddr - addr.ScratchpadStart)
	case b.BootROM != nil && inRange(paddr, addr.BootROMStart, addr.BootROMSize):
		return b.BootROM.Read32(paddr - addr.BootROMStart)
	case paddr == addr.InterruptStatus:
		return b.IRQ.Status()
	case paddr == addr.InterruptMask:
		return b.IRQ.Mask()
	case inRange(paddr, addr.DMAStart, addr.DMASize):
		return b.DMA.ReadRegister(paddr - addr.DMAStart)
	case inRange(paddr, addr.TimerStart, addr.TimerSize):
		return b.Timer.ReadRegister(paddr - addr.TimerStart)
	case paddr == addr.GPUGP0:
		return b.GPU.ReadGPUREAD()
	case paddr == addr.GPUGP1:
		return b.GPU.ReadStatus()
	case inRange(paddr, addr.CDROMStart, addr.CDROMSize):
		return uint32(b.CDROM.ReadRegister(paddr - addr.CDROMStart))
	case paddr == addr.CacheControl:
		return 0
	default:
		b.warnUnknown(paddr, "read")
		return 0xFFFF_FFFF
	}
}

func (b *Bus) dispatchStore(vaddr uint32, v uint32, width uint32) {
	paddr, _ := b.translate(vaddr)

	switch {
	case inRange(paddr, addr.RAMStart, addr.RAMSize):
		off := paddr - addr.RAMStart
		b.storeRAM(b.RAM, off, v, width)
	case inRange(paddr, addr.ScratchpadStart, addr.ScratchpadSize):
		off := paddr - addr.ScratchpadStart
		b.storeRAM(b.Scratch, off, v, width)
	case b.BootROM != nil && inRange(paddr, addr.BootROMStart, addr.BootROMSize):
		b.BootROM.Write(paddr - addr.BootROMStart)
	case paddr == addr.InterruptStatus:
		b.IRQ.WriteStatus(v)
	case paddr == addr.InterruptMask:
		b.IRQ.WriteMask(v)
	case inRange(paddr, addr.DMAStart, addr.DMASize):
		ch, activated := b.DMA.WriteRegister(paddr-addr.DMAStart, v)
		if activated {
			b.DMA.Drain(ch)
		}
	case inRange(paddr, addr.TimerStart, addr.TimerSize):
		b.Timer.WriteRegister(paddr-addr.TimerStart, v)
	case paddr == addr.GPUGP0:
		b.GPU.WriteGP0(v)
	case paddr == addr.GPUGP1:
		b.GPU.WriteGP1(v)
	case inRange(paddr, addr.CDROMStart, addr.CDROMSize):
		b.CDROM.WriteRegister(paddr-addr.CDROMStart, uint8(v))
	case paddr == addr.CacheControl:
		b.warnCacheControl()
	case inRange(paddr, addr.MemControlStart, addr.MemControlSize):
		// RAM-size/expansion-base tuning registers: accepted and ignored.
	default:
		b.warnUnknown(paddr, "write")
	}
}

func (b *Bus) storeRAM(ram *memory.RAM, off uint32, v uint32, width uint32) {
	switch width {
	case 1:
		ram.Write8(off, uint8(v))
	case 2:
		ram.Write16(off, uint16(v))
	default:
		ram.Write32(off, v)
	}
}

func (b *Bus) warnCacheControl() {
	if b.cacheControlWarned {
		return
	}
	b.cacheControlWarned = true
	slog.Warn("cache control register write ignored")
}

func (b *Bus) warnUnknown(paddr uint32, op string) {
	if b.unknownWarned[paddr] {
		return
	}
	b.unknownWarned[paddr] = true
	slog.Warn("access to unmapped address", "op", op, "addr", paddr)
}

func inRange(paddr, base, size uint32) bool {
	return paddr >= base && paddr < base+size
}
