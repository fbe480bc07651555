// Package pstation wires the bus, CPU, and peripherals into a single
// cooperative-thread machine, owning the CPU/GPU/MMU triple and driving
// the fixed per-tick step order through a RunUntilFrame loop.
package pstation

import (
	"fmt"
	"os"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/bus"
	"github.com/go-pstation/pstation/cdimage"
	"github.com/go-pstation/pstation/cdrom"
	"github.com/go-pstation/pstation/cpu"
	"github.com/go-pstation/pstation/dma"
	"github.com/go-pstation/pstation/gpu"
	"github.com/go-pstation/pstation/irq"
	"github.com/go-pstation/pstation/rasterizer"
	"github.com/go-pstation/pstation/timer"
)

// cyclesPerFrame approximates one NTSC video frame's worth of CPU cycles
// at the nominal ~33.8688MHz system clock and 60Hz refresh.
const cyclesPerFrame = 564480

// Machine is the root struct: every component plus the bus that routes
// between them.
type Machine struct {
	CPU   *cpu.CPU
	Bus   *bus.Bus
	IRQ   *irq.Controller
	DMA   *dma.Engine
	Timer *timer.Block
	GPU   *gpu.GPU
	CDROM *cdrom.Drive

	frameCount uint64
}

// New wires a machine around an optional rasterizer (nil installs the
// logging stub). Load a boot ROM through Bus.LoadBootROM (or construct
// with NewWithBootROM) before stepping.
func New(ras rasterizer.Rasterizer) *Machine {
	irqCtl := irq.New()
	timers := timer.New(irqCtl.Request)
	g := gpu.New(irqCtl.Request, ras)
	cd := cdrom.New(irqCtl.Request)

	b := bus.New(irqCtl, nil, timers, g, cd)
	b.DMA = dma.New(b.RAM, irqCtl.Request)
	b.DMA.Connect(dma.GPUChannel, g)

	return &Machine{
		CPU:   cpu.New(b),
		Bus:   b,
		IRQ:   irqCtl,
		DMA:   b.DMA,
		Timer: timers,
		GPU:   g,
		CDROM: cd,
	}
}

// NewWithBootROM constructs a machine and loads the boot ROM image from
// path, validating its size against the fixed BIOS ROM size.
func NewWithBootROM(path string, ras rasterizer.Rasterizer) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boot rom: %w", err)
	}
	if uint32(len(data)) != addr.BootROMSize {
		return nil, fmt.Errorf("boot rom must be exactly %d bytes, got %d", addr.BootROMSize, len(data))
	}

	m := New(ras)
	m.Bus.LoadBootROM(data)
	return m, nil
}

// LoadDisc attaches a disc image read from an already-open reader.
func (m *Machine) LoadDisc(img *cdimage.Image) {
	m.CDROM.LoadDisc(img)
}

// Step executes exactly one CPU cycle and steps every peripheral the same
// number of CPU cycles it consumed, following the fixed order: CPU,
// timers, disc. Graphics scanline timing is driven off the same cycle
// count so VBlank fires without a separate driver thread.
func (m *Machine) Step() {
	m.CPU.Step()
	const cyclesPerCPUStep = 1
	m.Timer.Tick(cyclesPerCPUStep)
	m.CDROM.Tick(cyclesPerCPUStep)
	m.GPU.Tick(cyclesPerCPUStep)
}

// RunUntilFrame steps the machine until one frame's worth of cycles has
// elapsed.
func (m *Machine) RunUntilFrame() {
	for i := 0; i < cyclesPerFrame; i++ {
		m.Step()
	}
	m.frameCount++
}

// FrameCount returns the number of frames executed by RunUntilFrame.
func (m *Machine) FrameCount() uint64 {
	return m.frameCount
}
