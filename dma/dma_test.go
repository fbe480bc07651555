package dma

import (
	"testing"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/memory"
	"github.com/stretchr/testify/assert"
)

type fakePeripheral struct {
	written []uint32
	toRead  []uint32
}

func (f *fakePeripheral) DMAWrite(word uint32) {
	f.written = append(f.written, word)
}

func (f *fakePeripheral) DMARead() uint32 {
	if len(f.toRead) == 0 {
		return 0
	}
	w := f.toRead[0]
	f.toRead = f.toRead[1:]
	return w
}

func newTestEngine() (*Engine, *memory.RAM, *[]addr.IRQLine) {
	ram := memory.NewRAM(addr.RAMSize)
	var requested []addr.IRQLine
	e := New(ram, func(line addr.IRQLine) { requested = append(requested, line) })
	return e, ram, &requested
}

func TestDMA_manualBlockFromRAMStreamsToPeripheral(t *testing.T) {
	e, ram, _ := newTestEngine()
	p := &fakePeripheral{}
	e.Connect(GPUChannel, p)

	ram.Write32(0x1000, 0xAAAAAAAA)
	ram.Write32(0x1004, 0xBBBBBBBB)

	e.WriteRegister(GPUChannel*0x10+0x0, 0x1000)
	e.WriteRegister(GPUChannel*0x10+0x4, 2) // block size 2, manual
	_, activated := e.WriteRegister(GPUChannel*0x10+0x8, 0x11000001)
	assert.True(t, activated)

	e.Drain(GPUChannel)

	assert.Equal(t, []uint32{0xAAAAAAAA, 0xBBBBBBBB}, p.written)
	assert.False(t, e.channels[GPUChannel].active())
}

func TestDMA_requestModeToRAMPullsFromPeripheral(t *testing.T) {
	e, ram, _ := newTestEngine()
	p := &fakePeripheral{toRead: []uint32{0x11111111, 0x22222222}}
	e.Connect(GPUChannel, p)

	e.WriteRegister(GPUChannel*0x10+0x0, 0x2000)
	e.WriteRegister(GPUChannel*0x10+0x4, 0x0001_0002) // blockCount=1, blockSize=2
	e.WriteRegister(GPUChannel*0x10+0x8, 0x01000200)  // to-RAM, request sync, enable

	e.Drain(GPUChannel)

	assert.Equal(t, uint32(0x11111111), ram.Read32(0x2000))
	assert.Equal(t, uint32(0x22222222), ram.Read32(0x2004))
}

func TestDMA_otcChannelSynthesizesReverseTable(t *testing.T) {
	e, ram, _ := newTestEngine()

	e.WriteRegister(OTCChannel*0x10+0x0, 0x3000+4*3)
	e.WriteRegister(OTCChannel*0x10+0x4, 4) // 4 entries, manual
	e.WriteRegister(OTCChannel*0x10+0x8, 0x11000002) // backward step, enable, trigger, manual sync

	e.Drain(OTCChannel)

	assert.Equal(t, uint32(0x3000+4*2), ram.Read32(0x3000+4*3))
	assert.Equal(t, uint32(0x3000+4*1), ram.Read32(0x3000+4*2))
	assert.Equal(t, uint32(0x3000+4*0), ram.Read32(0x3000+4*1))
	assert.Equal(t, uint32(0x00FFFFFF), ram.Read32(0x3000+4*0))
}

func TestDMA_linkedListWalksChainToGPU(t *testing.T) {
	e, ram, _ := newTestEngine()
	p := &fakePeripheral{}
	e.Connect(GPUChannel, p)

	// node0: 2 payload words, next=node1 at absolute address 0x4010
	ram.Write32(0x4000, 0x02_004010)
	ram.Write32(0x4004, 0xD00D0001)
	ram.Write32(0x4008, 0xD00D0002)
	// node1: 1 payload word, terminator
	ram.Write32(0x4010, 0x01_FFFFFF)
	ram.Write32(0x4014, 0xD00D0003)

	e.WriteRegister(GPUChannel*0x10+0x0, 0x4000)
	e.WriteRegister(GPUChannel*0x10+0x8, 0x0100_0401) // enable, from-RAM, linked-list sync

	e.Drain(GPUChannel)

	assert.Equal(t, []uint32{0xD00D0001, 0xD00D0002, 0xD00D0003}, p.written)
}

func TestDMA_linkedListTerminatesOnBit23(t *testing.T) {
	e, ram, _ := newTestEngine()
	p := &fakePeripheral{}
	e.Connect(GPUChannel, p)

	ram.Write32(0x100, 0x01000200) // 1 payload word, next=0x200
	ram.Write32(0x104, 0x00000000) // GP0 no-op
	ram.Write32(0x200, 0x00800000) // terminator: bit 23 set

	e.WriteRegister(GPUChannel*0x10+0x0, 0x100)
	e.WriteRegister(GPUChannel*0x10+0x8, 0x01000401)

	e.Drain(GPUChannel)

	assert.Equal(t, []uint32{0x00000000}, p.written)
	assert.False(t, e.channels[GPUChannel].active())
}

func TestDMA_interruptRequiresChannelAndMasterEnable(t *testing.T) {
	e, _, requested := newTestEngine()
	p := &fakePeripheral{}
	e.Connect(GPUChannel, p)

	e.writeICR((1 << 23) | (1 << uint(16+GPUChannel)))

	e.WriteRegister(GPUChannel*0x10+0x0, 0x5000)
	e.WriteRegister(GPUChannel*0x10+0x4, 1)
	e.WriteRegister(GPUChannel*0x10+0x8, 0x01000201)
	e.Drain(GPUChannel)

	assert.Contains(t, *requested, addr.IRQDMA)
	assert.True(t, e.readICR()&(1<<31) != 0)
}
