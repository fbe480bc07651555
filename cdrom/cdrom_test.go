package cdrom

import (
	"bytes"
	"testing"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/cdimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDrive() (*Drive, *[]addr.IRQLine) {
	var requested []addr.IRQLine
	d := New(func(line addr.IRQLine) { requested = append(requested, line) })
	d.WriteRegister(3, 0x1F) // enable all interrupt codes
	return d, &requested
}

func TestCDROM_getStatusRespondsWithAck(t *testing.T) {
	d, requested := newTestDrive()

	d.WriteRegister(0, 0) // index 0
	d.WriteRegister(1, 0x01)

	d.WriteRegister(0, 1) // index 1 to read response
	resp := d.ReadRegister(1)
	assert.NotZero(t, resp)
	assert.Contains(t, *requested, addr.IRQCDROM)
	assert.Equal(t, IntAck, int(d.interruptFlags&0x7))
}

func TestCDROM_setLocationComputesLBAFromBCD(t *testing.T) {
	d, _ := newTestDrive()

	d.WriteRegister(2, 0x00) // minutes BCD 00
	d.WriteRegister(2, 0x02) // seconds BCD 02
	d.WriteRegister(2, 0x00) // frames BCD 00
	d.WriteRegister(1, 0x02)

	assert.Equal(t, 2*75-150, d.targetLBA)
}

func TestCDROM_setLocationWrongParamCountFails(t *testing.T) {
	d, requested := newTestDrive()

	d.WriteRegister(2, 0x00)
	d.WriteRegister(1, 0x02) // only one param, needs three

	assert.Equal(t, StateError, d.state)
	assert.Contains(t, *requested, addr.IRQCDROM)
	assert.Equal(t, IntError, int(d.interruptFlags&0x7))
}

func TestCDROM_readNormalDeliversSectorPayload(t *testing.T) {
	d, _ := newTestDrive()

	sector := make([]byte, 2352)
	for i := 24; i < 24+2048; i++ {
		sector[i] = byte(i)
	}
	img := cdimage.Open(bytes.NewReader(sector), int64(len(sector)))
	d.LoadDisc(img)
	d.targetLBA = 0

	d.WriteRegister(1, 0x06) // read-normal
	d.Tick(2000)

	require.Len(t, d.dataFIFO, 2048)
	assert.Equal(t, byte(24), d.dataFIFO[0])
	assert.Equal(t, IntDataReady, int(d.interruptFlags&0x7))
}

func TestCDROM_getIDReturnsLicensedIdentifierWhenDiscPresent(t *testing.T) {
	d, _ := newTestDrive()
	sector := make([]byte, 2352)
	img := cdimage.Open(bytes.NewReader(sector), int64(len(sector)))
	d.LoadDisc(img)

	d.WriteRegister(1, 0x1A)
	d.Tick(15000)

	d.WriteRegister(0, 1)
	var got []byte
	n := len(d.responseFIFO)
	for i := 0; i < n; i++ {
		got = append(got, d.ReadRegister(1))
	}
	assert.Equal(t, []byte("SCEA"), got[len(got)-4:])
}

func TestCDROM_getIDReportsNoDiscError(t *testing.T) {
	d, _ := newTestDrive()

	d.WriteRegister(1, 0x1A)
	d.Tick(15000)

	assert.Equal(t, IntError, int(d.interruptFlags&0x7))
	require.NotEmpty(t, d.responseFIFO)
	// responseFIFO[0] is the first-phase ack status byte; the error
	// response (error status, error code, ...) follows it.
	assert.Equal(t, uint8(0x80), d.responseFIFO[2])
}
