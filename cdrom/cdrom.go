// Package cdrom implements the disc drive (I): the index-multiplexed
// register file, parameter/response FIFOs, command dispatch, and the
// multi-phase continuation-with-countdown model.
package cdrom

import (
	"log/slog"

	"github.com/go-pstation/pstation/addr"
	"github.com/go-pstation/pstation/cdimage"
)

// DriveState is the drive's coarse lifecycle state.
type DriveState int

const (
	StateIdle DriveState = iota
	StateExecuting
	StateReading
	StateError
)

// Interrupt codes pushed alongside a response.
const (
	IntDataReady = 1
	IntComplete  = 2
	IntAck       = 3
	IntError     = 5
)

const fifoCapacity = 16

// setMode bit 5 selects the sector-size used by read-normal extraction.
const modeSectorSizeBit = 1 << 5

type continuation struct {
	cyclesLeft int
	fn         func(*Drive)
}

// Drive is the CD-ROM controller.
type Drive struct {
	requestIRQ addr.RequestIRQ

	index uint8

	paramFIFO    []byte
	responseFIFO []byte
	dataFIFO     []byte

	interruptEnable uint8
	interruptFlags  uint8

	targetLBA int
	mode      uint8
	state     DriveState

	pending *continuation

	disc *cdimage.Image
}

// New returns a powered-on drive with no disc loaded.
func New(requestIRQ addr.RequestIRQ) *Drive {
	return &Drive{requestIRQ: requestIRQ}
}

// LoadDisc attaches a disc image, making get-id/read commands succeed.
func (d *Drive) LoadDisc(img *cdimage.Image) {
	d.disc = img
}

// Tick decrements any pending continuation and invokes it on expiry.
func (d *Drive) Tick(cycles int) {
	if d.pending == nil {
		return
	}
	d.pending.cyclesLeft -= cycles
	if d.pending.cyclesLeft <= 0 {
		fn := d.pending.fn
		d.pending = nil
		fn(d)
	}
}

// ReadRegister dispatches an index-multiplexed register read.
func (d *Drive) ReadRegister(offset uint32) uint8 {
	switch offset {
	case 0:
		return d.statusByte()
	case 1:
		return d.popResponse()
	case 2:
		return d.popData()
	case 3:
		if d.index == 1 || d.index == 3 {
			return d.interruptFlags | 0xE0
		}
		return d.interruptEnable
	default:
		return 0xFF
	}
}

// WriteRegister dispatches an index-multiplexed register write.
func (d *Drive) WriteRegister(offset uint32, value uint8) {
	switch offset {
	case 0:
		d.index = value & 0x3
	case 1:
		if d.index == 0 {
			d.dispatchCommand(value)
		}
	case 2:
		if d.index == 0 {
			d.pushParameter(value)
		}
	case 3:
		switch d.index {
		case 0:
			d.interruptEnable = value & 0x1F
		case 1:
			d.interruptFlags &^= value & 0x1F
			if value&0x40 != 0 {
				d.paramFIFO = d.paramFIFO[:0]
			}
		}
	}
}

func (d *Drive) statusByte() uint8 {
	var s uint8
	s |= d.index & 0x3
	if len(d.paramFIFO) == 0 {
		s |= 1 << 3
	}
	if len(d.paramFIFO) < fifoCapacity {
		s |= 1 << 4
	}
	if len(d.responseFIFO) > 0 {
		s |= 1 << 5
	}
	if len(d.dataFIFO) > 0 {
		s |= 1 << 6
	}
	if d.state == StateExecuting {
		s |= 1 << 7
	}
	return s
}

func (d *Drive) pushParameter(b byte) {
	if len(d.paramFIFO) >= fifoCapacity {
		slog.Warn("cdrom parameter FIFO overflow, byte dropped")
		return
	}
	d.paramFIFO = append(d.paramFIFO, b)
}

func (d *Drive) popResponse() byte {
	if len(d.responseFIFO) == 0 {
		return 0
	}
	b := d.responseFIFO[0]
	d.responseFIFO = d.responseFIFO[1:]
	return b
}

func (d *Drive) popData() byte {
	if len(d.dataFIFO) == 0 {
		return 0
	}
	b := d.dataFIFO[0]
	d.dataFIFO = d.dataFIFO[1:]
	return b
}

// respond pushes bytes to the response FIFO, raises interruptCode if the
// matching enable bit is set, and clears the parameter FIFO (every command
// response on this drive consumes all parameters up front).
func (d *Drive) respond(interruptCode uint8, bytes ...byte) {
	d.responseFIFO = append(d.responseFIFO, bytes...)
	d.paramFIFO = d.paramFIFO[:0]
	d.interruptFlags = (d.interruptFlags &^ 0x7) | interruptCode
	if d.interruptEnable&interruptCode != 0 {
		d.requestIRQ(addr.IRQCDROM)
	}
}

// fail pushes the error-status/error-code pair and raises INT5
// (a recoverable peripheral fault).
func (d *Drive) fail(errorCode uint8) {
	d.state = StateError
	d.respond(IntError, d.driveStatusByte()|0x1, errorCode)
}

// driveStatusByte is the status byte returned in get-status and folded
// into most other responses (bit 5 = reading, bit 4 = no disc, bit 1 =
// motor on; bit 0 = error is added by fail — a reduced subset sufficient
// for this substrate).
func (d *Drive) driveStatusByte() uint8 {
	var s uint8
	if d.disc != nil {
		s |= 1 << 1 // motor on
	} else {
		s |= 1 << 4 // shell open / no disc, reused here as "no disc present"
	}
	if d.state == StateReading {
		s |= 1 << 5
	}
	return s
}

func (d *Drive) schedule(cycles int, fn func(*Drive)) {
	d.pending = &continuation{cyclesLeft: cycles, fn: fn}
}

func (d *Drive) dispatchCommand(opcode byte) {
	d.state = StateExecuting
	switch opcode {
	case 0x01:
		d.cmdGetStatus()
	case 0x02:
		d.cmdSetLocation()
	case 0x06:
		d.cmdReadNormal()
	case 0x08:
		d.cmdStop()
	case 0x09:
		d.cmdPause()
	case 0x0A:
		d.cmdInit()
	case 0x0E:
		d.cmdSetMode()
	case 0x15:
		d.cmdSeekLogical()
	case 0x19:
		d.cmdTest()
	case 0x1A:
		d.cmdGetID()
	default:
		d.fail(0x40)
	}
}

func (d *Drive) cmdGetStatus() {
	d.state = StateIdle
	d.respond(IntAck, d.driveStatusByte())
}

func bcdToInt(b byte) int {
	return int(b>>4)*10 + int(b&0xF)
}

func (d *Drive) cmdSetLocation() {
	if len(d.paramFIFO) != 3 {
		d.fail(0x20)
		return
	}
	m, s, f := bcdToInt(d.paramFIFO[0]), bcdToInt(d.paramFIFO[1]), bcdToInt(d.paramFIFO[2])
	d.targetLBA = (m*60+s)*75 + f - 150
	d.state = StateIdle
	d.respond(IntAck, d.driveStatusByte())
}

func (d *Drive) cmdSetMode() {
	if len(d.paramFIFO) != 1 {
		d.fail(0x20)
		return
	}
	d.mode = d.paramFIFO[0]
	d.state = StateIdle
	d.respond(IntAck, d.driveStatusByte())
}

func (d *Drive) cmdReadNormal() {
	if d.disc == nil {
		d.fail(0x80)
		return
	}
	d.state = StateReading
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(2000, func(d *Drive) {
		raw, err := d.disc.ReadSector(d.targetLBA)
		if err != nil {
			d.fail(0x80)
			return
		}
		if d.mode&modeSectorSizeBit != 0 {
			d.dataFIFO = append([]byte(nil), raw[12:12+2340]...)
		} else {
			d.dataFIFO = append([]byte(nil), raw[24:24+2048]...)
		}
		d.targetLBA++
		d.respond(IntDataReady, d.driveStatusByte())
	})
}

func (d *Drive) cmdStop() {
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(5000, func(d *Drive) {
		d.state = StateIdle
		d.respond(IntComplete, d.driveStatusByte())
	})
}

func (d *Drive) cmdPause() {
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(2000, func(d *Drive) {
		d.state = StateIdle
		d.respond(IntComplete, d.driveStatusByte())
	})
}

func (d *Drive) cmdInit() {
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(20000, func(d *Drive) {
		d.state = StateIdle
		d.mode = 0
		d.respond(IntComplete, d.driveStatusByte())
	})
}

func (d *Drive) cmdSeekLogical() {
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(5000, func(d *Drive) {
		d.state = StateIdle
		d.respond(IntComplete, d.driveStatusByte())
	})
}

func (d *Drive) cmdTest() {
	if len(d.paramFIFO) != 1 || d.paramFIFO[0] != 0x20 {
		d.fail(0x10)
		return
	}
	d.state = StateIdle
	// Fixed firmware-identifier bytes (version, date digits), arbitrary but
	// stable, since no real BIOS-visible firmware is modeled.
	d.respond(IntAck, 0x94, 0x09, 0x19, 0xC0)
}

func (d *Drive) cmdGetID() {
	d.respond(IntAck, d.driveStatusByte())
	d.schedule(15000, func(d *Drive) {
		d.state = StateIdle
		if d.disc == nil {
			d.respond(IntError, 0x08, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
			return
		}
		d.respond(IntComplete, d.driveStatusByte(), 0x00, 0x20, 0x00, 'S', 'C', 'E', 'A')
	})
}
