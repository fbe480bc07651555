// Package memory holds the byte-addressable stores: main RAM (A), the
// boot ROM image (B), and the scratchpad. All three share the same
// little-endian accessor discipline the bus (E) relies on.
package memory

import "log/slog"

// RAM is the 2 MiB main-memory array.
type RAM struct {
	data []byte
}

// NewRAM returns a zero-initialized RAM of the given size.
func NewRAM(size uint32) *RAM {
	return &RAM{data: make([]byte, size)}
}

func (m *RAM) Read8(offset uint32) uint8 {
	return m.data[offset]
}

func (m *RAM) Read16(offset uint32) uint16 {
	return uint16(m.data[offset]) | uint16(m.data[offset+1])<<8
}

func (m *RAM) Read32(offset uint32) uint32 {
	return uint32(m.data[offset]) |
		uint32(m.data[offset+1])<<8 |
		uint32(m.data[offset+2])<<16 |
		uint32(m.data[offset+3])<<24
}

func (m *RAM) Write8(offset uint32, v uint8) {
	m.data[offset] = v
}

func (m *RAM) Write16(offset uint32, v uint16) {
	m.data[offset] = byte(v)
	m.data[offset+1] = byte(v >> 8)
}

func (m *RAM) Write32(offset uint32, v uint32) {
	m.data[offset] = byte(v)
	m.data[offset+1] = byte(v >> 8)
	m.data[offset+2] = byte(v >> 16)
	m.data[offset+3] = byte(v >> 24)
}

// Len returns the size of the backing store in bytes.
func (m *RAM) Len() uint32 {
	return uint32(len(m.data))
}

// Bytes exposes the raw backing slice.
func (m *RAM) Bytes() []byte {
	return m.data
}

// ROM is a read-only store; writes are logged once per address and dropped.
type ROM struct {
	data    []byte
	warned  map[uint32]bool
	region  string
}

// NewROM wraps image as a read-only store labeled region for warnings.
func NewROM(image []byte, region string) *ROM {
	return &ROM{data: image, warned: make(map[uint32]bool), region: region}
}

func (r *ROM) Read8(offset uint32) uint8 {
	return r.data[offset]
}

func (r *ROM) Read16(offset uint32) uint16 {
	return uint16(r.data[offset]) | uint16(r.data[offset+1])<<8
}

func (r *ROM) Read32(offset uint32) uint32 {
	return uint32(r.data[offset]) |
		uint32(r.data[offset+1])<<8 |
		uint32(r.data[offset+2])<<16 |
		uint32(r.data[offset+3])<<24
}

// Write logs the attempted write once per offset and drops it.
func (r *ROM) Write(offset uint32) {
	if r.warned[offset] {
		return
	}
	r.warned[offset] = true
	slog.Warn("write to read-only region dropped", "region", r.region, "offset", offset)
}

func (r *ROM) Len() uint32 {
	return uint32(len(r.data))
}
