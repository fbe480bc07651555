// Package cdimage reads a disc image as a byte-addressable sector stream
// for the disc drive (I). It does not parse ISO-9660 directory structures;
// that stays with the out-of-scope disc-image tooling named only by interface.
package cdimage

import (
	"fmt"
	"io"
)

const (
	rawSectorSize  = 2352
	isoSectorSize  = 2048
	dataOffsetIn2352 = 24 // Mode1/Mode2-Form1 user data offset within a raw sector
)

// Format identifies the on-disk sector framing.
type Format int

const (
	FormatRaw2352 Format = iota
	FormatISO2048
)

// Image is an open disc backed by a raw byte stream, either 2352-byte raw
// sectors or 2048-byte ISO sectors.
type Image struct {
	r      io.ReaderAt
	format Format
	size   int64
}

// Open wraps r as a disc image of size bytes, inferring the sector framing
// from whether size is a multiple of the raw sector size.
func Open(r io.ReaderAt, size int64) *Image {
	format := FormatISO2048
	if size%rawSectorSize == 0 {
		format = FormatRaw2352
	}
	return &Image{r: r, format: format, size: size}
}

// ReadSector returns the 2352-byte raw sector for lba, synthesizing the
// sync/header/subheader bytes as zero when the backing image is ISO-framed.
func (img *Image) ReadSector(lba int) ([rawSectorSize]byte, error) {
	var raw [rawSectorSize]byte
	switch img.format {
	case FormatRaw2352:
		n, err := img.r.ReadAt(raw[:], int64(lba)*rawSectorSize)
		if err != nil && err != io.EOF {
			return raw, err
		}
		if n < rawSectorSize {
			return raw, fmt.Errorf("cdimage: short read at lba %d: got %d bytes", lba, n)
		}
	case FormatISO2048:
		n, err := img.r.ReadAt(raw[dataOffsetIn2352:dataOffsetIn2352+isoSectorSize], int64(lba)*isoSectorSize)
		if err != nil && err != io.EOF {
			return raw, err
		}
		if n < isoSectorSize {
			return raw, fmt.Errorf("cdimage: short read at lba %d: got %d bytes", lba, n)
		}
	}
	return raw, nil
}

// SectorCount returns the number of whole sectors available.
func (img *Image) SectorCount() int {
	switch img.format {
	case FormatRaw2352:
		return int(img.size / rawSectorSize)
	default:
		return int(img.size / isoSectorSize)
	}
}
