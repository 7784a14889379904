package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// pngMagic is the 8-byte PNG signature.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DirEntry is one decoded ICONDIRENTRY together with its payload.
type DirEntry struct {
	// Width and Height are the raw directory bytes; 0 means 256.
	Width, Height uint8
	// Planes and BitCount are the declared color planes and bits per pixel.
	Planes, BitCount uint16
	// Length is the declared payload byte length.
	Length uint32
	// Offset is the absolute payload offset.
	Offset uint32
	// Kind is inferred from the payload signature.
	Kind Kind
	// Data aliases the payload bytes inside the parsed buffer.
	Data []byte
}

// Size returns the edge length in pixels, mapping a zero width to 256.
func (e DirEntry) Size() int {
	if e.Width == 0 {
		return MaxSize
	}
	return int(e.Width)
}

// File is a parsed icon container.
type File struct {
	// Reserved and Type are the first two ICONDIR fields.
	Reserved, Type uint16
	// Entries are the directory entries in file order.
	Entries []DirEntry
}

// Parse decodes the header and directory of an icon container and slices
// each payload out of data. It validates structure only; payloads are not
// decoded.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}
	f := &File{
		Reserved: binary.LittleEndian.Uint16(data[0:2]),
		Type:     binary.LittleEndian.Uint16(data[2:4]),
	}
	if f.Reserved != 0 || f.Type != TypeIcon {
		return nil, fmt.Errorf("%w: reserved=%d type=%d", ErrMalformed, f.Reserved, f.Type)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	dirEnd := HeaderSize + DirEntrySize*count
	if len(data) < dirEnd {
		return nil, fmt.Errorf("%w: directory of %d entries truncated", ErrMalformed, count)
	}

	f.Entries = make([]DirEntry, count)
	for i := range count {
		d := data[HeaderSize+DirEntrySize*i:]
		e := DirEntry{
			Width:    d[0],
			Height:   d[1],
			Planes:   binary.LittleEndian.Uint16(d[4:6]),
			BitCount: binary.LittleEndian.Uint16(d[6:8]),
			Length:   binary.LittleEndian.Uint32(d[8:12]),
			Offset:   binary.LittleEndian.Uint32(d[12:16]),
		}
		start := uint64(e.Offset)
		end := start + uint64(e.Length)
		if start < uint64(dirEnd) || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d payload [%d,%d) outside file of %d bytes",
				ErrMalformed, i, start, end, len(data))
		}
		e.Data = data[start:end]
		if bytes.HasPrefix(e.Data, pngMagic) {
			e.Kind = KindPNG
		}
		f.Entries[i] = e
	}
	return f, nil
}
