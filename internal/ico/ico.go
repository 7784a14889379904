// Package ico encodes and parses multi-resolution Windows icon containers.
//
// A container is a 6-byte ICONDIR header, one 16-byte ICONDIRENTRY per
// image, then the image payloads concatenated in directory order. Entries
// of 256 pixels and larger carry PNG payloads; smaller entries carry a
// BITMAPINFOHEADER, bottom-up BGRA pixels, and a zeroed AND mask. All
// multi-byte fields are little-endian.
package ico

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

const (
	// HeaderSize is the byte length of the ICONDIR header.
	HeaderSize = 6
	// DirEntrySize is the byte length of one ICONDIRENTRY.
	DirEntrySize = 16

	// TypeIcon is the ICONDIR resource type for icons (2 would be cursors).
	TypeIcon = 1

	// PNGThreshold is the smallest edge length stored as a PNG payload.
	PNGThreshold = 256

	// MaxSize is the largest edge length a directory entry can describe.
	MaxSize = 256

	bitsPerPixel = 32
	planes       = 1
)

// ErrEncoding is returned when an image payload cannot be encoded.
var ErrEncoding = errors.New("icon encoding failed")

// ErrInvalidSize is returned for images that are empty, non-square, or
// larger than [MaxSize].
var ErrInvalidSize = errors.New("invalid icon size")

// ErrNoEntries is returned when encoding a container with no images.
var ErrNoEntries = errors.New("icon has no entries")

// ErrMalformed is returned by [Parse] for data that is not a valid container.
var ErrMalformed = errors.New("malformed icon container")

// ///////////////////////////////////////////////
// Entries
// ///////////////////////////////////////////////

// Kind identifies how an entry payload is encoded.
type Kind int

const (
	// KindBMP is an uncompressed 32-bit DIB with an AND mask.
	KindBMP Kind = iota
	// KindPNG is an embedded PNG stream.
	KindPNG
)

// String returns "bmp" or "png".
func (k Kind) String() string {
	if k == KindPNG {
		return "png"
	}
	return "bmp"
}

// Entry is one image destined for the container.
type Entry struct {
	// Size is the edge length in pixels.
	Size int
	// Kind is the payload encoding.
	Kind Kind
	// Data is the encoded payload.
	Data []byte
}

// NewEntry encodes img as PNG when it is at least [PNGThreshold] pixels
// wide and as a masked bitmap otherwise.
func NewEntry(img *image.NRGBA) (Entry, error) {
	size, err := squareSize(img)
	if err != nil {
		return Entry{}, err
	}
	if size >= PNGThreshold {
		data, err := EncodePNG(img)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Size: size, Kind: KindPNG, Data: data}, nil
	}
	data, err := EncodeBMP(img)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Size: size, Kind: KindBMP, Data: data}, nil
}

// squareSize returns the edge length of img or an [ErrInvalidSize] error.
func squareSize(img image.Image) (int, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dx() != b.Dy() {
		return 0, fmt.Errorf("%w: %dx%d is not a non-empty square", ErrInvalidSize, b.Dx(), b.Dy())
	}
	if b.Dx() > MaxSize {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidSize, b.Dx(), MaxSize)
	}
	return b.Dx(), nil
}

// ///////////////////////////////////////////////
// Container Encoding
// ///////////////////////////////////////////////

// dimByte returns the directory width/height byte; 0 stands for 256.
func dimByte(size int) byte {
	if size >= MaxSize {
		return 0
	}
	return byte(size)
}

// Encode writes the container header, directory, and payloads to w.
// Payload offsets are absolute from the start of the stream.
func Encode(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	if len(entries) > 0xFFFF {
		return fmt.Errorf("%w: %d entries", ErrInvalidSize, len(entries))
	}

	head := make([]byte, HeaderSize+DirEntrySize*len(entries))
	binary.LittleEndian.PutUint16(head[0:2], 0)
	binary.LittleEndian.PutUint16(head[2:4], TypeIcon)
	binary.LittleEndian.PutUint16(head[4:6], uint16(len(entries)))

	offset := uint32(len(head))
	for i, e := range entries {
		if e.Size <= 0 || e.Size > MaxSize {
			return fmt.Errorf("%w: entry %d has size %d", ErrInvalidSize, i, e.Size)
		}
		if len(e.Data) == 0 {
			return fmt.Errorf("%w: entry %d has an empty payload", ErrEncoding, i)
		}
		d := head[HeaderSize+DirEntrySize*i:]
		d[0] = dimByte(e.Size)
		d[1] = dimByte(e.Size)
		d[2] = 0 // palette colors
		d[3] = 0 // reserved
		binary.LittleEndian.PutUint16(d[4:6], planes)
		binary.LittleEndian.PutUint16(d[6:8], bitsPerPixel)
		binary.LittleEndian.PutUint32(d[8:12], uint32(len(e.Data)))
		binary.LittleEndian.PutUint32(d[12:16], offset)
		offset += uint32(len(e.Data))
	}

	if _, err := w.Write(head); err != nil {
		return fmt.Errorf("writing icon directory: %w", err)
	}
	for i, e := range entries {
		if _, err := w.Write(e.Data); err != nil {
			return fmt.Errorf("writing icon payload %d: %w", i, err)
		}
	}
	return nil
}
