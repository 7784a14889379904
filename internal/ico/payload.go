package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
)

// BitmapHeaderSize is the byte length of a BITMAPINFOHEADER.
const BitmapHeaderSize = 40

// MaskRowSize returns the AND-mask row stride for width pixels: one bit per
// pixel padded to a 4-byte boundary.
func MaskRowSize(width int) int {
	return (width + 31) / 32 * 4
}

// BitmapPayloadSize returns the encoded length of a size×size bitmap entry.
func BitmapPayloadSize(size int) int {
	return BitmapHeaderSize + size*size*4 + MaskRowSize(size)*size
}

// EncodePNG encodes img as a PNG stream.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: png: %w", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// EncodeBMP encodes img as an icon DIB: a BITMAPINFOHEADER whose height is
// twice the image height, bottom-up BGRA rows, and an all-zero AND mask.
func EncodeBMP(img *image.NRGBA) ([]byte, error) {
	size, err := squareSize(img)
	if err != nil {
		return nil, err
	}

	out := make([]byte, BitmapPayloadSize(size))
	h := out[:BitmapHeaderSize]
	binary.LittleEndian.PutUint32(h[0:4], BitmapHeaderSize)
	binary.LittleEndian.PutUint32(h[4:8], uint32(size))
	binary.LittleEndian.PutUint32(h[8:12], uint32(2*size)) // XOR + AND planes
	binary.LittleEndian.PutUint16(h[12:14], planes)
	binary.LittleEndian.PutUint16(h[14:16], bitsPerPixel)
	// Compression, image size, resolution, and palette fields stay zero.

	origin := img.Rect.Min
	pix := out[BitmapHeaderSize:]
	for row := range size {
		y := origin.Y + size - 1 - row
		src := img.Pix[img.PixOffset(origin.X, y):]
		dst := pix[row*size*4:]
		for x := range size {
			s := src[x*4 : x*4+4]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		}
	}
	// The AND mask trailing the pixels is already zero.
	return out, nil
}
