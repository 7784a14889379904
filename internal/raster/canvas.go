// Package raster implements the glyph-fit rasterization pipeline: square
// RGBA canvases, the chevron background pattern, glyph measurement, the
// fit solver, the gradient compositor, and Lanczos downscaling.
//
// Every function returns a freshly allocated [Canvas]; inputs are never
// mutated. The only long-lived value shared across calls is the parsed
// font, which is read-only.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// Colors
// ///////////////////////////////////////////////

// RGB is an opaque 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// NRGBA returns c as a fully opaque [color.NRGBA].
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns c formatted as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses a "#RRGGBB" hex color string. The leading "#" is optional.
func ParseHex(hex string) (RGB, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Lerp interpolates from a to b. t is clamped to [0, 1] and each channel is
// truncated toward zero.
func Lerp(a, b RGB, t float64) RGB {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ///////////////////////////////////////////////
// Canvas
// ///////////////////////////////////////////////

// Canvas is a square grid of non-premultiplied RGBA pixels, row-major and
// top-to-bottom.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas returns a fully transparent size×size canvas.
func NewCanvas(size int) *Canvas {
	if size < 0 {
		size = 0
	}
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, size, size))}
}

// Size returns the edge length in pixels.
func (c *Canvas) Size() int { return c.img.Rect.Dx() }

// Image returns the backing image. Callers must not retain it across
// further writes to c.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// At returns the pixel at (x, y).
func (c *Canvas) At(x, y int) color.NRGBA {
	return c.img.NRGBAAt(x, y)
}

// Set writes the pixel at (x, y).
func (c *Canvas) Set(x, y int, px color.NRGBA) {
	c.img.SetNRGBA(x, y, px)
}

// Alpha returns the alpha channel at (x, y) without building a color value.
func (c *Canvas) Alpha(x, y int) uint8 {
	return c.img.Pix[c.img.PixOffset(x, y)+3]
}

// Clone returns a deep copy of c.
func (c *Canvas) Clone() *Canvas {
	img := image.NewNRGBA(c.img.Rect)
	copy(img.Pix, c.img.Pix)
	return &Canvas{img: img}
}

// Equal reports whether c and o have the same size and identical pixels.
func (c *Canvas) Equal(o *Canvas) bool {
	return c.Size() == o.Size() && bytes.Equal(c.img.Pix, o.img.Pix)
}

// Opaque reports whether every pixel has alpha 255.
func (c *Canvas) Opaque() bool {
	for i := 3; i < len(c.img.Pix); i += 4 {
		if c.img.Pix[i] != 255 {
			return false
		}
	}
	return true
}

// ///////////////////////////////////////////////
// Bounding Box
// ///////////////////////////////////////////////

// BoundingBox holds inclusive pixel coordinates of the smallest rectangle
// containing every pixel with alpha > 0.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the inclusive pixel width.
func (b BoundingBox) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the inclusive pixel height.
func (b BoundingBox) Height() int { return b.MaxY - b.MinY + 1 }

// Bounds scans c and returns the tight bounding box of pixels with alpha > 0.
// ok is false when c has no such pixel.
func Bounds(c *Canvas) (box BoundingBox, ok bool) {
	size := c.Size()
	box = BoundingBox{MinX: size, MinY: size, MaxX: -1, MaxY: -1}
	for y := range size {
		for x := range size {
			if c.Alpha(x, y) == 0 {
				continue
			}
			box.MinX = min(box.MinX, x)
			box.MinY = min(box.MinY, y)
			box.MaxX = max(box.MaxX, x)
			box.MaxY = max(box.MaxY, y)
		}
	}
	if box.MaxX < box.MinX || box.MaxY < box.MinY {
		return BoundingBox{}, false
	}
	return box, true
}
