package raster

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidScale is returned when text is rendered at a non-positive scale.
var ErrInvalidScale = errors.New("render scale must be positive")

// Font is a parsed OpenType/TrueType font. It is read-only after
// construction and safe to share across render calls.
type Font struct {
	sfnt *opentype.Font
}

// ParseFont parses SFNT (TTF/OTF) font data.
func ParseFont(data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Font{sfnt: f}, nil
}

// face returns a face rendering at scale pixels per em. Hinting is off so
// glyph extent tracks the scale smoothly between the reference and final
// passes.
func (f *Font) face(scale float64) (font.Face, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidScale, scale)
	}
	face, err := opentype.NewFace(f.sfnt, &opentype.FaceOptions{
		Size:    scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// ErrTextTooLarge is returned when text at the requested scale needs a
// scratch canvas larger than [MaxScratch].
var ErrTextTooLarge = errors.New("text too large to render")

// MaxScratch bounds the side of a scratch canvas grown to fit wide text.
const MaxScratch = 4096

// inkMargin keeps antialiased edges off the scratch canvas border.
const inkMargin = 2

// layout returns the scratch canvas side needed to hold the ink of text
// drawn with face, never less than minSize, and the dot that centers that
// ink on the canvas.
func layout(face font.Face, text string, minSize int) (int, fixed.Point26_6, error) {
	b, _ := font.BoundString(face, text)
	minX, minY := b.Min.X.Floor(), b.Min.Y.Floor()
	w := max(b.Max.X.Ceil()-minX, 0)
	h := max(b.Max.Y.Ceil()-minY, 0)

	size := minSize
	if need := max(w, h) + 2*inkMargin; need > size {
		if need > MaxScratch {
			return 0, fixed.Point26_6{}, fmt.Errorf("%w: %dx%d px", ErrTextTooLarge, w, h)
		}
		size = need
	}
	dot := fixed.Point26_6{
		X: fixed.I((size-w)/2 - minX),
		Y: fixed.I((size-h)/2 - minY),
	}
	return size, dot, nil
}

// RenderText draws text in opaque white onto a transparent square canvas.
// Only the alpha channel carries information.
//
// The canvas is canvasSize on a side unless the ink of text needs more, in
// which case it grows to hold it. The ink is centered, so no glyph is
// clipped at any scale.
func (f *Font) RenderText(text string, scale float64, canvasSize int) (*Canvas, error) {
	face, err := f.face(scale)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	if text == "" {
		return NewCanvas(canvasSize), nil
	}
	size, dot, err := layout(face, text, canvasSize)
	if err != nil {
		return nil, err
	}
	c := NewCanvas(size)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.White,
		Face: face,
		Dot:  dot,
	}
	d.DrawString(text)
	return c, nil
}

// Measure renders text at scale onto a scratch canvas of at least
// canvasSize and returns the tight bounding box of its opaque pixels.
// ok is false when text is empty or produces no visible pixels.
func (f *Font) Measure(text string, scale float64, canvasSize int) (box BoundingBox, ok bool, err error) {
	if text == "" {
		return BoundingBox{}, false, nil
	}
	layer, err := f.RenderText(text, scale, canvasSize)
	if err != nil {
		return BoundingBox{}, false, err
	}
	box, ok = Bounds(layer)
	return box, ok, nil
}
