// Package render drives the icon pipeline: it builds the background,
// fits the text with a reference measurement pass, composites it with the
// gradient, and exports the result as a PNG and a multi-size ICO.
//
// A [Renderer] holds only the shared read-only font; every call takes an
// immutable [Style] and returns fresh canvases.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"tools.zach/dev/iconmarker/internal/raster"
)

// ///////////////////////////////////////////////
// Style
// ///////////////////////////////////////////////

// ErrInvalidStyle is returned for style parameters outside their domain.
var ErrInvalidStyle = errors.New("invalid style")

// Style holds the visual parameters for one render call.
type Style struct {
	// Text is the glyph or short string to draw.
	Text string
	// Background is the base fill color.
	Background raster.RGB
	// Gradient colors the text from bottom-left to top-right.
	Gradient raster.Gradient
	// Padding is the margin on each side as a fraction of the canvas (0-0.4).
	Padding float64
	// Chevron overlays the zigzag stripe texture on the background.
	Chevron bool
}

// Validate reports whether s can be rendered.
func (s Style) Validate() error {
	if math.IsNaN(s.Padding) || s.Padding < 0 || s.Padding > raster.MaxPadding {
		return fmt.Errorf("%w: padding %g outside [0, %g]", ErrInvalidStyle, s.Padding, raster.MaxPadding)
	}
	return nil
}

// background returns the background canvas for s at size.
func (s Style) background(size int) *raster.Canvas {
	if s.Chevron {
		return raster.Pattern(s.Background, size)
	}
	return raster.Solid(s.Background, size)
}

// ///////////////////////////////////////////////
// Renderer
// ///////////////////////////////////////////////

// Renderer renders styled icons with a single shared font.
type Renderer struct {
	font *raster.Font
}

// New returns a Renderer drawing with f.
func New(f *raster.Font) *Renderer {
	return &Renderer{font: f}
}

// FinalScale runs the reference pass for s and returns the scale that fits
// its text into size. ok is false when the text renders no pixels.
func (r *Renderer) FinalScale(s Style, size int) (scale float64, ok bool, err error) {
	ref, ok, err := r.font.Measure(s.Text, raster.ReferenceScale, raster.ReferenceCanvas)
	if err != nil || !ok {
		return 0, ok, err
	}
	return raster.SolveFit(ref, raster.ReferenceScale, size, s.Padding), true, nil
}

// Render returns the size×size icon for s. Text that renders no pixels
// yields the background alone.
func (r *Renderer) Render(s Style, size int) (*raster.Canvas, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: render size %d", ErrInvalidStyle, size)
	}

	bg := s.background(size)
	if s.Text == "" {
		return bg, nil
	}

	scale, ok, err := r.FinalScale(s, size)
	if err != nil {
		return nil, fmt.Errorf("reference pass: %w", err)
	}
	if !ok {
		slog.Debug("text renders no pixels, using background only", "text", s.Text)
		return bg, nil
	}

	slog.Debug("fitted text", "text", s.Text, "size", size, "scale", scale, "padding", s.Padding)
	out, err := r.font.Composite(bg, s.Text, scale, s.Gradient)
	if err != nil {
		return nil, fmt.Errorf("final pass: %w", err)
	}
	return out, nil
}
