package raster

import "image"

// Reference pass geometry. Declared point scale does not map predictably to
// glyph pixel extent across fonts, so text is first measured at a known
// scale and the final scale derived from that measurement.
const (
	ReferenceScale  = 200.0
	ReferenceCanvas = 512
)

// MaxPadding is the largest accepted padding fraction.
const MaxPadding = 0.4

// SolveFit returns the render scale that fits a glyph measured as ref at
// refScale inside targetSize with padding on each side, preserving aspect
// ratio. The tighter axis bounds the result.
func SolveFit(ref BoundingBox, refScale float64, targetSize int, padding float64) float64 {
	target := float64(targetSize) * (1 - 2*padding)
	ratio := min(target/float64(ref.Width()), target/float64(ref.Height()))
	return refScale * ratio
}

// Offset returns the translation that centers box inside a size×size
// canvas. Destination pixel p samples the glyph layer at p minus the offset.
func Offset(box BoundingBox, size int) image.Point {
	return image.Point{
		X: (size-box.Width())/2 - box.MinX,
		Y: (size-box.Height())/2 - box.MinY,
	}
}
