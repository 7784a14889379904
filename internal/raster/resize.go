package raster

import "github.com/disintegration/imaging"

// Resize returns a size×size copy of c resampled with a Lanczos filter.
// When size equals c.Size() the result is an unscaled clone.
func Resize(c *Canvas, size int) *Canvas {
	if size == c.Size() {
		return c.Clone()
	}
	return &Canvas{img: imaging.Resize(c.img, size, size, imaging.Lanczos)}
}
