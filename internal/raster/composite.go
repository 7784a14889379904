package raster

import "image/color"

// Gradient is a two-stop diagonal color ramp evaluated at absolute canvas
// coordinates. It runs from the bottom-left corner (Start) to the top-right
// corner (End).
type Gradient struct {
	Start, End RGB
}

// At returns the gradient color for pixel (x, y) of a size×size canvas.
func (g Gradient) At(x, y, size int) RGB {
	t := float64(x+(size-y)) / float64(2*size)
	return Lerp(g.Start, g.End, t)
}

// Composite renders text at scale, centers its pixel bounding box on bg,
// and blends it source-over using the gradient as a position-varying source
// color and the glyph coverage as weight. The returned canvas is fully
// opaque wherever bg is; bg itself is left untouched.
//
// If the text produces no visible pixels the result equals bg.
func (f *Font) Composite(bg *Canvas, text string, scale float64, g Gradient) (*Canvas, error) {
	size := bg.Size()
	out := bg.Clone()
	if text == "" {
		return out, nil
	}

	layer, err := f.RenderText(text, scale, size*2)
	if err != nil {
		return nil, err
	}
	scratch := layer.Size()
	box, ok := Bounds(layer)
	if !ok {
		return out, nil
	}
	off := Offset(box, size)

	for y := range size {
		sy := y - off.Y
		if sy < 0 || sy >= scratch {
			continue
		}
		for x := range size {
			sx := x - off.X
			if sx < 0 || sx >= scratch {
				continue
			}
			a := layer.Alpha(sx, sy)
			if a == 0 {
				continue
			}
			out.Set(x, y, blend(g.At(x, y, size), out.At(x, y), a))
		}
	}
	return out, nil
}

// blend mixes src over dst with coverage a/255 and forces full opacity.
func blend(src RGB, dst color.NRGBA, a uint8) color.NRGBA {
	alpha := float64(a) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(float64(s)*alpha + float64(d)*(1-alpha))
	}
	return color.NRGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: 255,
	}
}
