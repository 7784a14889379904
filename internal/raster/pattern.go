package raster

// Chevron texture geometry.
const (
	// ZigzagPeriod is the horizontal period of the triangle wave in pixels.
	ZigzagPeriod = 20
	// StripeSpacing is the vertical distance between stripe pairs.
	StripeSpacing = 6

	highlightDelta = 10
	shadowDelta    = 6
)

// Solid returns a size×size canvas filled with base at full opacity.
func Solid(base RGB, size int) *Canvas {
	c := NewCanvas(size)
	px := base.NRGBA()
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = px.R
		pix[i+1] = px.G
		pix[i+2] = px.B
		pix[i+3] = px.A
	}
	return c
}

// Pattern returns a solid base fill overlaid with a diagonal zigzag of
// light/dark line pairs. The result depends only on base and size.
func Pattern(base RGB, size int) *Canvas {
	c := Solid(base, size)
	half := ZigzagPeriod / 2
	for y := range size {
		for x := range size {
			zigzag := abs(x%ZigzagPeriod - half)
			switch euclidMod(y+zigzag, StripeSpacing) {
			case 0:
				shade(c, x, y, highlightDelta)
			case 1:
				shade(c, x, y, -shadowDelta)
			}
		}
	}
	return c
}

// shade adds delta to each color channel of (x, y), saturating at 0 and 255.
func shade(c *Canvas, x, y, delta int) {
	i := c.img.PixOffset(x, y)
	for ch := range 3 {
		c.img.Pix[i+ch] = saturate(int(c.img.Pix[i+ch]) + delta)
	}
}

func saturate(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func euclidMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
