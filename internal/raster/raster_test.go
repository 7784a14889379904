// raster_test.go covers colors, bounding boxes, the chevron pattern, the
// fit solver, glyph measurement, compositing, and resizing.

package raster

import (
	"errors"
	"image/color"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func testFont(t *testing.T) *Font {
	t.Helper()
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFont: %v", err)
	}
	return f
}

// ///////////////////////////////////////////////
// Colors
// ///////////////////////////////////////////////

func TestParseHex(t *testing.T) {
	tests := []struct {
		input string
		want  RGB
	}{
		{"#F2DCC6", RGB{242, 220, 198}},
		{"#785adc", RGB{120, 90, 220}},
		{"14AA82", RGB{20, 170, 130}},
		{"#000000", RGB{}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.input)
		if err != nil {
			t.Errorf("ParseHex(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseHexInvalid(t *testing.T) {
	for _, s := range []string{"", "#FFF", "#GGGGGG", "1234567", "#12 456"} {
		if _, err := ParseHex(s); err == nil {
			t.Errorf("ParseHex(%q) expected error, got nil", s)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{R: 0xDA, G: 0x77, B: 0x05}
	if got := c.Hex(); got != "#DA7705" {
		t.Fatalf("Hex() = %q, want %q", got, "#DA7705")
	}
	back, err := ParseHex(c.Hex())
	if err != nil || back != c {
		t.Fatalf("ParseHex(Hex()) = %v, %v; want %v", back, err, c)
	}
}

func TestLerp(t *testing.T) {
	a := RGB{120, 90, 220}
	b := RGB{20, 170, 130}
	tests := []struct {
		t    float64
		want RGB
	}{
		{-1, a},
		{0, a},
		{1, b},
		{2, b},
		{0.5, RGB{70, 130, 175}},
	}
	for _, tt := range tests {
		if got := Lerp(a, b, tt.t); got != tt.want {
			t.Errorf("Lerp(t=%g) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Bounding Box
// ///////////////////////////////////////////////

func TestBounds(t *testing.T) {
	c := NewCanvas(10)
	c.Set(2, 7, color.NRGBA{A: 1})
	c.Set(6, 3, color.NRGBA{A: 255})

	box, ok := Bounds(c)
	if !ok {
		t.Fatal("expected bounding box")
	}
	want := BoundingBox{MinX: 2, MinY: 3, MaxX: 6, MaxY: 7}
	if box != want {
		t.Fatalf("Bounds = %+v, want %+v", box, want)
	}
	if box.Width() != 5 || box.Height() != 5 {
		t.Errorf("Width/Height = %d/%d, want 5/5", box.Width(), box.Height())
	}
}

func TestBoundsEmpty(t *testing.T) {
	if _, ok := Bounds(NewCanvas(8)); ok {
		t.Fatal("expected no bounding box for transparent canvas")
	}
}

func TestBoundsSinglePixel(t *testing.T) {
	c := NewCanvas(4)
	c.Set(0, 0, color.NRGBA{A: 9})
	box, ok := Bounds(c)
	if !ok || box.Width() != 1 || box.Height() != 1 {
		t.Fatalf("Bounds = %+v, %v; want 1x1 box", box, ok)
	}
}

// ///////////////////////////////////////////////
// Pattern
// ///////////////////////////////////////////////

func TestSolid(t *testing.T) {
	c := Solid(RGB{1, 2, 3}, 5)
	if c.Size() != 5 {
		t.Fatalf("Size = %d, want 5", c.Size())
	}
	for y := range 5 {
		for x := range 5 {
			if got := c.At(x, y); got != (color.NRGBA{1, 2, 3, 255}) {
				t.Fatalf("pixel (%d,%d) = %v", x, y, got)
			}
		}
	}
}

func TestPatternStripes(t *testing.T) {
	base := RGB{242, 220, 198}
	c := Pattern(base, 40)

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		// x=10 sits on the zigzag trough, so residue equals y mod 6.
		{10, 0, color.NRGBA{252, 230, 208, 255}},
		{10, 1, color.NRGBA{236, 214, 192, 255}},
		{10, 2, color.NRGBA{242, 220, 198, 255}},
		{10, 6, color.NRGBA{252, 230, 208, 255}},
		// x=0: zigzag 10, (0+10) mod 6 = 4.
		{0, 0, color.NRGBA{242, 220, 198, 255}},
		// x=0, y=2: (2+10) mod 6 = 0.
		{0, 2, color.NRGBA{252, 230, 208, 255}},
		// x=30 repeats x=10.
		{30, 1, color.NRGBA{236, 214, 192, 255}},
	}
	for _, tt := range tests {
		if got := c.At(tt.x, tt.y); got != tt.want {
			t.Errorf("Pattern pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPatternSaturates(t *testing.T) {
	bright := Pattern(RGB{250, 255, 0}, 20)
	if got := bright.At(10, 0); got != (color.NRGBA{255, 255, 10, 255}) {
		t.Errorf("highlight = %v, want saturated {255 255 10 255}", got)
	}
	dark := Pattern(RGB{3, 0, 200}, 20)
	if got := dark.At(10, 1); got != (color.NRGBA{0, 0, 194, 255}) {
		t.Errorf("shadow = %v, want saturated {0 0 194 255}", got)
	}
}

func TestPatternDeterministic(t *testing.T) {
	a := Pattern(RGB{10, 20, 30}, 64)
	b := Pattern(RGB{10, 20, 30}, 64)
	if !a.Equal(b) {
		t.Fatal("Pattern output differs between identical calls")
	}
	if !a.Opaque() {
		t.Fatal("Pattern output has non-opaque pixels")
	}
}

// ///////////////////////////////////////////////
// Fit Solver
// ///////////////////////////////////////////////

func TestSolveFit(t *testing.T) {
	tests := []struct {
		name    string
		box     BoundingBox
		padding float64
		want    float64
	}{
		{"height bound", BoundingBox{0, 0, 49, 99}, 0.16, 200 * (256 * 0.68 / 100)},
		{"width bound", BoundingBox{0, 0, 99, 49}, 0.16, 200 * (256 * 0.68 / 100)},
		{"no padding", BoundingBox{10, 10, 137, 73}, 0, 200 * (256.0 / 128)},
		{"max padding", BoundingBox{0, 0, 9, 9}, 0.4, 200 * (256 * 0.2 / 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveFit(tt.box, ReferenceScale, 256, tt.padding)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SolveFit = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	box := BoundingBox{MinX: 10, MinY: 20, MaxX: 29, MaxY: 59}
	got := Offset(box, 100)
	if got.X != 30 || got.Y != 10 {
		t.Fatalf("Offset = %v, want (30,10)", got)
	}
}

// ///////////////////////////////////////////////
// Measure
// ///////////////////////////////////////////////

func TestMeasure(t *testing.T) {
	f := testFont(t)
	box, ok, err := f.Measure("I", ReferenceScale, ReferenceCanvas)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if !ok {
		t.Fatal("expected bounding box for \"I\"")
	}
	if box.Height() <= box.Width() {
		t.Errorf("\"I\" box %+v should be taller than wide", box)
	}
	if box.MinX < 0 || box.MaxX >= ReferenceCanvas || box.MaxY >= ReferenceCanvas {
		t.Errorf("box %+v outside scratch canvas", box)
	}
}

func TestMeasureEmpty(t *testing.T) {
	f := testFont(t)
	for _, text := range []string{"", " ", "   "} {
		_, ok, err := f.Measure(text, ReferenceScale, ReferenceCanvas)
		if err != nil {
			t.Fatalf("Measure(%q): %v", text, err)
		}
		if ok {
			t.Errorf("Measure(%q) reported a bounding box", text)
		}
	}
}

func TestMeasureScalesWithScale(t *testing.T) {
	f := testFont(t)
	small, _, err := f.Measure("H", 100, ReferenceCanvas)
	if err != nil {
		t.Fatal(err)
	}
	large, _, err := f.Measure("H", 200, ReferenceCanvas)
	if err != nil {
		t.Fatal(err)
	}
	ratio := float64(large.Height()) / float64(small.Height())
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("height ratio at 2x scale = %.3f, want ~2", ratio)
	}
}

func TestRenderTextGrowsForWideText(t *testing.T) {
	f := testFont(t)
	for _, text := range []string{"Hello", "WWWW"} {
		layer, err := f.RenderText(text, ReferenceScale, ReferenceCanvas)
		if err != nil {
			t.Fatalf("RenderText(%q): %v", text, err)
		}
		box, ok := Bounds(layer)
		if !ok {
			t.Fatalf("RenderText(%q) drew nothing", text)
		}
		last := layer.Size() - 1
		if box.MinX == 0 || box.MinY == 0 || box.MaxX == last || box.MaxY == last {
			t.Errorf("RenderText(%q) box %+v touches the %d px canvas edge", text, box, layer.Size())
		}
	}

	layer, err := f.RenderText("WWWW", ReferenceScale, ReferenceCanvas)
	if err != nil {
		t.Fatal(err)
	}
	if layer.Size() <= ReferenceCanvas {
		t.Errorf("RenderText(WWWW) canvas = %d, want grown past %d", layer.Size(), ReferenceCanvas)
	}
}

func TestMeasureWideTextScalesLinearly(t *testing.T) {
	f := testFont(t)
	half, _, err := f.Measure("WWWW", ReferenceScale/2, ReferenceCanvas)
	if err != nil {
		t.Fatal(err)
	}
	full, _, err := f.Measure("WWWW", ReferenceScale, ReferenceCanvas)
	if err != nil {
		t.Fatal(err)
	}
	ratio := float64(full.Width()) / float64(half.Width())
	if ratio < 1.95 || ratio > 2.05 {
		t.Errorf("width ratio at 2x scale = %.3f, want ~2 (full %d, half %d)", ratio, full.Width(), half.Width())
	}
}

func TestRenderTextSmallGlyphOnCanvas(t *testing.T) {
	f := testFont(t)
	// A period at a very large scale sits far below the ascent line.
	layer, err := f.RenderText(".", 2000, 512)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Bounds(layer); !ok {
		t.Fatal("period at scale 2000 fell off the scratch canvas")
	}
}

func TestRenderTextTooLarge(t *testing.T) {
	f := testFont(t)
	_, err := f.RenderText(strings.Repeat("W", 40), ReferenceScale, ReferenceCanvas)
	if !errors.Is(err, ErrTextTooLarge) {
		t.Errorf("err = %v, want ErrTextTooLarge", err)
	}
}

func TestRenderTextInvalidScale(t *testing.T) {
	f := testFont(t)
	if _, err := f.RenderText("I", 0, 64); err == nil {
		t.Fatal("expected error for zero scale")
	}
}

// ///////////////////////////////////////////////
// Composite
// ///////////////////////////////////////////////

func TestCompositeEmptyText(t *testing.T) {
	f := testFont(t)
	bg := Pattern(RGB{242, 220, 198}, 64)
	out, err := f.Composite(bg, "", 50, Gradient{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(bg) {
		t.Fatal("composite of empty text should equal background")
	}
}

func TestCompositeDoesNotMutateBackground(t *testing.T) {
	f := testFont(t)
	bg := Solid(RGB{200, 200, 200}, 64)
	orig := bg.Clone()
	out, err := f.Composite(bg, "I", 60, Gradient{Start: RGB{0, 0, 0}, End: RGB{0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if !bg.Equal(orig) {
		t.Fatal("background was mutated")
	}
	if out.Equal(bg) {
		t.Fatal("composite produced no text pixels")
	}
	if !out.Opaque() {
		t.Fatal("composite has non-opaque pixels")
	}
}

func TestGradientAt(t *testing.T) {
	g := Gradient{Start: RGB{0, 0, 0}, End: RGB{200, 100, 50}}
	// Bottom-left (0, size) -> t = 0; top-right (size, 0) -> t = 1.
	if got := g.At(0, 100, 100); got != g.Start {
		t.Errorf("At bottom-left = %v, want %v", got, g.Start)
	}
	if got := g.At(100, 0, 100); got != g.End {
		t.Errorf("At top-right = %v, want %v", got, g.End)
	}
	if got := g.At(50, 50, 100); got != (RGB{100, 50, 25}) {
		t.Errorf("At center = %v, want {100 50 25}", got)
	}
}

func TestBlend(t *testing.T) {
	dst := color.NRGBA{R: 100, G: 0, B: 255, A: 255}
	if got := blend(RGB{200, 200, 0}, dst, 255); got != (color.NRGBA{200, 200, 0, 255}) {
		t.Errorf("full coverage = %v", got)
	}
	if got := blend(RGB{200, 200, 0}, dst, 0); got != dst {
		t.Errorf("zero coverage = %v, want %v", got, dst)
	}
	got := blend(RGB{200, 200, 0}, color.NRGBA{R: 0, G: 0, B: 0, A: 0}, 51)
	if got.A != 255 || got.R != 40 {
		t.Errorf("20%% coverage over transparent = %v, want R=40 A=255", got)
	}
}

// ///////////////////////////////////////////////
// Resize
// ///////////////////////////////////////////////

func TestResize(t *testing.T) {
	f := testFont(t)
	base, err := f.Composite(Pattern(RGB{242, 220, 198}, 256), "I", 240, Gradient{RGB{120, 90, 220}, RGB{20, 170, 130}})
	if err != nil {
		t.Fatal(err)
	}
	for _, size := range []int{16, 32, 48} {
		got := Resize(base, size)
		if got.Size() != size {
			t.Errorf("Resize(%d).Size() = %d", size, got.Size())
		}
		if !got.Opaque() {
			t.Errorf("Resize(%d) lost opacity", size)
		}
	}
}

func TestResizeSameSizeClones(t *testing.T) {
	base := Pattern(RGB{1, 2, 3}, 32)
	got := Resize(base, 32)
	if !got.Equal(base) {
		t.Fatal("same-size resize changed pixels")
	}
	got.Set(0, 0, color.NRGBA{})
	if base.At(0, 0).A != 255 {
		t.Fatal("same-size resize aliased the source canvas")
	}
}
