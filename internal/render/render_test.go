// render_test.go covers the full pipeline: fit, centering, determinism,
// background-only fallbacks, and PNG/ICO export.

package render

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"tools.zach/dev/iconmarker/internal/ico"
	"tools.zach/dev/iconmarker/internal/raster"
)

var updateGolden = flag.Bool("update", false, "rewrite testdata golden hashes")

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	f, err := raster.ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFont: %v", err)
	}
	return New(f)
}

func testStyle() Style {
	return Style{
		Text:       "I",
		Background: raster.RGB{R: 242, G: 220, B: 198},
		Gradient: raster.Gradient{
			Start: raster.RGB{R: 120, G: 90, B: 220},
			End:   raster.RGB{R: 20, G: 170, B: 130},
		},
		Padding: 0.16,
		Chevron: true,
	}
}

// changedBox returns the bounding box of pixels in got that differ from bg.
func changedBox(got, bg *raster.Canvas) (box raster.BoundingBox, ok bool) {
	size := got.Size()
	box = raster.BoundingBox{MinX: size, MinY: size, MaxX: -1, MaxY: -1}
	for y := range size {
		for x := range size {
			if got.At(x, y) == bg.At(x, y) {
				continue
			}
			box.MinX = min(box.MinX, x)
			box.MinY = min(box.MinY, y)
			box.MaxX = max(box.MaxX, x)
			box.MaxY = max(box.MaxY, y)
			ok = true
		}
	}
	return box, ok
}

// ///////////////////////////////////////////////
// Style
// ///////////////////////////////////////////////

func TestStyleValidate(t *testing.T) {
	tests := []struct {
		padding float64
		wantErr bool
	}{
		{0, false},
		{0.16, false},
		{0.4, false},
		{-0.01, true},
		{0.41, true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		s := testStyle()
		s.Padding = tt.padding
		err := s.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("padding %g: err = %v, wantErr %v", tt.padding, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidStyle) {
			t.Errorf("padding %g: error %v does not wrap ErrInvalidStyle", tt.padding, err)
		}
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	r := testRenderer(t)
	s := testStyle()
	s.Padding = 0.5
	if _, err := r.Render(s, 64); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("bad padding: err = %v, want ErrInvalidStyle", err)
	}
	if _, err := r.Render(testStyle(), 0); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("zero size: err = %v, want ErrInvalidStyle", err)
	}
}

// ///////////////////////////////////////////////
// Render
// ///////////////////////////////////////////////

func TestRenderDeterministic(t *testing.T) {
	r := testRenderer(t)
	s := testStyle()

	a, err := r.Render(s, 256)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.Render(s, 256)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !a.Equal(b) {
		t.Error("two renders of the same style differ")
	}
	if a.Size() != 256 {
		t.Errorf("size = %d, want 256", a.Size())
	}
	if !a.Opaque() {
		t.Error("render has non-opaque pixels")
	}
	if a.Equal(raster.Pattern(s.Background, 256)) {
		t.Error("render equals the bare background")
	}
}

// goldenPixels are exact values of the goregular "I" render: background
// pattern cells inside the padding, and the fully covered stem center where
// the gradient is at its midpoint.
var goldenPixels = []struct {
	x, y int
	want color.NRGBA
}{
	{0, 0, color.NRGBA{242, 220, 198, 255}},
	{10, 0, color.NRGBA{252, 230, 208, 255}},
	{10, 1, color.NRGBA{236, 214, 192, 255}},
	{0, 2, color.NRGBA{252, 230, 208, 255}},
	{128, 128, color.NRGBA{70, 130, 175, 255}},
}

func TestRenderGolden(t *testing.T) {
	r := testRenderer(t)
	got, err := r.Render(testStyle(), 256)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, p := range goldenPixels {
		if c := got.At(p.x, p.y); c != p.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", p.x, p.y, c, p.want)
		}
	}

	sum := sha256.Sum256(got.Image().Pix)
	hash := hex.EncodeToString(sum[:])
	golden := filepath.Join("testdata", "render_I_256.sha256")
	if *updateGolden {
		if err := os.MkdirAll("testdata", 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(golden, []byte(hash+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		return
	}
	want, err := os.ReadFile(golden)
	if os.IsNotExist(err) {
		t.Skipf("%s missing; run go test -update to record it", golden)
	}
	if err != nil {
		t.Fatal(err)
	}
	if hash != strings.TrimSpace(string(want)) {
		t.Errorf("render hash = %s, want %s", hash, strings.TrimSpace(string(want)))
	}
}

func TestRenderEmptyTextIsBackground(t *testing.T) {
	r := testRenderer(t)
	for _, text := range []string{"", " "} {
		for _, chevron := range []bool{true, false} {
			s := testStyle()
			s.Text = text
			s.Chevron = chevron

			got, err := r.Render(s, 64)
			if err != nil {
				t.Fatalf("Render(%q): %v", text, err)
			}
			want := raster.Solid(s.Background, 64)
			if chevron {
				want = raster.Pattern(s.Background, 64)
			}
			if !got.Equal(want) {
				t.Errorf("Render(%q, chevron=%v) differs from background", text, chevron)
			}
		}
	}
}

func TestRenderCentersText(t *testing.T) {
	r := testRenderer(t)
	for _, size := range []int{64, 256} {
		for _, padding := range []float64{0.05, 0.16, 0.4} {
			s := testStyle()
			s.Chevron = false
			s.Padding = padding

			got, err := r.Render(s, size)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			box, ok := changedBox(got, raster.Solid(s.Background, size))
			if !ok {
				t.Fatalf("size %d padding %g: no text pixels", size, padding)
			}
			center := float64(size-1) / 2
			cx := float64(box.MinX+box.MaxX) / 2
			cy := float64(box.MinY+box.MaxY) / 2
			if math.Abs(cx-center) > 1 || math.Abs(cy-center) > 1 {
				t.Errorf("size %d padding %g: text center (%.1f, %.1f), want (%.1f, %.1f) ±1",
					size, padding, cx, cy, center, center)
			}
		}
	}
}

func TestRenderRespectsPadding(t *testing.T) {
	r := testRenderer(t)
	s := testStyle()
	s.Chevron = false
	const size = 256

	got, err := r.Render(s, size)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	box, ok := changedBox(got, raster.Solid(s.Background, size))
	if !ok {
		t.Fatal("no text pixels")
	}
	target := float64(size) * (1 - 2*s.Padding)
	extent := float64(max(box.Width(), box.Height()))
	if extent > target+4 || extent < target*0.9 {
		t.Errorf("text extent %.0f, want about %.1f", extent, target)
	}
}

// inkStyle draws black text on white so coverage is 255 minus red.
func inkStyle(text string, padding float64) Style {
	return Style{
		Text:       text,
		Background: raster.RGB{R: 255, G: 255, B: 255},
		Padding:    padding,
	}
}

// centroid returns the coverage-weighted mean position of text pixels in
// an [inkStyle] render.
func centroid(c *raster.Canvas) (cx, cy float64, ok bool) {
	var sum, sx, sy float64
	for y := range c.Size() {
		for x := range c.Size() {
			w := float64(255 - c.At(x, y).R)
			sum += w
			sx += w * float64(x)
			sy += w * float64(y)
		}
	}
	if sum == 0 {
		return 0, 0, false
	}
	return sx / sum, sy / sum, true
}

func TestRenderCentroidCentered(t *testing.T) {
	r := testRenderer(t)
	for _, text := range []string{"I", "H", "+"} {
		for _, size := range []int{128, 256} {
			for _, padding := range []float64{0.05, 0.16, 0.4} {
				got, err := r.Render(inkStyle(text, padding), size)
				if err != nil {
					t.Fatalf("Render: %v", err)
				}
				cx, cy, ok := centroid(got)
				if !ok {
					t.Fatalf("%q size %d padding %g: no text pixels", text, size, padding)
				}
				center := float64(size-1) / 2
				if math.Abs(cx-center) > 1 || math.Abs(cy-center) > 1 {
					t.Errorf("%q size %d padding %g: centroid (%.2f, %.2f), want (%.1f, %.1f) ±1",
						text, size, padding, cx, cy, center, center)
				}
			}
		}
	}
}

func TestRenderFitsWideText(t *testing.T) {
	r := testRenderer(t)
	const size = 256
	for _, text := range []string{"Go", "Icon", "Hello", "WWWW", "mmmmmm"} {
		s := testStyle()
		s.Text = text
		s.Chevron = false

		got, err := r.Render(s, size)
		if err != nil {
			t.Fatalf("Render(%q): %v", text, err)
		}
		box, ok := changedBox(got, raster.Solid(s.Background, size))
		if !ok {
			t.Fatalf("Render(%q): no text pixels", text)
		}
		target := float64(size) * (1 - 2*s.Padding)
		w, h := float64(box.Width()), float64(box.Height())
		if w > target+2 || h > target+2 {
			t.Errorf("%q: extent %.0fx%.0f exceeds target %.1f", text, w, h, target)
		}
		if max(w, h) < target*0.9 {
			t.Errorf("%q: extent %.0fx%.0f well short of target %.1f", text, w, h, target)
		}
		if box.MinX == 0 || box.MinY == 0 || box.MaxX == size-1 || box.MaxY == size-1 {
			t.Errorf("%q: text box %+v touches the canvas edge", text, box)
		}
	}
}

func TestRenderDrawsSmallGlyphs(t *testing.T) {
	r := testRenderer(t)
	const size = 256
	for _, text := range []string{".", "'", "-", ","} {
		for _, padding := range []float64{0, 0.16} {
			s := testStyle()
			s.Text = text
			s.Chevron = false
			s.Padding = padding

			got, err := r.Render(s, size)
			if err != nil {
				t.Fatalf("Render(%q): %v", text, err)
			}
			box, ok := changedBox(got, raster.Solid(s.Background, size))
			if !ok {
				t.Fatalf("Render(%q, padding %g) drew no text pixels", text, padding)
			}
			target := float64(size) * (1 - 2*padding)
			if extent := float64(max(box.Width(), box.Height())); extent < target*0.9 {
				t.Errorf("%q padding %g: extent %.0f, want about %.1f", text, padding, extent, target)
			}
		}
	}
}

func TestFinalScaleStable(t *testing.T) {
	r := testRenderer(t)
	f, err := raster.ParseFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"I", "G", "Ab"} {
		s := testStyle()
		s.Text = text
		const size = 256

		scale, ok, err := r.FinalScale(s, size)
		if err != nil || !ok {
			t.Fatalf("FinalScale(%q) = %v, %v", text, ok, err)
		}
		box, ok, err := f.Measure(text, scale, size*2)
		if err != nil || !ok {
			t.Fatalf("Measure(%q) = %v, %v", text, ok, err)
		}
		again := raster.SolveFit(box, scale, size, s.Padding)
		if rel := math.Abs(again-scale) / scale; rel > 0.05 {
			t.Errorf("%q: refit scale %.2f vs %.2f (%.1f%% apart)", text, again, scale, rel*100)
		}
	}
}

// ///////////////////////////////////////////////
// Export
// ///////////////////////////////////////////////

func TestExport(t *testing.T) {
	r := testRenderer(t)
	dir := t.TempDir()
	out := Outputs{
		PNG: filepath.Join(dir, "icon.png"),
		ICO: filepath.Join(dir, "icon.ico"),
	}

	base, err := r.Export(testStyle(), out)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if base.Size() != DefaultSize {
		t.Errorf("base size = %d, want %d", base.Size(), DefaultSize)
	}

	pf, err := os.Open(out.PNG)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer pf.Close()
	img, err := png.Decode(pf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("png bounds = %v, want 256x256", b)
	}

	data, err := os.ReadFile(out.ICO)
	if err != nil {
		t.Fatalf("read ico: %v", err)
	}
	f, err := ico.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Entries) != len(DefaultIconSizes) {
		t.Fatalf("entries = %d, want %d", len(f.Entries), len(DefaultIconSizes))
	}
	for i, e := range f.Entries {
		want := DefaultIconSizes[i]
		if e.Size() != want {
			t.Errorf("entry %d size = %d, want %d", i, e.Size(), want)
		}
		wantKind := ico.KindBMP
		if want >= ico.PNGThreshold {
			wantKind = ico.KindPNG
		}
		if e.Kind != wantKind {
			t.Errorf("entry %d kind = %v, want %v", i, e.Kind, wantKind)
		}
		if e.Kind == ico.KindBMP && int(e.Length) != ico.BitmapPayloadSize(want) {
			t.Errorf("entry %d length = %d, want %d", i, e.Length, ico.BitmapPayloadSize(want))
		}
	}
}

func TestExportSkipsEmptyPaths(t *testing.T) {
	r := testRenderer(t)
	dir := t.TempDir()
	out := Outputs{ICO: filepath.Join(dir, "only.ico"), Size: 48, IconSizes: []int{16, 48}}

	if _, err := r.Export(testStyle(), out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "only.ico" {
		t.Errorf("dir entries = %v, want only.ico", entries)
	}
}

func TestWriteICORejectsUpscale(t *testing.T) {
	r := testRenderer(t)
	base, err := r.Render(testStyle(), 48)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "icon.ico")

	for _, sizes := range [][]int{{16, 64}, {0}, {}} {
		err := WriteICO(path, base, sizes)
		if err == nil {
			t.Errorf("sizes %v: expected error", sizes)
			continue
		}
		if !errors.Is(err, ico.ErrInvalidSize) && !errors.Is(err, ico.ErrNoEntries) {
			t.Errorf("sizes %v: error %v has unexpected kind", sizes, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("icon written despite errors: %v", err)
	}
}

func TestIconEntriesReusesBase(t *testing.T) {
	r := testRenderer(t)
	base, err := r.Render(testStyle(), 32)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := IconEntries(base, []int{32})
	if err != nil {
		t.Fatalf("IconEntries: %v", err)
	}
	want, err := ico.EncodeBMP(base.Image())
	if err != nil {
		t.Fatal(err)
	}
	if string(entries[0].Data) != string(want) {
		t.Error("same-size entry was resampled")
	}
}

func TestWritePNGBadDir(t *testing.T) {
	c := raster.Solid(raster.RGB{}, 8)
	err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), c)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
