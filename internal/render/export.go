// export.go writes rendered canvases to disk as a PNG and a multi-size ICO
// container. Both writers go through atomicfile so a failed export never
// leaves a truncated file behind.

package render

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"tools.zach/dev/iconmarker/internal/atomicfile"
	"tools.zach/dev/iconmarker/internal/ico"
	"tools.zach/dev/iconmarker/internal/raster"
)

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// DefaultSize is the edge length of the base render.
const DefaultSize = 256

// DefaultIconSizes are the entry sizes written to the ICO container.
var DefaultIconSizes = []int{16, 32, 48, 256}

// filePerm is the mode applied to exported files.
const filePerm = 0o644

// ///////////////////////////////////////////////
// Writers
// ///////////////////////////////////////////////

// WritePNG atomically writes c to path as a PNG.
func WritePNG(path string, c *raster.Canvas) error {
	err := atomicfile.WriteFunc(path, filePerm, func(w io.Writer) error {
		return png.Encode(w, c.Image())
	})
	if err != nil {
		return fmt.Errorf("write png %s: %w", path, err)
	}
	return nil
}

// IconEntries resamples base to each of sizes and encodes one container
// entry per size, in order. A size equal to the base edge reuses base
// without resampling. Sizes must be in 1..min(256, base edge); upscaling is
// rejected.
func IconEntries(base *raster.Canvas, sizes []int) ([]ico.Entry, error) {
	if len(sizes) == 0 {
		return nil, ico.ErrNoEntries
	}
	limit := min(ico.MaxSize, base.Size())
	entries := make([]ico.Entry, 0, len(sizes))
	for _, size := range sizes {
		if size < 1 || size > limit {
			return nil, fmt.Errorf("%w: %d not in 1..%d", ico.ErrInvalidSize, size, limit)
		}
		img := base
		if size != base.Size() {
			img = raster.Resize(base, size)
		}
		e, err := ico.NewEntry(img.Image())
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", size, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteICO atomically writes a container holding base resampled to each of
// sizes. Every entry is encoded before the destination is touched.
func WriteICO(path string, base *raster.Canvas, sizes []int) error {
	entries, err := IconEntries(base, sizes)
	if err != nil {
		return fmt.Errorf("write icon %s: %w", path, err)
	}
	err = atomicfile.WriteFunc(path, filePerm, func(w io.Writer) error {
		return ico.Encode(w, entries)
	})
	if err != nil {
		return fmt.Errorf("write icon %s: %w", path, err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Export
// ///////////////////////////////////////////////

// Outputs names the files an export produces. An empty path skips that
// output.
type Outputs struct {
	// PNG is the path for the base-size PNG.
	PNG string
	// ICO is the path for the multi-size icon container.
	ICO string
	// Size is the base render edge length; zero means [DefaultSize].
	Size int
	// IconSizes are the container entry sizes; nil means [DefaultIconSizes].
	IconSizes []int
}

// Export renders s once at the base size and writes the requested outputs.
// It returns the base canvas.
func (r *Renderer) Export(s Style, out Outputs) (*raster.Canvas, error) {
	size := out.Size
	if size == 0 {
		size = DefaultSize
	}
	sizes := out.IconSizes
	if sizes == nil {
		sizes = DefaultIconSizes
	}

	base, err := r.Render(s, size)
	if err != nil {
		return nil, err
	}

	if out.PNG != "" {
		if err := WritePNG(out.PNG, base); err != nil {
			return nil, err
		}
		slog.Info("wrote png", "path", out.PNG, "size", size)
	}
	if out.ICO != "" {
		if err := WriteICO(out.ICO, base, sizes); err != nil {
			return nil, err
		}
		slog.Info("wrote icon", "path", out.ICO, "sizes", sizes)
	}
	return base, nil
}
