// Package fontsource locates the font used to draw icon text. Sources are
// tried in order: an explicit file, glob search patterns, a Google Fonts
// fallback spec, and finally the embedded Go Bold face.
package fontsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tdewolff/font"
	"golang.org/x/image/font/gofont/gobold"

	"tools.zach/dev/iconmarker/internal/logger"
	"tools.zach/dev/iconmarker/internal/raster"
)

// ErrNoFont is returned when no source yields a usable font.
var ErrNoFont = errors.New("no usable font")

// EmbeddedOrigin is the [Result.Origin] of the built-in fallback face.
const EmbeddedOrigin = "embedded:gobold"

// fontExts are the file extensions accepted by search patterns.
var fontExts = []string{".ttf", ".otf", ".woff", ".woff2"}

// Options configures font resolution.
type Options struct {
	// File is an explicit font file path.
	File string
	// Search holds doublestar glob patterns; the first matching font file
	// that parses wins.
	Search []string
	// Fallback is a "google:Family:Weight" spec fetched when no local font
	// is found.
	Fallback string
	// CacheDir stores downloaded fonts. Empty disables caching.
	CacheDir string
	// Embedded enables the built-in Go Bold face as the last resort.
	Embedded bool
	// Google overrides the Google Fonts client; nil uses the default.
	Google *GoogleClient
}

// Result is a resolved font and where it came from.
type Result struct {
	Font *raster.Font
	// Origin is a file path, a google: spec, or [EmbeddedOrigin].
	Origin string
}

// Resolve walks the configured sources and returns the first usable font.
// Failures of individual sources are logged and collected; if every source
// fails the returned error wraps [ErrNoFont] and each cause.
func Resolve(ctx context.Context, opts Options) (*Result, error) {
	var errs []error

	if opts.File != "" {
		f, err := LoadFile(opts.File)
		if err == nil {
			return &Result{Font: f, Origin: opts.File}, nil
		}
		slog.Warn("font file unusable", "path", opts.File, "error", err)
		errs = append(errs, err)
	}

	if len(opts.Search) > 0 {
		r, err := search(opts.Search)
		if err == nil {
			return r, nil
		}
		errs = append(errs, err)
	}

	if opts.Fallback != "" {
		client := opts.Google
		if client == nil {
			client = DefaultGoogleClient()
		}
		data, err := client.Fetch(ctx, opts.Fallback, opts.CacheDir)
		if err == nil {
			var f *raster.Font
			if f, err = raster.ParseFont(data); err == nil {
				return &Result{Font: f, Origin: opts.Fallback}, nil
			}
		}
		slog.Warn("font fallback unusable", "spec", opts.Fallback, "error", err)
		errs = append(errs, err)
	}

	if opts.Embedded {
		f, err := raster.ParseFont(gobold.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font: %w", err)
		}
		return &Result{Font: f, Origin: EmbeddedOrigin}, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no font source configured", ErrNoFont)
	}
	return nil, fmt.Errorf("%w: %w", ErrNoFont, errors.Join(errs...))
}

// LoadFile reads and parses a font file, converting WOFF and WOFF2 to SFNT.
func LoadFile(path string) (*raster.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	data, err = toSFNT(path, data)
	if err != nil {
		return nil, err
	}
	f, err := raster.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return f, nil
}

// search expands each pattern in order and returns the first font file that
// loads. Matches within one pattern are tried in lexical order.
func search(patterns []string) (*Result, error) {
	var tried int
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			slog.Warn("bad font search pattern", "pattern", pattern, "error", err)
			continue
		}
		slices.Sort(matches)
		for _, path := range matches {
			if !slices.Contains(fontExts, strings.ToLower(filepath.Ext(path))) {
				continue
			}
			tried++
			f, err := LoadFile(path)
			if err != nil {
				logger.Trace(slog.Default(), "skipping font", "path", path, "error", err)
				continue
			}
			return &Result{Font: f, Origin: path}, nil
		}
	}
	return nil, fmt.Errorf("search %v: %d candidates, none usable", patterns, tried)
}

// toSFNT converts web font containers to SFNT. Other data passes through.
func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWebFont(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert %s to sfnt: %w", name, err)
	}
	return sfnt, nil
}

// isWebFont checks for a WOFF or WOFF2 container by extension or magic bytes
// ("wOFF" / "wOF2").
func isWebFont(name string, data []byte) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".woff" || ext == ".woff2" {
		return true
	}
	if len(data) >= 4 && data[0] == 'w' && data[1] == 'O' && data[2] == 'F' &&
		(data[3] == '2' || data[3] == 'F') {
		return true
	}
	return false
}
