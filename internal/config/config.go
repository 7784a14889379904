// Package config provides configuration loading and defaults for iconmarker.
//
// Configuration is loaded from a TOML file, by default iconmarker.toml in the
// working directory. The package covers the icon style, output files, font
// resolution, and logging with sensible defaults.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"tools.zach/dev/iconmarker/internal/atomicfile"
	"tools.zach/dev/iconmarker/internal/fontsource"
	"tools.zach/dev/iconmarker/internal/ico"
	"tools.zach/dev/iconmarker/internal/logger"
	"tools.zach/dev/iconmarker/internal/paths"
	"tools.zach/dev/iconmarker/internal/raster"
	"tools.zach/dev/iconmarker/internal/render"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// ErrInvalid is wrapped by every [Config.Validate] failure.
var ErrInvalid = errors.New("invalid config")

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Style holds the icon's visual parameters.
	Style StyleConfig `toml:"style"`
	// Output holds output file names and sizes.
	Output OutputConfig `toml:"output"`
	// Font holds font resolution settings.
	Font FontConfig `toml:"font"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// StyleConfig holds the icon's visual parameters.
type StyleConfig struct {
	// Text is the glyph or short string drawn on the icon.
	Text string `toml:"text"`
	// Background is the base fill color as #RRGGBB.
	Background string `toml:"background"`
	// GradientStart is the text color at the bottom-left corner.
	GradientStart string `toml:"gradient_start"`
	// GradientEnd is the text color at the top-right corner.
	GradientEnd string `toml:"gradient_end"`
	// Padding is the margin on each side as a fraction of the icon (0-0.4).
	Padding float64 `toml:"padding"`
	// Chevron overlays the zigzag stripe texture on the background.
	Chevron bool `toml:"chevron"`
}

// OutputConfig holds output file names and sizes.
type OutputConfig struct {
	// Dir is the directory relative names are written into.
	Dir string `toml:"dir"`
	// PNG is the base PNG file name; empty skips the PNG.
	PNG string `toml:"png"`
	// ICO is the icon container file name; empty skips the ICO.
	ICO string `toml:"ico"`
	// Size is the base render edge length in pixels.
	Size int `toml:"size"`
	// IconSizes are the container entry sizes, each at most min(256, size).
	IconSizes []int `toml:"icon_sizes"`
}

// FontConfig holds font resolution settings.
type FontConfig struct {
	// File is an explicit font file path, tried first.
	File string `toml:"file"`
	// Search holds doublestar glob patterns tried in order.
	Search []string `toml:"search"`
	// Fallback is a "google:Family:Weight" spec downloaded when no local font is found.
	Fallback string `toml:"fallback"`
	// CacheDir stores downloaded fonts; empty uses the user cache directory.
	CacheDir string `toml:"cache_dir"`
	// Embedded enables the built-in Go Bold face as the last resort.
	Embedded bool `toml:"embedded"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is an optional rotating log file in addition to stderr.
	File string `toml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Style: StyleConfig{
			Text:          "G",
			Background:    "#F2DCC6",
			GradientStart: "#785ADC",
			GradientEnd:   "#14AA82",
			Padding:       0.16,
			Chevron:       true,
		},
		Output: OutputConfig{
			Dir:       ".",
			PNG:       paths.PNGFile,
			ICO:       paths.ICOFile,
			Size:      render.DefaultSize,
			IconSizes: slices.Clone(render.DefaultIconSizes),
		},
		Font: FontConfig{
			Search: []string{
				"fonts/*.ttf",
				"C:/Windows/Fonts/arialbd.ttf",
				"C:/Windows/Fonts/arial.ttf",
				"/usr/share/fonts/**/DejaVuSans-Bold.ttf",
			},
			Fallback: "google:Aoboshi One:400",
			Embedded: true,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns a Config suitable for generating config.default.toml.
// For this project all defaults are good examples.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path. Keys absent from
// the file keep their default values. If the file doesn't exist, returns
// DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config: %w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// Validate checks every field against its domain. Errors wrap [ErrInvalid].
func (c *Config) Validate() error {
	if c.Version < 1 || c.Version > CurrentVersion {
		return fmt.Errorf("%w: version %d: this build reads version %d", ErrInvalid, c.Version, CurrentVersion)
	}

	colors := []struct{ key, value string }{
		{"style.background", c.Style.Background},
		{"style.gradient_start", c.Style.GradientStart},
		{"style.gradient_end", c.Style.GradientEnd},
	}
	for _, col := range colors {
		if _, err := raster.ParseHex(col.value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, col.key, err)
		}
	}

	if math.IsNaN(c.Style.Padding) || c.Style.Padding < 0 || c.Style.Padding > raster.MaxPadding {
		return fmt.Errorf("%w: style.padding must be in [0, %g], got %g", ErrInvalid, raster.MaxPadding, c.Style.Padding)
	}

	if c.Output.Size < 1 {
		return fmt.Errorf("%w: output.size must be > 0, got %d", ErrInvalid, c.Output.Size)
	}
	if c.Output.ICO != "" {
		if len(c.Output.IconSizes) == 0 {
			return fmt.Errorf("%w: output.icon_sizes must not be empty when output.ico is set", ErrInvalid)
		}
		limit := min(ico.MaxSize, c.Output.Size)
		seen := make(map[int]bool, len(c.Output.IconSizes))
		for _, s := range c.Output.IconSizes {
			if s < 1 || s > limit {
				return fmt.Errorf("%w: output.icon_sizes entry %d not in 1..%d", ErrInvalid, s, limit)
			}
			if seen[s] {
				return fmt.Errorf("%w: output.icon_sizes has duplicate %d", ErrInvalid, s)
			}
			seen[s] = true
		}
	}

	for _, p := range c.Font.Search {
		if !doublestar.ValidatePathPattern(p) {
			return fmt.Errorf("%w: font.search pattern %q is malformed", ErrInvalid, p)
		}
	}
	if c.Font.Fallback != "" {
		if _, _, ok := fontsource.ParseGoogleFontSpec(c.Font.Fallback); !ok {
			return fmt.Errorf("%w: font.fallback %q: expected google:FAMILY:WEIGHT", ErrInvalid, c.Font.Fallback)
		}
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("%w: log.max_size_mb must be > 0, got %d", ErrInvalid, c.Log.MaxSizeMB)
	}

	return nil
}

// ///////////////////////////////////////////////
// Conversions
// ///////////////////////////////////////////////

// RenderStyle converts the style section into a [render.Style].
func (c *Config) RenderStyle() (render.Style, error) {
	bg, err := raster.ParseHex(c.Style.Background)
	if err != nil {
		return render.Style{}, fmt.Errorf("style.background: %w", err)
	}
	start, err := raster.ParseHex(c.Style.GradientStart)
	if err != nil {
		return render.Style{}, fmt.Errorf("style.gradient_start: %w", err)
	}
	end, err := raster.ParseHex(c.Style.GradientEnd)
	if err != nil {
		return render.Style{}, fmt.Errorf("style.gradient_end: %w", err)
	}
	return render.Style{
		Text:       c.Style.Text,
		Background: bg,
		Gradient:   raster.Gradient{Start: start, End: end},
		Padding:    c.Style.Padding,
		Chevron:    c.Style.Chevron,
	}, nil
}

// Outputs returns the resolved output paths with extensions enforced.
func (c *Config) Outputs() render.Outputs {
	dir := paths.OutputDir{Root: c.Output.Dir}
	return render.Outputs{
		PNG:       dir.PNG(c.Output.PNG),
		ICO:       dir.ICO(c.Output.ICO),
		Size:      c.Output.Size,
		IconSizes: slices.Clone(c.Output.IconSizes),
	}
}

// FontOptions returns the font resolution options. An empty cache_dir
// resolves to the user cache directory when one exists.
func (c *Config) FontOptions() fontsource.Options {
	cacheDir := c.Font.CacheDir
	if cacheDir == "" {
		if dir, err := paths.FontCacheDir(); err == nil {
			cacheDir = dir
		}
	}
	return fontsource.Options{
		File:     c.Font.File,
		Search:   slices.Clone(c.Font.Search),
		Fallback: c.Font.Fallback,
		CacheDir: cacheDir,
		Embedded: c.Font.Embedded,
	}
}

// LoggerOptions returns the logger options for level and file settings.
// Validate must have succeeded.
func (c *Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Options{
		Level:     level,
		File:      c.Log.File,
		MaxSizeMB: c.Log.MaxSizeMB,
	}
}
