package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "style.padding")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Style ─────────────────────────────────────────────────────
	"style": {
		Comment: "Icon appearance",
	},
	"style.text": {
		Comment: "Glyph or short string drawn on the icon. Empty draws the background only.",
		Alternatives: []string{
			`text = "Ab"`,
		},
	},
	"style.background": {
		Comment: "Background fill color (#RRGGBB).",
	},
	"style.gradient_start": {
		Comment: "Text gradient colors. The gradient runs diagonally from the\nbottom-left corner (start) to the top-right corner (end).",
	},
	"style.gradient_end": {},
	"style.padding": {
		Comment: "Margin on each side as a fraction of the icon size, 0 to 0.4.\nThe text is scaled so its tighter axis fills the remaining area.",
	},
	"style.chevron": {
		Comment: "Overlay a zigzag stripe texture on the background.\nSet to false for a solid background.",
	},

	// ── Output ────────────────────────────────────────────────────
	"output": {
		Comment: "Output files",
	},
	"output.dir": {
		Comment: "Directory relative file names are written into.",
	},
	"output.png": {
		Comment: "File names. The .png and .ico extensions are enforced. Leave empty to skip a file.",
		Alternatives: []string{
			`png = ""`,
		},
	},
	"output.ico": {},
	"output.size": {
		Comment: "Edge length of the base render (and of the PNG) in pixels.",
	},
	"output.icon_sizes": {
		Comment: "Sizes stored in the ICO container. Each must be at most min(256, size).\nSizes of 256 are stored as PNG, smaller ones as 32-bit bitmaps.",
		Alternatives: []string{
			`icon_sizes = [16, 24, 32, 48, 64, 128, 256]`,
		},
	},

	// ── Font ──────────────────────────────────────────────────────
	"font": {
		Comment: "Font resolution. Sources are tried in order: file, search, fallback, embedded.",
	},
	"font.file": {
		Comment: "Explicit font file (TTF, OTF, WOFF, or WOFF2).",
		Alternatives: []string{
			`# file = "fonts/AoboshiOne-Regular.ttf"`,
		},
	},
	"font.search": {
		Comment: "Glob patterns searched for a font file. ** matches any number of directories.",
	},
	"font.fallback": {
		Comment: "Google Fonts spec downloaded when no local font is found (google:FAMILY:WEIGHT).",
		Alternatives: []string{
			`fallback = "google:Inter:800"`,
			`fallback = ""`,
		},
	},
	"font.cache_dir": {
		Comment: "Where downloaded fonts are cached. Empty uses the user cache directory.",
	},
	"font.embedded": {
		Comment: "Use the built-in Go Bold face when every other source fails.\nSet to false to make a missing font an error.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.file": {
		Comment: "Optional log file, written in addition to stderr and rotated by size.",
		Alternatives: []string{
			`# file = "iconmarker.log"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
}
