// Package main implements the iconmarker CLI, which renders a glyph onto a
// patterned background and writes it as a PNG and a multi-size ICO.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	rootpkg "tools.zach/dev/iconmarker"
	"tools.zach/dev/iconmarker/internal/atomicfile"
	"tools.zach/dev/iconmarker/internal/config"
	"tools.zach/dev/iconmarker/internal/fontsource"
	"tools.zach/dev/iconmarker/internal/logger"
	"tools.zach/dev/iconmarker/internal/paths"
	"tools.zach/dev/iconmarker/internal/raster"
	"tools.zach/dev/iconmarker/internal/render"
	"tools.zach/dev/iconmarker/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Flags
// ///////////////////////////////////////////////

// options holds the parsed command line.
type options struct {
	configPath  string
	watch       bool
	poll        bool
	inspect     string
	writeConfig bool
	saveConfig  bool
	version     bool
	verbose     bool

	// overrides are applied over the loaded config.
	overrides overrides
}

// parseFlags registers every flag on fs and parses args.
func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.configPath, "config", paths.ConfigFile, "Path to the TOML config file")
	fs.BoolVar(&o.watch, "watch", false, "Re-render whenever the config or font file changes")
	fs.BoolVar(&o.poll, "poll", false, "With -watch, poll file modification times instead of using fsnotify")
	fs.StringVar(&o.inspect, "inspect", "", "Print the directory of an existing .ico file and exit")
	fs.BoolVar(&o.writeConfig, "write-config", false, "Write the default config to -config if it does not exist and exit")
	fs.BoolVar(&o.saveConfig, "save-config", false, "Write the effective config (file plus flag overrides) to -config and exit")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")
	fs.BoolVar(&o.verbose, "v", false, "Log at debug level regardless of the config")
	o.overrides.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\n", paths.BinaryName)
		fmt.Fprintf(fs.Output(), "Renders a glyph icon to PNG and ICO using %s.\n\nFlags:\n", paths.ConfigFile)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	o.overrides.collect(fs)
	return o, nil
}

// ///////////////////////////////////////////////
// Entry Point
// ///////////////////////////////////////////////

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command selected by opts. Normal output goes to stdout,
// logs to stderr.
func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	switch {
	case opts.version:
		fmt.Fprintf(stdout, "%s %s\n", paths.BinaryName, resolveVersion())
		return nil
	case opts.inspect != "":
		return inspect(stdout, opts.inspect)
	case opts.writeConfig:
		return writeDefaultConfig(stdout, opts.configPath)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.saveConfig {
		if err := cfg.Save(opts.configPath); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.configPath)
		return nil
	}

	logOpts := cfg.LoggerOptions()
	logOpts.Console = stderr
	if opts.verbose {
		logOpts.Level = logger.LevelDebug
	}
	log, logCloser := logger.New(logOpts)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Debug("iconmarker starting", "version", resolveVersion(), "config", opts.configPath)

	if err := renderOnce(ctx, cfg); err != nil {
		if !opts.watch {
			return err
		}
		slog.Error("render failed", "error", err)
	}
	if !opts.watch {
		return nil
	}
	return watchLoop(ctx, opts, cfg)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opts.overrides.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// writeDefaultConfig writes the embedded default config to path unless a
// file already exists there.
func writeDefaultConfig(stdout io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stdout, "%s already exists, leaving it unchanged\n", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := atomicfile.Write(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// renderOnce resolves the font and exports the configured outputs.
func renderOnce(ctx context.Context, cfg *config.Config) error {
	style, err := cfg.RenderStyle()
	if err != nil {
		return err
	}
	font, err := fontsource.Resolve(ctx, cfg.FontOptions())
	if err != nil {
		return fmt.Errorf("resolve font: %w", err)
	}
	slog.Info("using font", "origin", font.Origin)
	if font.Origin == fontsource.EmbeddedOrigin {
		slog.Warn("no configured font found, using embedded Go Bold")
	}

	start := time.Now()
	out := cfg.Outputs()
	base, err := render.New(font.Font).Export(style, out)
	if err != nil {
		return err
	}
	slog.Debug("export complete", "size", base.Size(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// settleDelay lets editors finish multi-step saves before reloading.
const settleDelay = 150 * time.Millisecond

// watchedFiles returns the config file plus the explicit font file, if any.
func watchedFiles(configPath string, cfg *config.Config) []string {
	files := []string{configPath}
	if cfg.Font.File != "" {
		files = append(files, cfg.Font.File)
	}
	return files
}

// newWatcher starts a watcher on files, polling when -poll is set.
func newWatcher(opts *options, files []string) (*watch.Watcher, error) {
	if opts.poll {
		return watch.NewPolling(files, 0)
	}
	return watch.New(files, 0)
}

// watchLoop re-renders on every change until ctx is cancelled. A config
// that fails to load keeps the previous one in effect.
func watchLoop(ctx context.Context, opts *options, cfg *config.Config) error {
	lock, err := acquireWatchLock(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer releaseWatchLock(lock)

	w, err := newWatcher(opts, watchedFiles(opts.configPath, cfg))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { w.Close() }()
	slog.Info("watching for changes", "config", opts.configPath, "polling", w.Polling())

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping watch")
			return nil
		case <-w.Events():
		}

		time.Sleep(settleDelay)
		select {
		case <-w.Events():
		default:
		}

		next, err := loadConfig(opts)
		if err != nil {
			slog.Error("config reload failed, keeping previous config", "error", err)
			continue
		}
		if next.Font.File != cfg.Font.File {
			nw, err := newWatcher(opts, watchedFiles(opts.configPath, next))
			if err != nil {
				return fmt.Errorf("restart watcher: %w", err)
			}
			w.Close()
			w = nw
		}
		cfg = next

		if err := renderOnce(ctx, cfg); err != nil {
			slog.Error("render failed", "error", err)
		}
	}
}

// ///////////////////////////////////////////////
// Overrides
// ///////////////////////////////////////////////

// overrides holds style and output flags. Only flags present on the
// command line replace config values.
type overrides struct {
	text, bg, gradStart, gradEnd string
	font, outDir                 string
	padding                      float64
	chevron                      bool
	logToFile                    bool

	// set records which flag names were given.
	set map[string]bool
}

// register binds the override flags on fs. Defaults mirror the built-in
// config so -help output is meaningful.
func (o *overrides) register(fs *flag.FlagSet) {
	def := config.DefaultConfig()
	fs.StringVar(&o.text, "text", def.Style.Text, "Glyph or short string to draw")
	fs.StringVar(&o.bg, "bg", def.Style.Background, "Background color (#RRGGBB)")
	fs.StringVar(&o.gradStart, "grad-start", def.Style.GradientStart, "Gradient color at the bottom-left (#RRGGBB)")
	fs.StringVar(&o.gradEnd, "grad-end", def.Style.GradientEnd, "Gradient color at the top-right (#RRGGBB)")
	fs.Float64Var(&o.padding, "padding", def.Style.Padding, fmt.Sprintf("Padding fraction per side (0-%g)", raster.MaxPadding))
	fs.BoolVar(&o.chevron, "chevron", def.Style.Chevron, "Overlay the zigzag stripe texture")
	fs.StringVar(&o.font, "font", "", "Font file to use instead of the configured sources")
	fs.StringVar(&o.outDir, "out-dir", "", "Directory for the output files")
	fs.BoolVar(&o.logToFile, "log", false, fmt.Sprintf("Also log to %s in the output directory", paths.LogFile))
}

// collect records which override flags were set explicitly.
func (o *overrides) collect(fs *flag.FlagSet) {
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
}

// apply copies explicitly set flags into cfg.
func (o *overrides) apply(cfg *config.Config) {
	if o.set["text"] {
		cfg.Style.Text = o.text
	}
	if o.set["bg"] {
		cfg.Style.Background = o.bg
	}
	if o.set["grad-start"] {
		cfg.Style.GradientStart = o.gradStart
	}
	if o.set["grad-end"] {
		cfg.Style.GradientEnd = o.gradEnd
	}
	if o.set["padding"] {
		cfg.Style.Padding = o.padding
	}
	if o.set["chevron"] {
		cfg.Style.Chevron = o.chevron
	}
	if o.set["font"] {
		cfg.Font.File = o.font
	}
	if o.set["out-dir"] {
		cfg.Output.Dir = o.outDir
	}
	if o.set["log"] && o.logToFile {
		cfg.Log.File = filepath.Join(cfg.Output.Dir, paths.LogFile)
	}
}
