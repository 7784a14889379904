// Package paths centralizes file and directory names used across the project.
// Default output names and cache locations are defined here as the single
// source of truth.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Default file names.
const (
	ConfigFile = "iconmarker.toml"
	PNGFile    = "icon.png"
	ICOFile    = "icon.ico"
	LogFile    = "iconmarker.log"
	LockFile   = ".iconmarker.lock"
	BinaryName = "iconmarker"
)

// Output extensions.
const (
	PNGExt = ".png"
	ICOExt = ".ico"
)

// FontCacheRel is the font cache directory relative to the user cache dir.
const FontCacheRel = "iconmarker/fonts"

// FontCacheDir returns the default downloaded-font cache directory.
func FontCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, filepath.FromSlash(FontCacheRel)), nil
}

// ///////////////////////////////////////////////
// Extensions
// ///////////////////////////////////////////////

// EnsureExtension returns path with extension ext. A path already ending in
// ext (compared case-insensitively) is returned unchanged; any other
// extension is replaced, and a bare name gets ext appended.
func EnsureExtension(path, ext string) string {
	if path == "" {
		return ""
	}
	cur := filepath.Ext(path)
	if strings.EqualFold(cur, ext) {
		return path
	}
	return strings.TrimSuffix(path, cur) + ext
}

// ///////////////////////////////////////////////
// OutputDir
// ///////////////////////////////////////////////

// OutputDir provides output path construction rooted at a directory.
// Names that are already absolute are used as-is.
type OutputDir struct {
	Root string
}

// resolve joins name onto the root unless it is absolute.
func (d OutputDir) resolve(name string) string {
	if filepath.IsAbs(name) || d.Root == "" {
		return name
	}
	return filepath.Join(d.Root, name)
}

// PNG returns the full PNG output path for name, forcing the .png extension.
// An empty name yields an empty path.
func (d OutputDir) PNG(name string) string {
	if name == "" {
		return ""
	}
	return d.resolve(EnsureExtension(name, PNGExt))
}

// ICO returns the full ICO output path for name, forcing the .ico extension.
// An empty name yields an empty path.
func (d OutputDir) ICO(name string) string {
	if name == "" {
		return ""
	}
	return d.resolve(EnsureExtension(name, ICOExt))
}
