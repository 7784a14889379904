// Package iconmarker provides embedded assets for the iconmarker CLI.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The CLI writes this file out for -write-config.
package iconmarker

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. It is regenerated by go generate in internal/config.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
