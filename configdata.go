// Package shopkeeper provides embedded assets for the shopkeeper CLI.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The CLI writes it out for -write-config so users
// start from a commented copy of the defaults.
package shopkeeper

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
