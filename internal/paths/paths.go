// Package paths centralizes file names and the input/output path contract for
// build files. A build description "foo.json" always renders to "foo.png" in
// the same directory.
package paths

import (
	"errors"
	"path/filepath"
	"strings"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// File extensions used by the CLI.
const (
	BuildExt  = ".json"
	OutputExt = ".png"
	LockExt   = ".lock"
)

// Data directory file names.
const (
	ConfigFile = "config.toml"
	LogFile    = "shopkeeper.log"
	BinaryName = "shopkeeper"
	DataDirRel = ".shopkeeper" // relative to $HOME
)

// ///////////////////////////////////////////////
// Input Validation
// ///////////////////////////////////////////////

var (
	// ErrNoInput is returned when no build file argument was given.
	ErrNoInput = errors.New("no input file given")
	// ErrNotJSON is returned when the argument does not end in [BuildExt].
	ErrNotJSON = errors.New("argument must be a .json file")
)

// CheckInput validates the positional CLI argument. Glob patterns are allowed
// as long as they still end in [BuildExt].
func CheckInput(arg string) error {
	if arg == "" {
		return ErrNoInput
	}
	if !strings.HasSuffix(arg, BuildExt) {
		return ErrNotJSON
	}
	return nil
}

// OutputPath returns the image path for a build file: the trailing
// [BuildExt] is replaced with [OutputExt].
func OutputPath(input string) string {
	return strings.TrimSuffix(input, BuildExt) + OutputExt
}

// LockPath returns the advisory lock file guarding writes to output.
func LockPath(output string) string {
	return output + LockExt
}

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }
