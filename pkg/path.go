package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name used for the configuration and cache
// directories.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name,
			regexp.MustCompile(`^\.+`):             "",
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory. It holds the CLI
// configuration file and, by default, the functions/ and maps/ definition
// directories.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the directory used for transient files such as the
// REPL history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// userDir returns the result of lookup, falling back to a dot directory in
// the user's home, then to the working directory.
func userDir(lookup func() (string, error), dot string) string {
	if dir, err := lookup(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, dot)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
