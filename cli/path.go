package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/axbind/pkg"
)

// baseConfig is the base name of the CLI configuration file.
const baseConfig = "config.toml"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration
// directory with elem. With no elements it is [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cachePath is [configPath] for the cache directory.
func cachePath(elem ...string) string {
	return filepath.Join(append([]string{pkg.CacheDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configPath(), cachePath()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
