// Package cmd implements the axbind subcommands: apply, check, dump, init,
// and try.
//
// Commands receive a [context.Context] carrying the [kong.Context] and the
// definition root; see [WithContext] and [WithRoot].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the CLI configuration file.
	ConfigIdentifier = "config"
)

// DefaultBindFile is the bind file used when no pattern is given.
const DefaultBindFile = "axbind.toml"
