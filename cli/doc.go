// Package cli contains the command line interface for axbind.
//
// # Usage
//
// With no command, axbind applies the bind files named on the command line,
// or axbind.toml in the working directory:
//
//	axbind
//	axbind apply --jobs 4 --dry-run 'services/*/axbind.toml'
//	axbind check axbind.toml
//	axbind dump yaml axbind.toml
//	axbind try
//
// Function and map definitions are looked up under the definition root
// selected with --config (default: the user configuration directory).
//
// # Configuration
//
// Flag defaults are read from config.toml in the user configuration
// directory. Keys name flags, with hyphens or underscores, and tables
// prefix their keys:
//
//	jobs = 8
//	env_file = ["/etc/axbind.env"]
//
//	[log]
//	level = "debug"
//	pretty = false
//
// Run "axbind init" to write a configuration file holding the current flag
// values. Command-line flags always take precedence.
package cli
