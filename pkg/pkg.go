//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of axbind embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier. It appears in help
	// text, default directory names, and temporary file prefixes.
	Name = "axbind"
	// Description is a short, human-readable summary used in help output.
	Description = "Generate bindings from captured source fragments"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
