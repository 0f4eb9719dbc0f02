package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrSyntax       = errors.New("syntax error")
	ErrEditDeclined = errors.New("edit declined")
)
