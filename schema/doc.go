// Package schema defines the records read from bind files, map files, and
// function files, and decodes them from [tomlctx] tables.
//
// Every record keeps the [tomlctx.Context] it was decoded from so later
// failures can point back at the declaration that caused them.
package schema
