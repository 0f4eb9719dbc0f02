// Package tomlctx extracts typed values from a decoded TOML tree while
// tracking where in the tree each value came from.
//
// Every extracted value carries a [Context], an immutable path such as
//
//	axbind.toml: groups[0].captures[2].escape
//
// so that a failure deep inside chained extraction still names the exact
// location of the offending value. Extraction never panics: absent keys and
// mistyped values are reported as a [*GetError] of kind [NoKey] or
// [WrongType].
package tomlctx
