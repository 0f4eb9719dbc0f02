// Package profile starts runtime profilers using [github.com/pkg/profile].
//
// Profilers are compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	axbind --pprof-mode=cpu apply
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op
// [Stopper], so callers never need build tags of their own.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace. Profile data is written to the directory set
// with [WithDir], or to a temporary directory chosen by pkg/profile.
//
// The pprof build also registers the net/http/pprof handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
