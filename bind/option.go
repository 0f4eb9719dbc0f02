package bind

import (
	"runtime"
	"time"

	"github.com/ardnew/axbind/log"
)

// Option configures an [Executor].
type Option func(config) config

type config struct {
	logger    log.Logger
	jobs      int
	timeout   time.Duration
	cacheSize int
	dryRun    bool
}

func makeConfig(opts ...Option) config {
	cfg := config{
		logger:    log.Default(),
		jobs:      runtime.NumCPU(),
		cacheSize: DefaultPatternCacheSize,
	}

	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithLogger sets the logger of the executor.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithJobs bounds the number of captures processed concurrently.
// Values below 1 select [runtime.NumCPU].
func WithJobs(n int) Option {
	return func(c config) config {
		if n < 1 {
			n = runtime.NumCPU()
		}

		c.jobs = n

		return c
	}
}

// WithTimeout sets the default timeout of command invocations whose
// function declares none. Zero is unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c config) config {
		c.timeout = max(d, 0)

		return c
	}
}

// WithDryRun disables writing output files.
func WithDryRun(dry bool) Option {
	return func(c config) config {
		c.dryRun = dry

		return c
	}
}

// WithCacheSize bounds the number of compiled patterns and programs kept.
func WithCacheSize(n int) Option {
	return func(c config) config {
		c.cacheSize = n

		return c
	}
}
