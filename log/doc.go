// Package log provides the structured logger used throughout axbind.
//
// It wraps [log/slog] with a small set of functional options that are
// applied when a [Logger] is created or re-wrapped, and a process-wide
// default logger that the package-level functions write to.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("group written", slog.String("file", "bindings.h"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// The default logger is reconfigured in place with [Config]:
//
//	log.Config(log.WithLevel(log.ParseLevel("debug")))
//	log.Debug("configured")
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and [LevelError].
// Trace sits below slog's debug level and is rendered as "TRACE".
//
// # Formats
//
// [FormatJSON] (default) and [FormatText]. Either can be rendered "pretty",
// which colorizes keys and values for terminals. Values implementing
// [slog.LogValuer] (such as the error types of the bind and tomlctx packages)
// are resolved before rendering.
package log
