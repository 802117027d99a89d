// Package logging provides structured logging utilities shared by all
// fabricsnap components.
//
// It wraps the standard library slog package with project defaults:
// JSON output to stderr, module/version context on every record,
// LOG_LEVEL environment configuration, and source location tracking
// for debug logs.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("fabricsnap", version)
//
//	    slog.Info("collection started", "devices", len(inv.Devices))
//	    slog.Error("fetch failed", "error", err, "device", dev.ID)
//	}
//
// An explicit level (e.g. from a --log-level flag) takes precedence over
// the LOG_LEVEL environment variable:
//
//	logging.SetDefaultStructuredLoggerWithLevel("fabricsnap", version, "debug")
package logging
