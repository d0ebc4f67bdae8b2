// Package logging provides structured logging with per-module log level
// configuration.
//
// The package wraps Go's slog with automatic output routing:
//   - systemd journal when journald is available
//   - stdout when a terminal, pipe, or file is connected
//   - an in-memory ring buffer, always, for the status API
//
// Initialize the system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"uploader":   "debug",
//			"supervisor": "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("collector")
//	logger.Info("starting", "rooms", n)
//
// Module-specific levels override the global level for that module only.
// When running under systemd, logs can be inspected with:
//
//	journalctl -t charbot MODULE=uploader
package logging
