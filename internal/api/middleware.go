package api

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// loggingMiddleware logs each request at a level matching its outcome.
func loggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()

	next(ctx)

	status := ctx.Status()
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	logging.GetLogger("api").Log(ctx.Context(), level, "HTTP request",
		"method", ctx.Method(),
		"path", ctx.URL().Path,
		"status", status,
		"duration", time.Since(start),
		"remote_addr", ctx.RemoteAddr())
}
