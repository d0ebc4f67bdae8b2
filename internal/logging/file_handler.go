package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	fileMu     sync.RWMutex
	fileTarget slog.Handler
)

// AddFileOutput tees every logger into the given log file, creating parent
// directories as needed. Safe to call before or after Initialize; loggers
// already handed out pick up the sink on their next record.
func AddFileOutput(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	// Level gating happens in FileHandler, so the sink itself passes
	// everything through.
	target := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	fileMu.Lock()
	fileTarget = target
	fileMu.Unlock()
	return nil
}

// FileHandler is a slog.Handler that writes records to the file configured
// via AddFileOutput. The target is resolved at Handle time so the handler
// works even when created before any file is configured.
type FileHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewFileHandler creates a handler that writes to the configured log file.
func NewFileHandler(level slog.Leveler) *FileHandler {
	return &FileHandler{level: level}
}

// Enabled implements slog.Handler.
func (h *FileHandler) Enabled(_ context.Context, level slog.Level) bool {
	fileMu.RLock()
	target := fileTarget
	fileMu.RUnlock()
	return target != nil && level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *FileHandler) Handle(ctx context.Context, r slog.Record) error {
	fileMu.RLock()
	target := fileTarget
	fileMu.RUnlock()
	if target == nil {
		return nil
	}

	for _, g := range h.groups {
		target = target.WithGroup(g)
	}
	if len(h.attrs) > 0 {
		target = target.WithAttrs(h.attrs)
	}
	return target.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *FileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &FileHandler{level: h.level, attrs: newAttrs, groups: h.groups}
}

// WithGroup implements slog.Handler.
func (h *FileHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &FileHandler{level: h.level, attrs: h.attrs, groups: newGroups}
}
