// Package media wraps the ffmpeg/ffprobe command line tools for the small
// set of operations the workers need: stream-copy remux to mp4, a 720p
// transcode fallback, and recovery of interrupted .part downloads into
// playable files.
package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// Toolkit runs ffmpeg operations. The zero value is not usable; construct
// with New, which resolves the tool paths once.
type Toolkit struct {
	ffmpeg  string
	ffprobe string
	logger  logging.Logger
}

// New resolves ffmpeg and ffprobe on PATH. A missing ffprobe only disables
// probing; a missing ffmpeg disables the toolkit entirely (Available reports
// false and every operation returns an error).
func New(logger logging.Logger) *Toolkit {
	t := &Toolkit{logger: logger}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		t.ffmpeg = path
	} else {
		logger.Warn("ffmpeg not found on PATH, media finalization disabled")
	}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		t.ffprobe = path
	}
	return t
}

// Available reports whether ffmpeg was found.
func (t *Toolkit) Available() bool {
	return t.ffmpeg != ""
}

// run executes ffmpeg with the given args, streaming its stderr through the
// log level parser so encoder warnings surface at the right level.
func (t *Toolkit) run(ctx context.Context, args []string) error {
	if t.ffmpeg == "" {
		return fmt.Errorf("ffmpeg not available")
	}

	full := append([]string{"-hide_banner", "-nostdin", "-loglevel", "level+warning"}, args...)
	cmd := exec.CommandContext(ctx, t.ffmpeg, full...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	t.streamStderr(stderr)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func (t *Toolkit) streamStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		level, msg := ParseLogLevel(line)
		switch level {
		case "fatal", "error", "panic":
			t.logger.Error(msg)
		case "warning":
			t.logger.Warn(msg)
		case "debug", "verbose", "trace":
			t.logger.Debug(msg)
		default:
			t.logger.Info(msg)
		}
	}
}

// probeOutput runs ffprobe and returns its trimmed stdout.
func (t *Toolkit) probeOutput(ctx context.Context, args []string) (string, error) {
	if t.ffprobe == "" {
		return "", fmt.Errorf("ffprobe not available")
	}
	out, err := exec.CommandContext(ctx, t.ffprobe, args...).Output()
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
