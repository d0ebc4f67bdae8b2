package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// Downloader runs yt-dlp against a room URL.
type Downloader struct {
	bin    string
	logger logging.Logger
}

// NewDownloader resolves yt-dlp on PATH.
func NewDownloader(logger logging.Logger) (*Downloader, error) {
	bin, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found on PATH: %w", err)
	}
	return &Downloader{bin: bin, logger: logger}, nil
}

// OutputPath builds the destination for a room recording:
// <downloadDir>/<user>/<stamp>_<user>.mp4.
func OutputPath(downloadDir, username string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	return filepath.Join(downloadDir, username, fmt.Sprintf("%s_%s.mp4", stamp, username))
}

// Args builds the yt-dlp argument list for one recording. The ffmpeg
// downloader handles live HLS streams better than the native one; --no-part
// is deliberately off so interrupted recordings stay recoverable as .part
// files.
func Args(roomURL, outputPath string) []string {
	return []string{
		"--no-color",
		"--newline",
		"--retries", "3",
		"--fragment-retries", "3",
		"--concurrent-fragments", "5",
		"--downloader", "ffmpeg",
		"-o", outputPath,
		roomURL,
	}
}

// Download records one room until the stream ends or the context is
// cancelled. Returns the output path on success.
func (d *Downloader) Download(ctx context.Context, room Room, downloadDir string) (string, error) {
	out := OutputPath(downloadDir, room.Username, time.Now())
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("creating room directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.bin, Args(room.URL, out)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Let yt-dlp/ffmpeg close the file properly before dying.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
	}
	cmd.WaitDelay = 10 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting yt-dlp: %w", err)
	}

	d.streamOutput(stdout, room.Username)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return "", fmt.Errorf("yt-dlp for %s: %w", room.Username, err)
	}
	return out, nil
}

// streamOutput forwards yt-dlp lines to the logger. Progress lines are
// noisy and go to debug; real errors keep their level.
func (d *Downloader) streamOutput(r io.Reader, room string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "[download]"):
			d.logger.Debug(line, "room", room)
		case strings.HasPrefix(line, "ERROR"):
			d.logger.Error(line, "room", room)
		case strings.HasPrefix(line, "WARNING"):
			d.logger.Warn(line, "room", room)
		default:
			d.logger.Info(line, "room", room)
		}
	}
}
