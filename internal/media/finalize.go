package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// operation timeouts: remux is I/O bound, transcode can take a while on
// long recordings.
const (
	remuxTimeout     = 10 * time.Minute
	transcodeTimeout = 2 * time.Hour
)

// RemuxToMP4 stream-copies src into dst with +faststart.
func (t *Toolkit) RemuxToMP4(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, remuxTimeout)
	defer cancel()
	return t.run(ctx, RemuxArgs(src, dst))
}

// Transcode720 re-encodes src into dst, bounding the frame to 720p.
func (t *Toolkit) Transcode720(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()
	return t.run(ctx, TranscodeArgs(src, dst))
}

// RemuxInPlace normalizes a finished file to an mp4 with +faststart,
// replacing it atomically via a temp file in the same directory. When
// minFPS > 0 and the probed frame rate is below it, the video is re-encoded
// with an fps filter instead of stream-copied.
func (t *Toolkit) RemuxInPlace(ctx context.Context, path string, minFPS int) error {
	applyFPS := 0
	if minFPS > 0 {
		if fps, err := t.ProbeFPS(ctx, path); err == nil && fps > 0 && fps < float64(minFPS) {
			t.logger.Info("Raising frame rate", "file", filepath.Base(path), "fps", fps, "min_fps", minFPS)
			applyFPS = minFPS
		}
	}

	tmp := path + ".remux.tmp.mp4"
	defer os.Remove(tmp)

	timeout := remuxTimeout
	if applyFPS > 0 {
		timeout = transcodeTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := t.run(opCtx, normalizeArgs(path, tmp, applyFPS)); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// FinalizePart converts an interrupted .part download into a playable .mp4
// next to it. Stream copy is attempted first; if the container is too
// damaged for that, the file is re-encoded. The source is removed on
// success. Returns the path of the finalized file.
func (t *Toolkit) FinalizePart(ctx context.Context, partPath string) (string, error) {
	dst := FinalName(partPath)

	if err := t.RemuxToMP4(ctx, partPath, dst); err != nil {
		t.logger.Warn("Stream copy failed, re-encoding", "file", filepath.Base(partPath), "error", err)
		os.Remove(dst)
		if err := t.Transcode720(ctx, partPath, dst); err != nil {
			os.Remove(dst)
			return "", fmt.Errorf("finalizing %s: %w", partPath, err)
		}
	}

	if err := os.Remove(partPath); err != nil {
		t.logger.Warn("Could not remove partial source", "file", partPath, "error", err)
	}
	return dst, nil
}

// ProbeFPS returns the average frame rate of the first video stream.
func (t *Toolkit) ProbeFPS(ctx context.Context, path string) (float64, error) {
	out, err := t.probeOutput(ctx, []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
	if err != nil {
		return 0, err
	}
	return parseFrameRate(out)
}

// parseFrameRate parses ffprobe's rational frame rate ("30000/1001", "25/1",
// "0/0" for unknown).
func parseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		var fps float64
		if _, err := fmt.Sscanf(s, "%f", &fps); err != nil {
			return 0, fmt.Errorf("unexpected frame rate %q", s)
		}
		return fps, nil
	}
	var n, d float64
	if _, err := fmt.Sscanf(num, "%f", &n); err != nil {
		return 0, fmt.Errorf("unexpected frame rate %q", s)
	}
	if _, err := fmt.Sscanf(den, "%f", &d); err != nil || d == 0 {
		return 0, nil
	}
	return n / d, nil
}

// FinalName derives the destination for a finalized partial: the .part
// suffix (and yt-dlp's .mp4.part double suffix) stripped, always ending in
// .mp4, with a __fixed_<timestamp> marker inserted when the clean name is
// already taken.
func FinalName(partPath string) string {
	base := strings.TrimSuffix(partPath, ".part")
	if !strings.EqualFold(filepath.Ext(base), ".mp4") {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ".mp4"
	}

	if _, err := os.Stat(base); err == nil {
		stem := strings.TrimSuffix(base, ".mp4")
		base = fmt.Sprintf("%s__fixed_%d.mp4", stem, time.Now().Unix())
	}
	return base
}
