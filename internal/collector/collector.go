// Package collector discovers live rooms on a listing page and records them
// with yt-dlp, finalizing whatever the recordings leave behind.
package collector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/events"
	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/media"
)

// Collector runs one discover/record/finalize cycle.
type Collector struct {
	opts       Options
	source     *RoomSource
	downloader *Downloader
	toolkit    *media.Toolkit
	bus        *events.Bus
	logger     logging.Logger
}

// New builds the collector worker. The event bus is optional.
func New(opts Options, bus *events.Bus) (*Collector, error) {
	logger := logging.GetLogger("collector")

	if opts.DownloadDir == "" || opts.LogDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		if opts.DownloadDir == "" {
			opts.DownloadDir = filepath.Join(cwd, "download")
		}
		if opts.LogDir == "" {
			opts.LogDir = filepath.Join(cwd, "logs")
		}
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	if err := logging.AddFileOutput(filepath.Join(opts.LogDir, "collector.log")); err != nil {
		logger.Warn("Could not open log file, logging to stdout only", "dir", opts.LogDir, "error", err)
	}

	downloader, err := NewDownloader(logger)
	if err != nil {
		return nil, err
	}

	return &Collector{
		opts:       opts,
		source:     NewRoomSource(opts, logger),
		downloader: downloader,
		toolkit:    media.New(logger),
		bus:        bus,
		logger:     logger,
	}, nil
}

// Run performs a full cycle: fetch the listing, record every discovered
// room through the bounded pool, then sweep the download directory for
// leftovers. The supervisor restarts the worker for the next cycle.
func (c *Collector) Run(ctx context.Context) error {
	rooms, err := c.source.Fetch(ctx, c.opts.LimitRooms)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		c.logger.Info("No rooms found, nothing to record")
		return nil
	}
	c.logger.Info("Starting recordings", "rooms", len(rooms), "max_active", c.opts.MaxActive)

	pool := NewPool(c.opts.MaxActive, func(ctx context.Context, room Room) (string, error) {
		return c.record(ctx, room)
	}, c.logger)
	jobs := pool.Run(ctx, rooms)

	c.sweep(context.WithoutCancel(ctx))

	var failed int
	for _, job := range jobs {
		if job.Status == JobError {
			failed++
		}
	}
	if failed == len(jobs) {
		return fmt.Errorf("all %d recordings failed", failed)
	}
	return nil
}

// record downloads one room and normalizes the finished file.
func (c *Collector) record(ctx context.Context, room Room) (string, error) {
	out, err := c.downloader.Download(ctx, room, c.opts.DownloadDir)
	if err != nil {
		return out, err
	}

	info, statErr := os.Stat(out)
	if statErr != nil {
		return "", fmt.Errorf("recording for %s produced no file", room.Username)
	}

	if c.toolkit.Available() {
		if err := c.toolkit.RemuxInPlace(ctx, out, c.opts.MinFPS); err != nil {
			c.logger.Warn("Remux failed, keeping original", "file", out, "error", err)
		}
		if c.opts.Postprocess720 {
			c.postprocess(ctx, out)
		}
	}

	c.publish(events.FileDownloadedEvent{
		Path:      out,
		Room:      room.Username,
		Bytes:     info.Size(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return out, nil
}

// postprocess replaces a finished recording with its 720p transcode.
func (c *Collector) postprocess(ctx context.Context, path string) {
	tmp := strings.TrimSuffix(path, ".mp4") + ".720.tmp.mp4"
	defer os.Remove(tmp)

	if err := c.toolkit.Transcode720(ctx, path, tmp); err != nil {
		c.logger.Warn("720p transcode failed", "file", path, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		c.logger.Warn("Could not replace with transcode", "file", path, "error", err)
	}
}

// sweep finalizes .part files the recordings left behind. Uses a context
// detached from the cycle's cancellation so shutdown still rescues what it
// can within its own timeout.
func (c *Collector) sweep(ctx context.Context) {
	if !c.toolkit.Available() {
		return
	}

	var parts []string
	filepath.WalkDir(c.opts.DownloadDir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(strings.ToLower(path), ".part") {
			parts = append(parts, path)
		}
		return nil
	})
	if len(parts) == 0 {
		return
	}

	c.logger.Info("Finalizing leftover partials", "count", len(parts))
	for _, part := range parts {
		result, err := c.toolkit.FinalizePart(ctx, part)
		if err != nil {
			c.logger.Warn("Could not finalize partial", "file", part, "error", err)
			continue
		}
		c.publish(events.PartRecoveredEvent{
			Source:    part,
			Result:    result,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (c *Collector) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
