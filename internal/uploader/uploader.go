// Package uploader watches the download directory and ships finished videos
// to Telegram, recovering interrupted downloads along the way.
package uploader

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eusougabrielgadelha/charbot/internal/events"
	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/media"
	"github.com/eusougabrielgadelha/charbot/internal/telegram"
	"github.com/eusougabrielgadelha/charbot/internal/telegram/botapi"
	"github.com/eusougabrielgadelha/charbot/internal/telegram/mtproto"
)

// wakeDebounce delays a rescan triggered by filesystem activity so a burst
// of writes produces a single pass.
const wakeDebounce = 2 * time.Second

// Uploader drives the scan/recover/send loop.
type Uploader struct {
	opts    Options
	root    string
	scanner *Scanner
	sender  telegram.Sender
	engine  string
	toolkit *media.Toolkit
	bus     *events.Bus
	logger  logging.Logger
}

// New resolves the download root, picks the transport, and builds the
// worker. The event bus is optional.
func New(opts Options, bus *events.Bus) (*Uploader, error) {
	logger := logging.GetLogger("uploader")

	root, err := ResolveDownloadRoot(opts.DownloadDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Watching download root", "dir", root)

	sender, engine, err := newSender(opts, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Upload engine selected", "engine", engine)

	return &Uploader{
		opts:    opts,
		root:    root,
		scanner: NewScanner(root, opts, logger),
		sender:  sender,
		engine:  engine,
		toolkit: media.New(logger),
		bus:     bus,
		logger:  logger,
	}, nil
}

// newSender picks MTProto when it is enabled and fully configured,
// otherwise the Bot API.
func newSender(opts Options, logger logging.Logger) (telegram.Sender, string, error) {
	if opts.EnableMTProto && opts.TGAPIID != 0 && opts.TGAPIHash != "" {
		client, err := mtproto.New(mtproto.Config{
			APIID:       opts.TGAPIID,
			APIHash:     opts.TGAPIHash,
			BotToken:    opts.TelegramToken,
			ChatID:      opts.TelegramChatID,
			SessionFile: opts.TGSessionFile,
			PartKB:      opts.MTPartKB,
		}, logger)
		return client, "mtproto", err
	}

	client, err := botapi.New(opts.TelegramToken, opts.TelegramChatID, logger)
	return client, "botapi", err
}

// Run executes one pass, then keeps watching if configured. Returns when
// the context is cancelled or, in single-pass mode, when the pass is done.
func (u *Uploader) Run(ctx context.Context) error {
	u.pass(ctx)

	if !u.opts.Watch {
		return nil
	}
	return u.watch(ctx)
}

// watch rescans on a fixed interval and wakes early (debounced) on
// filesystem activity under the root.
func (u *Uploader) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	u.rewatch(watcher)

	ticker := time.NewTicker(u.opts.watchInterval())
	defer ticker.Stop()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			u.pass(ctx)
			u.rewatch(watcher)
		case <-debounce.C:
			u.pass(ctx)
			u.rewatch(watcher)
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				debounce.Reset(wakeDebounce)
			}
		case err := <-watcher.Errors:
			u.logger.Warn("Watcher error", "error", err)
		}
	}
}

// rewatch refreshes the watched directory set; new room subdirectories
// appear while the collector runs.
func (u *Uploader) rewatch(watcher *fsnotify.Watcher) {
	for _, dir := range u.scanner.Subdirs() {
		_ = watcher.Add(dir) // already-watched dirs are fine
	}
}

// pass recovers stable partials, then uploads stable files oldest first.
func (u *Uploader) pass(ctx context.Context) {
	regular, partials := u.scanner.Scan()

	queue := u.recoverPartials(ctx, partials)
	queue = append(queue, regular...)

	for _, path := range queue {
		if ctx.Err() != nil {
			return
		}
		u.send(ctx, path)
	}
}

// recoverPartials finalizes stable .part files and returns the resulting
// videos, which jump the upload queue.
func (u *Uploader) recoverPartials(ctx context.Context, partials []string) []string {
	if len(partials) == 0 {
		return nil
	}
	if !u.toolkit.Available() {
		u.logger.Warn("Partial files present but ffmpeg is unavailable", "count", len(partials))
		return nil
	}

	var recovered []string
	for _, part := range partials {
		if ctx.Err() != nil {
			break
		}
		u.logger.Info("Recovering partial download", "file", part)
		result, err := u.toolkit.FinalizePart(ctx, part)
		if err != nil {
			u.logger.Error("Partial recovery failed", "file", part, "error", err)
			continue
		}
		u.logger.Info("Partial recovered", "file", result)
		recovered = append(recovered, result)
		u.publish(events.PartRecoveredEvent{
			Source:    part,
			Result:    result,
			Timestamp: timestamp(),
		})
	}
	return recovered
}

// send uploads one file and applies the post-send policy.
func (u *Uploader) send(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		u.logger.Warn("File vanished before upload", "file", path)
		return
	}

	if u.engine == "botapi" && info.Size() > botapi.MaxUploadSize {
		u.logger.Warn("File exceeds Bot API upload limit, leaving in place",
			"file", path, "size", telegram.HumanSize(info.Size()))
		return
	}

	caption := Caption(u.opts.CaptionTemplate, u.root, path)
	u.logger.Info("Sending", "file", path, "caption", caption, "size", telegram.HumanSize(info.Size()))

	if err := u.sender.SendDocument(ctx, path, caption); err != nil {
		u.logger.Error("Upload failed", "file", path, "error", err)
		u.publish(events.UploadFailedEvent{
			Path:      path,
			Engine:    u.engine,
			Error:     err.Error(),
			Timestamp: timestamp(),
		})
		return
	}

	deleted := false
	if u.opts.DeleteAfterSend {
		if err := os.Remove(path); err != nil {
			u.logger.Warn("Could not remove sent file", "file", path, "error", err)
		} else {
			deleted = true
		}
	}

	u.publish(events.FileUploadedEvent{
		Path:      path,
		Bytes:     info.Size(),
		Engine:    u.engine,
		Deleted:   deleted,
		Timestamp: timestamp(),
	})
}

func (u *Uploader) publish(ev events.Event) {
	if u.bus != nil {
		u.bus.Publish(ev)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
