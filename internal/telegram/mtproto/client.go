// Package mtproto uploads documents over the Telegram MTProto API (gotd),
// which lifts the Bot API's 50 MB document limit. Authorization uses the bot
// token when one is configured, otherwise a pre-authorized session file.
package mtproto

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/telegram"
)

// Config holds everything needed to build a Client.
type Config struct {
	APIID       int
	APIHash     string
	BotToken    string // optional, used when the session is not yet authorized
	ChatID      string // @username or numeric id
	SessionFile string
	PartKB      int
}

// Client sends documents to a single chat over MTProto. Each send runs a
// full connect/upload/disconnect cycle, which keeps the worker loop free of
// long-lived connection state.
type Client struct {
	cfg    Config
	logger logging.Logger
}

// New validates the credential surface and builds a Client.
func New(cfg Config, logger logging.Logger) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("mtproto: TG_API_ID and TG_API_HASH are required")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("mtproto: TELEGRAM_CHAT_ID is empty")
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = "tg.session"
	}
	return &Client{cfg: cfg, logger: logger}, nil
}

// SendDocument uploads the file at path as a forced document with the given
// caption.
func (c *Client) SendDocument(ctx context.Context, path, caption string) error {
	client := tgclient.NewClient(c.cfg.APIID, c.cfg.APIHash, tgclient.Options{
		SessionStorage: &session.FileStorage{Path: c.cfg.SessionFile},
	})

	return client.Run(ctx, func(ctx context.Context) error {
		if err := c.authorize(ctx, client); err != nil {
			return err
		}

		api := client.API()
		up := uploader.NewUploader(api).WithPartSize(PartSizeBytes(c.cfg.PartKB))

		c.logger.Info("Uploading via MTProto",
			"file", filepath.Base(path),
			"part_size", telegram.HumanSize(int64(PartSizeBytes(c.cfg.PartKB))))

		upload, err := up.FromPath(ctx, path)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}

		peer, err := resolvePeer(ctx, api, c.cfg.ChatID)
		if err != nil {
			return err
		}

		document := message.UploadedDocument(upload, styling.Plain(caption)).
			Filename(filepath.Base(path)).
			ForceFile(true)

		sender := message.NewSender(api).WithUploader(up)
		if _, err := sender.To(peer).Media(ctx, document); err != nil {
			return fmt.Errorf("sending %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// authorize checks the stored session and falls back to bot-token login.
func (c *Client) authorize(ctx context.Context, client *tgclient.Client) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("auth status: %w", err)
	}
	if status.Authorized {
		return nil
	}
	if c.cfg.BotToken == "" {
		return fmt.Errorf("mtproto: session %s not authorized and no bot token set", c.cfg.SessionFile)
	}
	if _, err := client.Auth().Bot(ctx, c.cfg.BotToken); err != nil {
		return fmt.Errorf("bot login: %w", err)
	}
	return nil
}

// PartSizeBytes converts the configured KiB part size into a valid MTProto
// part size: a power-of-two multiple of 1 KiB, at most 512 KiB.
func PartSizeBytes(kb int) int {
	if kb < 1 || kb > 512 {
		kb = 512
	}
	p := 1
	for p*2 <= kb {
		p *= 2
	}
	return p * 1024
}
