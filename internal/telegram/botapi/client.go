// Package botapi uploads documents through the Telegram Bot API. Files are
// streamed through a pipe so arbitrarily large uploads never buffer in
// memory, with periodic progress logging.
package botapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/telegram"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// Large uploads over slow links can legitimately take this long.
	uploadTimeout = time.Hour

	// Bot API caps document uploads at 50 MB.
	MaxUploadSize = 50 * 1024 * 1024
)

// Client sends documents to a single chat via the Bot API.
type Client struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// New builds a Client. Token and chat id must be non-empty; the loader
// deliberately passes credentials through unchecked, so validation happens
// here where the transport is chosen.
func New(token, chatID string, logger logging.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot api: TELEGRAM_TOKEN is empty")
	}
	if chatID == "" {
		return nil, fmt.Errorf("bot api: TELEGRAM_CHAT_ID is empty")
	}
	return &Client{
		token:   token,
		chatID:  chatID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: uploadTimeout},
		logger:  logger,
	}, nil
}

// SendDocument uploads the file at path with the given caption.
func (c *Client) SendDocument(ctx context.Context, path, caption string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeForm(writer, file, info.Size(), filepath.Base(path), caption))
	}()

	url := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendDocument: HTTP %d: %s", resp.StatusCode, body)
	}

	c.logger.Info("Document sent", "file", filepath.Base(path), "size", telegram.HumanSize(info.Size()))
	return nil
}

// writeForm streams the multipart body: chat_id, caption, flags, then the
// document itself wrapped in a progress reader.
func (c *Client) writeForm(writer *multipart.Writer, file *os.File, size int64, name, caption string) error {
	fields := map[string]string{
		"chat_id":              c.chatID,
		"disable_notification": "true",
	}
	if caption != "" {
		fields["caption"] = caption
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}

	part, err := writer.CreateFormFile("document", name)
	if err != nil {
		return err
	}

	progress := &progressReader{
		reader: file,
		total:  size,
		name:   name,
		logger: c.logger,
	}
	if _, err := io.Copy(part, progress); err != nil {
		return err
	}

	return writer.Close()
}
