// Package telegram defines the upload transport shared by the Bot API and
// MTProto senders.
package telegram

import (
	"context"
	"fmt"
)

// Sender uploads a local file as a Telegram document.
type Sender interface {
	// SendDocument uploads the file at path to the configured chat with the
	// given caption.
	SendDocument(ctx context.Context, path, caption string) error
}

// HumanSize formats a byte count the way the upload progress lines do.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
