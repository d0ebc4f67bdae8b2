package botapi

import (
	"io"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/telegram"
)

// progressReader logs upload progress at most every reportInterval.
type progressReader struct {
	reader io.Reader
	total  int64
	sent   int64
	name   string
	logger logging.Logger
	last   time.Time
}

const reportInterval = 5 * time.Second

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	p.sent += int64(n)

	now := time.Now()
	if now.Sub(p.last) >= reportInterval || (err == io.EOF && p.sent == p.total) {
		p.last = now
		percent := 100.0
		if p.total > 0 {
			percent = float64(p.sent) / float64(p.total) * 100
		}
		p.logger.Info("Uploading",
			"file", p.name,
			"percent", int(percent),
			"sent", telegram.HumanSize(p.sent),
			"total", telegram.HumanSize(p.total))
	}
	return n, err
}
