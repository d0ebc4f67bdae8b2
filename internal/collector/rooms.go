package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// Room is a single live room discovered on the listing page.
type Room struct {
	Username string
	URL      string
}

// RoomSource fetches the listing page and extracts room links with a CSS
// selector.
type RoomSource struct {
	startURL  string
	selector  string
	userAgent string
	client    *http.Client
	logger    logging.Logger
}

// NewRoomSource builds a RoomSource from the collector options.
func NewRoomSource(opts Options, logger logging.Logger) *RoomSource {
	return &RoomSource{
		startURL:  opts.StartURL,
		selector:  opts.Selector,
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: opts.navTimeout()},
		logger:    logger,
	}
}

// Fetch downloads the listing page and returns up to limit rooms
// (0 = unlimited), deduplicated in page order.
func (s *RoomSource) Fetch(ctx context.Context, limit int) ([]Room, error) {
	if s.startURL == "" {
		return nil, fmt.Errorf("no start URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.startURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.startURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching %s: HTTP %d", s.startURL, resp.StatusCode)
	}

	rooms, err := ParseRooms(resp.Body, s.startURL, s.selector, limit)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Listing fetched", "url", s.startURL, "rooms", len(rooms))
	return rooms, nil
}

// ParseRooms extracts room links from an HTML document. Hrefs are resolved
// against baseURL; the room username is the last path segment.
func ParseRooms(body io.Reader, baseURL, selector string, limit int) ([]Room, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	var rooms []Room
	seen := make(map[string]bool)

	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)

		username := lastPathSegment(abs.Path)
		if username == "" || seen[username] {
			return true
		}
		seen[username] = true
		rooms = append(rooms, Room{Username: username, URL: abs.String()})

		return limit <= 0 || len(rooms) < limit
	})

	return rooms, nil
}

// lastPathSegment returns the final path segment, or "" for paths that do
// not look like room links (empty, or asset-style names with a dot).
func lastPathSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	segs := strings.Split(trimmed, "/")
	last := segs[len(segs)-1]
	if strings.Contains(last, ".") {
		return ""
	}
	return last
}
