package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

const listingHTML = `<html><body>
<nav><a href="/static/logo.png">logo</a></nav>
<ul class="rooms">
  <li><a href="/alice/">alice</a></li>
  <li><a href="/bob/">bob</a></li>
  <li><a href="/alice/">alice again</a></li>
  <li><a href="https://other.example.com/carol/">carol</a></li>
</ul>
<footer><a href="/about.html">about</a></footer>
</body></html>`

func TestParseRooms(t *testing.T) {
	rooms, err := ParseRooms(strings.NewReader(listingHTML), "https://rooms.example.com/", "ul.rooms a", 0)
	if err != nil {
		t.Fatalf("ParseRooms failed: %v", err)
	}

	want := []Room{
		{Username: "alice", URL: "https://rooms.example.com/alice/"},
		{Username: "bob", URL: "https://rooms.example.com/bob/"},
		{Username: "carol", URL: "https://other.example.com/carol/"},
	}
	if len(rooms) != len(want) {
		t.Fatalf("rooms = %v, want %v", rooms, want)
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d] = %v, want %v", i, rooms[i], want[i])
		}
	}
}

func TestParseRoomsLimit(t *testing.T) {
	rooms, err := ParseRooms(strings.NewReader(listingHTML), "https://rooms.example.com/", "ul.rooms a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Fatalf("rooms = %v, want 2 entries", rooms)
	}
	if rooms[0].Username != "alice" || rooms[1].Username != "bob" {
		t.Errorf("rooms = %v, want alice then bob", rooms)
	}
}

func TestParseRoomsSkipsAssetLinks(t *testing.T) {
	rooms, err := ParseRooms(strings.NewReader(listingHTML), "https://rooms.example.com/", "a", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, room := range rooms {
		if strings.Contains(room.Username, ".") {
			t.Errorf("asset link leaked into rooms: %v", room)
		}
	}
}

func TestFetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.StartURL = server.URL
	opts.Selector = "ul.rooms a"
	opts.UserAgent = "test-agent/1.0"

	source := NewRoomSource(opts, logging.GetLogger("test"))
	rooms, err := source.Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(rooms) != 3 {
		t.Errorf("rooms = %v, want 3", rooms)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.StartURL = server.URL
	source := NewRoomSource(opts, logging.GetLogger("test"))

	if _, err := source.Fetch(context.Background(), 0); err == nil {
		t.Error("expected error for HTTP 503")
	}
}

func TestFetchNoStartURL(t *testing.T) {
	source := NewRoomSource(DefaultOptions(), logging.GetLogger("test"))
	if _, err := source.Fetch(context.Background(), 0); err == nil {
		t.Error("expected error for missing start URL")
	}
}

func TestLastPathSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/alice/", "alice"},
		{"/alice", "alice"},
		{"/a/b/c", "c"},
		{"/", ""},
		{"", ""},
		{"/about.html", ""},
	}
	for _, tt := range tests {
		if got := lastPathSegment(tt.in); got != tt.want {
			t.Errorf("lastPathSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
