package uploader

import (
	"path/filepath"
	"testing"
)

func TestSanitizeHashtag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"myroom", "#myroom"},
		{"My Room", "#My_Room"},
		{"My Room!", "#My_Room"},
		{"user_123", "#user_123"},
		{"ação-vídeo", "#aovdeo"},
		{"!!!", "#SemPasta"},
		{"", "#SemPasta"},
	}
	for _, tt := range tests {
		if got := SanitizeHashtag(tt.in); got != tt.want {
			t.Errorf("SanitizeHashtag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCaption(t *testing.T) {
	root := "/data/download"
	template := "{folder_tag} {filename}"

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "alice", "20260101_alice.mp4"), "#alice 20260101_alice"},
		{filepath.Join(root, "clip.mp4"), "#SemPasta clip"},
		{filepath.Join(root, "my room", "v.mkv"), "#my_room v"},
	}
	for _, tt := range tests {
		if got := Caption(template, root, tt.path); got != tt.want {
			t.Errorf("Caption(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCaptionCustomTemplate(t *testing.T) {
	got := Caption("{filename} from {folder_tag}", "/d", "/d/room/v.mp4")
	if got != "v from #room" {
		t.Errorf("Caption = %q", got)
	}
}
