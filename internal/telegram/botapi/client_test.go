package botapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-token", "12345", logging.GetLogger("test"))
	if err != nil {
		t.Fatal(err)
	}
	client.baseURL = server.URL
	return client
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "123", logging.GetLogger("test")); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := New("tok", "", logging.GetLogger("test")); err == nil {
		t.Error("expected error for empty chat id")
	}
}

func TestSendDocument(t *testing.T) {
	var gotPath string
	var form struct {
		chatID  string
		caption string
		silent  string
		name    string
		body    string
	}

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		form.chatID = r.FormValue("chat_id")
		form.caption = r.FormValue("caption")
		form.silent = r.FormValue("disable_notification")

		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("reading document part: %v", err)
			http.Error(w, "no document", http.StatusBadRequest)
			return
		}
		defer file.Close()
		form.name = header.Filename
		data, _ := io.ReadAll(file)
		form.body = string(data)

		w.Write([]byte(`{"ok":true}`))
	}))

	path := writeTestFile(t, "clip.mp4", "fake video bytes")
	if err := client.SendDocument(context.Background(), path, "#tag clip"); err != nil {
		t.Fatalf("SendDocument failed: %v", err)
	}

	if gotPath != "/bottest-token/sendDocument" {
		t.Errorf("request path = %q", gotPath)
	}
	if form.chatID != "12345" {
		t.Errorf("chat_id = %q, want %q", form.chatID, "12345")
	}
	if form.caption != "#tag clip" {
		t.Errorf("caption = %q, want %q", form.caption, "#tag clip")
	}
	if form.silent != "true" {
		t.Errorf("disable_notification = %q, want %q", form.silent, "true")
	}
	if form.name != "clip.mp4" {
		t.Errorf("document filename = %q, want %q", form.name, "clip.mp4")
	}
	if form.body != "fake video bytes" {
		t.Errorf("document body = %q", form.body)
	}
}

func TestSendDocumentEmptyCaptionOmitted(t *testing.T) {
	var hasCaption bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, hasCaption = r.MultipartForm.Value["caption"]
		w.Write([]byte(`{"ok":true}`))
	}))

	path := writeTestFile(t, "clip.mp4", "x")
	if err := client.SendDocument(context.Background(), path, ""); err != nil {
		t.Fatalf("SendDocument failed: %v", err)
	}
	if hasCaption {
		t.Error("empty caption should not be sent as a form field")
	}
}

func TestSendDocumentServerError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))

	path := writeTestFile(t, "clip.mp4", "x")
	err := client.SendDocument(context.Background(), path, "")
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if want := "chat not found"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should include response body %q", err, want)
	}
}

func TestSendDocumentMissingFile(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a missing file")
	}))

	if err := client.SendDocument(context.Background(), "/does/not/exist.mp4", ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
