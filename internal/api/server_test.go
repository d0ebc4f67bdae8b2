package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eusougabrielgadelha/charbot/internal/supervisor"
)

func testServer(t *testing.T, user, pass string) *httptest.Server {
	t.Helper()

	sup := supervisor.New(supervisor.Options{
		Specs: map[string]supervisor.Spec{
			"collector": {Name: "collector", Interpreter: "/bin/true"},
			"uploader":  {Name: "uploader", Interpreter: "/bin/true"},
		},
	})

	server := NewServer(&Options{
		AuthUsername: user,
		AuthPassword: pass,
		Supervisor:   sup,
	})
	ts := httptest.NewServer(server.mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthNoAuthRequired(t *testing.T) {
	ts := testServer(t, "admin", "secret")

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestWorkersRequiresAuth(t *testing.T) {
	ts := testServer(t, "admin", "secret")

	resp, err := http.Get(ts.URL + "/api/workers")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workers", nil)
	req.SetBasicAuth("admin", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad credentials status = %d, want 401", resp.StatusCode)
	}
}

func TestWorkersListsSpecs(t *testing.T) {
	ts := testServer(t, "admin", "secret")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workers", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("workers status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Workers []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"workers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Workers) != 2 {
		t.Fatalf("workers = %v, want 2", body.Workers)
	}
	if body.Workers[0].Name != "collector" || body.Workers[1].Name != "uploader" {
		t.Errorf("workers = %v, want collector then uploader", body.Workers)
	}
	for _, w := range body.Workers {
		if w.State != "idle" {
			t.Errorf("worker %s state = %q, want idle before start", w.Name, w.State)
		}
	}
}

func TestUnknownWorker404(t *testing.T) {
	ts := testServer(t, "admin", "secret")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workers/nope", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestNoAuthConfiguredAllowsAccess(t *testing.T) {
	ts := testServer(t, "", "")

	resp, err := http.Get(ts.URL + "/api/workers")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", resp.StatusCode)
	}
}

func TestLogsEndpoint(t *testing.T) {
	ts := testServer(t, "admin", "secret")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/logs?limit=10", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logs status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Entries) > 10 {
		t.Errorf("entries = %d, want at most 10", len(body.Entries))
	}
}
