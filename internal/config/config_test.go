package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testOptions struct {
	Config      string
	DownloadDir string  `toml:"paths.download_dir" env:"DOWNLOAD_DIR"`
	Port        int     `toml:"server.port" env:"PORT"`
	Watch       bool    `toml:"uploader.watch" env:"WATCH"`
	MaxFileGB   float64 `toml:"uploader.max_file_gb" env:"MAX_FILE_GB"`
	Extensions  []string
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfigFile(t, `
[paths]
download_dir = "/data/download"

[server]
port = 9090

[uploader]
watch = true
max_file_gb = 1.5
`)

	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DownloadDir != "/data/download" {
		t.Errorf("DownloadDir = %q, want %q", opts.DownloadDir, "/data/download")
	}
	if opts.Port != 9090 {
		t.Errorf("Port = %d, want 9090", opts.Port)
	}
	if !opts.Watch {
		t.Error("Watch = false, want true")
	}
	if opts.MaxFileGB != 1.5 {
		t.Errorf("MaxFileGB = %v, want 1.5", opts.MaxFileGB)
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	path := writeConfigFile(t, `
[paths]
download_dir = "/from-toml"

[server]
port = 9090
`)

	t.Setenv("DOWNLOAD_DIR", "/from-env")
	t.Setenv("PORT", "7070")

	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DownloadDir != "/from-env" {
		t.Errorf("DownloadDir = %q, want %q", opts.DownloadDir, "/from-env")
	}
	if opts.Port != 7070 {
		t.Errorf("Port = %d, want 7070", opts.Port)
	}
}

func TestLoadConfigEmptyEnvIgnored(t *testing.T) {
	t.Setenv("DOWNLOAD_DIR", "")

	opts := testOptions{DownloadDir: "/preset"}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DownloadDir != "/preset" {
		t.Errorf("DownloadDir = %q, want preset value kept", opts.DownloadDir)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	opts := testOptions{Config: filepath.Join(t.TempDir(), "nope.toml"), Port: 8080}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.Port != 8080 {
		t.Errorf("Port = %d, want default 8080 kept", opts.Port)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Port", "port"},
		{"DownloadDir", "download-dir"},
		{"MaxFileGB", "max-file-gb"},
		{"MinFPS", "min-fps"},
		{"StartURL", "start-url"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"0", false},
		{"true", true},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
		{"yes", true},
		{"  0  ", false},
		{"FALSE", false},
		{"anything", true},
	}
	for _, tt := range tests {
		if got := ParseBool(tt.in); got != tt.want {
			t.Errorf("ParseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DOTENV_PROBE=from-file\nDOTENV_FRESH=fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("DOTENV_PROBE", "from-env")
	t.Setenv("DOTENV_FRESH", "")
	os.Unsetenv("DOTENV_FRESH")

	if err := LoadDotenv(); err != nil {
		t.Fatalf("LoadDotenv failed: %v", err)
	}

	if got := os.Getenv("DOTENV_PROBE"); got != "from-env" {
		t.Errorf("DOTENV_PROBE = %q, existing environment must win over .env", got)
	}
	if got := os.Getenv("DOTENV_FRESH"); got != "fresh" {
		t.Errorf("DOTENV_FRESH = %q, want value loaded from .env", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if err := LoadDotenv(); err != nil {
		t.Errorf("LoadDotenv with no .env file: %v", err)
	}
}
