package config

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/supervisor"
)

// Worker names. The supervisor always manages exactly these two.
const (
	WorkerCollector = "collector"
	WorkerUploader  = "uploader"
)

// RestartDelay is the fixed delay before a crashed worker is respawned.
// It is a literal, not configurable: the restart policy is deliberately
// blunt and applies regardless of exit code or environment state.
const RestartDelay = 5000 * time.Millisecond

// envDefault pairs an environment variable with its literal fallback value.
// Credential-shaped variables default to the empty string: the worker that
// needs them is responsible for failing, the loader performs no validation.
type envDefault struct {
	Key     string
	Default string
}

// uploaderEnv is the uploader worker's environment surface.
var uploaderEnv = []envDefault{
	{"TELEGRAM_TOKEN", ""},
	{"TELEGRAM_CHAT_ID", ""},
	{"WATCH", "1"},
	{"WATCH_INTERVAL", "10"},
	{"STABLE_AGE", "20"},
	{"PART_STABLE_AGE", "60"},
	{"DELETE_AFTER_SEND", "1"},
	{"ENABLE_MTPROTO", "0"},
	{"TG_API_ID", ""},
	{"TG_API_HASH", ""},
	{"TG_SESSION_FILE", "tg.session"},
	{"MT_PART_KB", "1024"},
	{"MAX_FILE_GB", "0"},
	{"EXTENSIONS", ".mp4,.mkv,.mov,.m4v"},
	{"CAPTION_TEMPLATE", "{folder_tag} {filename}"},
}

// LookupFunc resolves an externally-supplied environment variable.
// os.LookupEnv satisfies it; tests substitute their own.
type LookupFunc func(key string) (string, bool)

// resolveEnv produces key=value pairs for the given defaults, preferring the
// external environment over the literal fallback. Resolution happens once,
// at configuration-load time; the spawned process sees a frozen snapshot.
func resolveEnv(lookup LookupFunc, defaults []envDefault) []string {
	resolved := make([]string, 0, len(defaults))
	for _, d := range defaults {
		value := d.Default
		if v, ok := lookup(d.Key); ok {
			value = v
		}
		resolved = append(resolved, d.Key+"="+value)
	}
	return resolved
}

// ResolveValue resolves a single variable the same way resolveEnv does.
func ResolveValue(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

// BuildSpecs produces the full set of Process Specifications for the
// supervisor: one collector and one uploader, launched as subcommands of
// the given executable. baseDir anchors the relative download/log defaults.
//
// The loader performs no validation; malformed or missing values pass
// through so that error handling stays inside the workers.
func BuildSpecs(lookup LookupFunc, exe, baseDir string) map[string]supervisor.Spec {
	downloadDir := ResolveValue(lookup, "DOWNLOAD_DIR", filepath.Join(baseDir, "download"))
	logDir := ResolveValue(lookup, "LOG_DIR", filepath.Join(baseDir, "logs"))

	specs := make(map[string]supervisor.Spec, 2)

	specs[WorkerCollector] = supervisor.Spec{
		Name:        WorkerCollector,
		Interpreter: exe,
		Entry:       WorkerCollector,
		Args: []string{
			"--download-dir", downloadDir,
			"--log-dir", logDir,
			"--headless",
		},
		Cwd: baseDir,
		Env: []string{
			"DOWNLOAD_DIR=" + downloadDir,
			"LOG_DIR=" + logDir,
		},
		Autorestart:  true,
		RestartDelay: RestartDelay,
	}

	uploaderVars := resolveEnv(lookup, uploaderEnv)
	uploaderVars = append(uploaderVars, "DOWNLOAD_DIR="+downloadDir)
	sort.Strings(uploaderVars)

	specs[WorkerUploader] = supervisor.Spec{
		Name:         WorkerUploader,
		Interpreter:  exe,
		Entry:        WorkerUploader,
		Cwd:          baseDir,
		Env:          uploaderVars,
		Autorestart:  true,
		RestartDelay: RestartDelay,
	}

	return specs
}
