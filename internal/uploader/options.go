package uploader

import (
	"strings"
	"time"
)

// Options is the uploader's configuration surface. The supervisor injects
// these as environment variables; when the subcommand runs standalone the
// same variables (or flags) apply.
type Options struct {
	Config      string `help:"Config file path" default:"config.toml"`
	DownloadDir string `help:"Directory to watch for finished videos" toml:"paths.download_dir" env:"DOWNLOAD_DIR"`
	LogDir      string `help:"Directory for log files" toml:"paths.log_dir" env:"LOG_DIR"`

	Watch         bool `help:"Keep watching after the first pass" default:"true" toml:"uploader.watch" env:"WATCH"`
	WatchInterval int  `help:"Seconds between rescans" default:"10" toml:"uploader.watch_interval" env:"WATCH_INTERVAL"`
	StableAge     int  `help:"Seconds a file must be unmodified before upload" default:"20" toml:"uploader.stable_age" env:"STABLE_AGE"`
	PartStableAge int  `help:"Seconds a .part file must be unmodified before recovery" default:"60" toml:"uploader.part_stable_age" env:"PART_STABLE_AGE"`

	DeleteAfterSend bool    `help:"Remove files after a successful send" default:"true" toml:"uploader.delete_after_send" env:"DELETE_AFTER_SEND"`
	MaxFileGB       float64 `help:"Skip files larger than this many GB (0 = unlimited)" default:"0" toml:"uploader.max_file_gb" env:"MAX_FILE_GB"`
	Extensions      string  `help:"Comma-separated video extensions" default:".mp4,.mkv,.mov,.m4v" toml:"uploader.extensions" env:"EXTENSIONS"`
	CaptionTemplate string  `help:"Caption template with {folder_tag} and {filename}" default:"{folder_tag} {filename}" toml:"uploader.caption_template" env:"CAPTION_TEMPLATE"`

	TelegramToken  string `help:"Bot token" toml:"telegram.token" env:"TELEGRAM_TOKEN"`
	TelegramChatID string `help:"Destination chat: @username or numeric id" toml:"telegram.chat_id" env:"TELEGRAM_CHAT_ID"`

	EnableMTProto bool   `help:"Use MTProto instead of the Bot API" toml:"telegram.enable_mtproto" env:"ENABLE_MTPROTO"`
	TGAPIID       int    `help:"MTProto api_id" toml:"telegram.api_id" env:"TG_API_ID"`
	TGAPIHash     string `help:"MTProto api_hash" toml:"telegram.api_hash" env:"TG_API_HASH"`
	TGSessionFile string `help:"MTProto session file" default:"tg.session" toml:"telegram.session_file" env:"TG_SESSION_FILE"`
	MTPartKB      int    `help:"MTProto upload part size in KiB" default:"1024" toml:"telegram.part_kb" env:"MT_PART_KB"`
}

// DefaultOptions returns Options with the documented defaults applied.
func DefaultOptions() Options {
	return Options{
		Config:          "config.toml",
		Watch:           true,
		WatchInterval:   10,
		StableAge:       20,
		PartStableAge:   60,
		DeleteAfterSend: true,
		Extensions:      ".mp4,.mkv,.mov,.m4v",
		CaptionTemplate: "{folder_tag} {filename}",
		TGSessionFile:   "tg.session",
		MTPartKB:        1024,
	}
}

// extensionSet parses the comma-separated extension list into a lookup set
// with normalized (lowercase, dot-prefixed) keys.
func extensionSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

func (o Options) stableAge() time.Duration     { return time.Duration(o.StableAge) * time.Second }
func (o Options) partStableAge() time.Duration { return time.Duration(o.PartStableAge) * time.Second }
func (o Options) watchInterval() time.Duration {
	if o.WatchInterval < 1 {
		return 10 * time.Second
	}
	return time.Duration(o.WatchInterval) * time.Second
}

// maxBytes converts MaxFileGB into a byte limit, 0 meaning unlimited.
func (o Options) maxBytes() int64 {
	if o.MaxFileGB <= 0 {
		return 0
	}
	return int64(o.MaxFileGB * 1024 * 1024 * 1024)
}
