package collector

import "time"

// Options is the collector's configuration surface. The supervisor passes
// the directories as launch args; everything else has flag/env/TOML
// fallbacks.
type Options struct {
	Config      string `help:"Config file path" default:"config.toml"`
	StartURL    string `help:"Room listing URL" toml:"collector.start_url" env:"START_URL"`
	Selector    string `help:"CSS selector for room links" default:"a[href^='/']" toml:"collector.selector" env:"ROOM_SELECTOR"`
	LimitRooms  int    `help:"Maximum rooms per cycle (0 = unlimited)" default:"60" toml:"collector.limit_rooms" env:"LIMIT_ROOMS"`
	MaxActive   int    `help:"Parallel downloads" default:"3" toml:"collector.max_active" env:"MAX_ACTIVE"`
	DownloadDir string `help:"Directory for downloaded videos" toml:"paths.download_dir" env:"DOWNLOAD_DIR"`
	LogDir      string `help:"Directory for log files" toml:"paths.log_dir" env:"LOG_DIR"`

	Headless   bool   `help:"Run without interactive output" default:"true" toml:"collector.headless" env:"HEADLESS"`
	UserAgent  string `help:"HTTP User-Agent for listing fetches" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36" toml:"collector.user_agent" env:"USER_AGENT"`
	NavTimeout int    `help:"Listing fetch timeout in seconds" default:"45" toml:"collector.nav_timeout" env:"NAV_TIMEOUT"`

	MinFPS         int  `help:"Re-encode finished files below this frame rate (0 = off)" default:"0" toml:"collector.min_fps" env:"MIN_FPS"`
	Postprocess720 bool `help:"Transcode finished files to 720p after download" toml:"collector.postprocess_720" env:"POSTPROCESS_720"`
}

// DefaultOptions returns Options with the documented defaults applied.
func DefaultOptions() Options {
	return Options{
		Config:     "config.toml",
		Selector:   "a[href^='/']",
		LimitRooms: 60,
		MaxActive:  3,
		Headless:   true,
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
		NavTimeout: 45,
	}
}

func (o Options) navTimeout() time.Duration {
	if o.NavTimeout < 1 {
		return 45 * time.Second
	}
	return time.Duration(o.NavTimeout) * time.Second
}
