package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eusougabrielgadelha/charbot/internal/config"
	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/uploader"
)

// CreateUploaderCmd creates the uploader subcommand. The supervisor runs
// this as a child process with the resolved environment; it also works
// standalone.
func CreateUploaderCmd() *cobra.Command {
	opts := uploader.DefaultOptions()
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "uploader",
		Short: "Ship finished videos to Telegram",
		Long: `Watches the download directory for stable video files and sends them ` +
			`to the configured chat, recovering interrupted .part downloads first. ` +
			`Uses the Bot API by default, or MTProto when enabled and configured.`,
		Run: func(c *cobra.Command, _ []string) {
			format := "text"
			if logJSON {
				format = "json"
			}
			logging.Initialize(logging.Config{Level: "info", Format: format})
			logger := logging.GetLogger("uploader")

			if err := config.LoadDotenv(); err != nil {
				logger.Warn("Failed to load .env", "error", err)
			}
			if err := config.LoadConfig(&opts, c); err != nil {
				logger.Warn("Failed to load config", "error", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			worker, err := uploader.New(opts, nil)
			if err != nil {
				logger.Error("Failed to initialize uploader", "error", err)
				os.Exit(1)
			}

			if err := worker.Run(ctx); err != nil {
				logger.Error("Uploader failed", "error", err)
				os.Exit(1)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.DownloadDir, "download-dir", opts.DownloadDir, "Directory to watch for finished videos")
	flags.StringVar(&opts.LogDir, "log-dir", opts.LogDir, "Directory for log files")
	flags.BoolVar(&opts.Watch, "watch", opts.Watch, "Keep watching after the first pass")
	flags.IntVar(&opts.WatchInterval, "watch-interval", opts.WatchInterval, "Seconds between rescans")
	flags.IntVar(&opts.StableAge, "stable-age", opts.StableAge, "Seconds a file must be unmodified before upload")
	flags.BoolVar(&opts.DeleteAfterSend, "delete-after-send", opts.DeleteAfterSend, "Remove files after a successful send")
	flags.Float64Var(&opts.MaxFileGB, "max-file-gb", opts.MaxFileGB, "Skip files larger than this many GB (0 = unlimited)")
	flags.StringVar(&opts.Config, "config", opts.Config, "Config file path")
	flags.BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}
