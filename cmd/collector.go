package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eusougabrielgadelha/charbot/internal/collector"
	"github.com/eusougabrielgadelha/charbot/internal/config"
	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// CreateCollectorCmd creates the collector subcommand. The supervisor runs
// this as a child process; it also works standalone.
func CreateCollectorCmd() *cobra.Command {
	opts := collector.DefaultOptions()
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "collector",
		Short: "Discover live rooms and record them",
		Long: `Fetches the configured listing page, extracts room links with a CSS ` +
			`selector, and records each room with yt-dlp through a bounded worker ` +
			`pool. Finished files are normalized with ffmpeg; leftover partials are ` +
			`finalized before exit.`,
		Run: func(c *cobra.Command, _ []string) {
			format := "text"
			if logJSON {
				format = "json"
			}
			logging.Initialize(logging.Config{Level: "info", Format: format})
			logger := logging.GetLogger("collector")

			if err := config.LoadDotenv(); err != nil {
				logger.Warn("Failed to load .env", "error", err)
			}
			if err := config.LoadConfig(&opts, c); err != nil {
				logger.Warn("Failed to load config", "error", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			worker, err := collector.New(opts, nil)
			if err != nil {
				logger.Error("Failed to initialize collector", "error", err)
				os.Exit(1)
			}

			if err := worker.Run(ctx); err != nil {
				if ctx.Err() != nil {
					logger.Info("Collector interrupted")
					return
				}
				logger.Error("Collector cycle failed", "error", err)
				os.Exit(1)
			}
			slog.Info("Collector cycle complete")
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.StartURL, "start-url", opts.StartURL, "Room listing URL")
	flags.StringVar(&opts.Selector, "selector", opts.Selector, "CSS selector for room links")
	flags.IntVar(&opts.LimitRooms, "limit-rooms", opts.LimitRooms, "Maximum rooms per cycle (0 = unlimited)")
	flags.IntVar(&opts.MaxActive, "max-active", opts.MaxActive, "Parallel downloads")
	flags.StringVar(&opts.DownloadDir, "download-dir", opts.DownloadDir, "Directory for downloaded videos")
	flags.StringVar(&opts.LogDir, "log-dir", opts.LogDir, "Directory for log files")
	flags.BoolVar(&opts.Headless, "headless", opts.Headless, "Run without interactive output")
	flags.StringVar(&opts.UserAgent, "user-agent", opts.UserAgent, "HTTP User-Agent for listing fetches")
	flags.IntVar(&opts.NavTimeout, "nav-timeout", opts.NavTimeout, "Listing fetch timeout in seconds")
	flags.IntVar(&opts.MinFPS, "min-fps", opts.MinFPS, "Re-encode finished files below this frame rate (0 = off)")
	flags.BoolVar(&opts.Postprocess720, "postprocess-720", opts.Postprocess720, "Transcode finished files to 720p")
	flags.StringVar(&opts.Config, "config", opts.Config, "Config file path")
	flags.BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}
