package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eusougabrielgadelha/charbot/cmd"
	"github.com/eusougabrielgadelha/charbot/internal/api"
	"github.com/eusougabrielgadelha/charbot/internal/config"
	"github.com/eusougabrielgadelha/charbot/internal/events"
	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/metrics"
	"github.com/eusougabrielgadelha/charbot/internal/supervisor"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Status API listen address" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings (empty = auth disabled)
	AuthUsername string `help:"Basic auth username" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSupervisor string `help:"Supervisor logging level" default:"info" toml:"logging.supervisor" env:"LOGGING_SUPERVISOR"`
	LoggingCollector  string `help:"Collector output logging level" default:"info" toml:"logging.collector" env:"LOGGING_COLLECTOR"`
	LoggingUploader   string `help:"Uploader output logging level" default:"info" toml:"logging.uploader" env:"LOGGING_UPLOADER"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// .env feeds the worker environment resolution: real environment
		// wins, .env fills gaps, literal defaults come last.
		if err := config.LoadDotenv(); err != nil {
			logging.GetLogger("main").Warn("Failed to load .env", "error", err)
		}
		if err := config.LoadConfig(opts, nil); err != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", err)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"supervisor": opts.LoggingSupervisor,
				"collector":  opts.LoggingCollector,
				"uploader":   opts.LoggingUploader,
				"api":        opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		exe, err := os.Executable()
		if err != nil {
			logger.Error("Cannot resolve own executable", "error", err)
			os.Exit(1)
		}
		baseDir, err := os.Getwd()
		if err != nil {
			logger.Error("Cannot resolve working directory", "error", err)
			os.Exit(1)
		}

		specs := config.BuildSpecs(os.LookupEnv, exe, baseDir)

		eventBus := events.New()
		unbindMetrics := func() {}
		if opts.MetricsEnabled {
			unbindMetrics = metrics.Bind(eventBus)
		}

		sup := supervisor.New(supervisor.Options{
			Specs:    specs,
			EventBus: eventBus,
			Logger:   logging.GetLogger("supervisor"),
			ConfigureWorker: func(name string, w *supervisor.Worker) {
				// Worker output lands under the worker's own module logger.
				w.SetLogParser(logging.GetLogger(name), nil)
			},
		})

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Supervisor:   sup,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = promhttp.Handler()
		}
		server := api.NewServer(apiOpts)

		hooks.OnStart(func() {
			if err := sup.StartAll(); err != nil {
				logger.Error("Failed to start workers", "error", err)
				os.Exit(1)
			}

			logger.Info("Starting status API", "addr", opts.Port)
			if err := server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start status API", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if err := server.Stop(); err != nil {
				logger.Error("Error stopping status API", "error", err)
			}
			sup.StopAll()
			unbindMetrics()
		})
	})

	cli.Root().AddCommand(cmd.CreateCollectorCmd())
	cli.Root().AddCommand(cmd.CreateUploaderCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
