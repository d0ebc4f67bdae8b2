// Package api exposes the supervisor's status surface over HTTP: worker
// state, recent logs, version, and Prometheus metrics.
package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/supervisor"
	"github.com/eusougabrielgadelha/charbot/internal/version"
)

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Supervisor        *supervisor.Supervisor
	PrometheusHandler http.Handler // optional /metrics handler
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	sup        *supervisor.Supervisor
	logger     logging.Logger
}

// NewServer builds the API server on a standard library mux.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("charbot API", version.String())
	config.Info.Description = "Process supervisor for the room collector and Telegram uploader"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	server := &Server{
		api:    humago.New(mux, config),
		mux:    mux,
		sup:    opts.Supervisor,
		logger: logging.GetLogger("api"),
	}

	server.api.UseMiddleware(loggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		server.api.UseMiddleware(server.basicAuth(opts.AuthUsername, opts.AuthPassword))
	}

	// Prometheus scrapes are unauthenticated and bypass huma.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// basicAuth guards operations that declare a security requirement.
func (s *Server) basicAuth(username, password string) func(huma.Context, func(huma.Context)) {
	reject := func(ctx huma.Context, msg string) {
		ctx.SetHeader("WWW-Authenticate", `Basic realm="charbot API"`)
		huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		header := ctx.Header("Authorization")
		const prefix = "Basic "
		if !strings.HasPrefix(header, prefix) {
			reject(ctx, "Authentication required")
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
		if err != nil {
			reject(ctx, "Invalid credentials format")
			return
		}
		user, pass, found := strings.Cut(string(decoded), ":")
		if !found || user != username || pass != password {
			reject(ctx, "Invalid credentials")
			return
		}
		next(ctx)
	}
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", "addr", addr)
	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	return s.httpServer.ListenAndServe()
}

// Stop closes the server without waiting for open connections.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // no auth
	}, func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthData{Status: "ok"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // no auth
	}, func(ctx context.Context, _ *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	s.registerWorkerRoutes()
	s.registerLogRoutes()
}

// withAuth returns the security requirement for protected operations.
func withAuth() []map[string][]string {
	return []map[string][]string{{"basicAuth": {}}}
}
