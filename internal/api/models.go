package api

import (
	"github.com/eusougabrielgadelha/charbot/internal/logging"
	"github.com/eusougabrielgadelha/charbot/internal/supervisor"
	"github.com/eusougabrielgadelha/charbot/internal/version"
)

// HealthData is the health check payload.
type HealthData struct {
	Status string `json:"status" example:"ok" doc:"Service status"`
}

// HealthResponse wraps HealthData for huma.
type HealthResponse struct {
	Body HealthData
}

// VersionResponse wraps version info for huma.
type VersionResponse struct {
	Body version.Info
}

// WorkerResponse describes a single worker.
type WorkerResponse struct {
	Body supervisor.Info
}

// WorkersResponse lists the supervised workers.
type WorkersResponse struct {
	Body struct {
		Workers []supervisor.Info `json:"workers" doc:"State of every supervised worker"`
	}
}

// LogsResponse returns recent log entries from the ring buffer.
type LogsResponse struct {
	Body struct {
		Entries []logging.LogEntry `json:"entries" doc:"Most recent log entries, oldest first"`
	}
}
