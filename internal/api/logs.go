package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// registerLogRoutes exposes the in-memory log ring buffer.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Logs",
		Description: "Most recent log entries across all modules, oldest first.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Maximum entries to return"`
	}) (*LogsResponse, error) {
		resp := &LogsResponse{}
		resp.Body.Entries = []logging.LogEntry{}

		buffer := logging.GetBuffer()
		if buffer == nil {
			return resp, nil
		}

		if entries := buffer.Tail(input.Limit); entries != nil {
			resp.Body.Entries = entries
		}
		return resp, nil
	})
}
