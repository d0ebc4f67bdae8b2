package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// registerWorkerRoutes exposes supervisor state and control.
func (s *Server) registerWorkerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-workers",
		Method:      http.MethodGet,
		Path:        "/api/workers",
		Summary:     "Workers",
		Description: "State, PID, and restart count of every supervised worker.",
		Tags:        []string{"workers"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, _ *struct{}) (*WorkersResponse, error) {
		resp := &WorkersResponse{}
		resp.Body.Workers = s.sup.List()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-worker",
		Method:      http.MethodGet,
		Path:        "/api/workers/{name}",
		Summary:     "Worker",
		Tags:        []string{"workers"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"uploader" doc:"Worker name"`
	}) (*WorkerResponse, error) {
		for _, info := range s.sup.List() {
			if info.Name == input.Name {
				return &WorkerResponse{Body: info}, nil
			}
		}
		return nil, huma.Error404NotFound(fmt.Sprintf("unknown worker %q", input.Name))
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-worker",
		Method:      http.MethodPost,
		Path:        "/api/workers/{name}/restart",
		Summary:     "Restart Worker",
		Description: "Stop the worker and start it again immediately.",
		Tags:        []string{"workers"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"collector" doc:"Worker name"`
	}) (*WorkerResponse, error) {
		if err := s.sup.Restart(input.Name); err != nil {
			return nil, huma.Error404NotFound(err.Error())
		}
		return &WorkerResponse{Body: s.sup.Status(input.Name)}, nil
	})
}
