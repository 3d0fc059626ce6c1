package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// HealthStatusOK is the only status reported by the liveness endpoint.
const HealthStatusOK HealthStatus = "ok"

// HealthStatus represents the liveness of the service.
type HealthStatus string

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Body struct {
		Status HealthStatus `doc:"Liveness of the service" example:"ok" json:"status"`
	}
}

// RegisterHealthRoutes sets up the liveness endpoint.
// It never inspects dependencies, a running process is a healthy one.
func RegisterHealthRoutes(routerAPI huma.API, path string) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Path:        path,
			Summary:     "Report service liveness",
			Tags:        []string{"Health"},
		},
		func(_ context.Context, _ *struct{}) (*HealthResponse, error) {
			return handleHealth(), nil
		},
	)
}

func handleHealth() *HealthResponse {
	resp := &HealthResponse{}
	resp.Body.Status = HealthStatusOK
	return resp
}
