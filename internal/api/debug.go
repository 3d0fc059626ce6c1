package api

import (
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
)

// maxRawBodyBytes limits how much of a request the debug endpoint will echo.
const maxRawBodyBytes = 1 << 20

// RawBodyResponse is returned by the debug echo endpoint.
type RawBodyResponse struct {
	ReceivedBody string `json:"receivedBody"`
}

// RegisterDebugRoutes registers the raw-echo endpoint used to diagnose what clients actually send.
// It accepts any content type, so it is mounted directly on the router rather than as a typed operation.
func RegisterDebugRoutes(router chi.Router, logger hclog.Logger, path string) {
	router.Post(path, handleRawBody(logger))
}

func handleRawBody(logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRawBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if stdErrors.As(err, &tooLarge) {
					writeJSON(w, logger, http.StatusRequestEntityTooLarge, NewErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large"))
					return
				}
				writeJSON(w, logger, http.StatusBadRequest, NewErrorResponse(http.StatusBadRequest, "Unable to read request body"))
				return
			}
			body = b
		}

		logger.Debug("Raw body received", "contentType", r.Header.Get("Content-Type"), "bytes", len(body))
		writeJSON(w, logger, http.StatusOK, RawBodyResponse{ReceivedBody: string(body)})
	}
}

func writeJSON(w http.ResponseWriter, logger hclog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
