package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/core"
)

// rootMessage is the liveness text served at the root path.
const rootMessage = "Sheet upload service is running"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(rootMessage))
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database,omitempty"`
	Uploads  core.UploadLimiterStatus `json:"uploads"`
}

// handleHealth reports store connectivity and upload capacity. An
// unreachable store answers 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	code := http.StatusOK

	if s.limiter != nil {
		resp.Uploads = s.limiter.Status()
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, code, resp)
}
