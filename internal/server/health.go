package server

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const healthTimeout = 5 * time.Second

type healthResponse struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

// handleHealth reports dataset readiness and pings every backing service.
// A failed ping makes the service unhealthy; a dataset that is not loaded or
// whose last refresh failed makes it degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	health := healthResponse{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components[name] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components[name] = "connected"
		}
	}

	st := s.status.Status()
	health.Components["dataset"] = st
	if health.Status == "healthy" && (!st.Ready || st.LastError != "") {
		health.Status = "degraded"
	}

	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}
