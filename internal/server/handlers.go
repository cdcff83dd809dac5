package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rickgao/vaxchart/internal/chart"
	"github.com/rickgao/vaxchart/internal/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps chart errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chart.ErrUnknownLocation):
		return http.StatusNotFound
	case errors.Is(err, chart.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// location returns ?location=, falling back to the configured default.
func (s *Server) location(r *http.Request) string {
	if loc := r.URL.Query().Get("location"); loc != "" {
		return loc
	}
	return s.cfg.DefaultLocation
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.charts.Locations()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locations": locations,
		"default":   s.cfg.DefaultLocation,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.charts.ForLocation(r.Context(), s.location(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	c, err := s.charts.ForLocation(r.Context(), s.location(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.SVG(&buf, s.layout(c)); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	locations, err := s.charts.Locations()
	if err != nil {
		if errors.Is(err, chart.ErrNotReady) {
			w.Header().Set("Retry-After", "30")
			http.Error(w, "dataset is still loading", http.StatusServiceUnavailable)
			return
		}
		s.writeError(w, err)
		return
	}

	selected := s.location(r)
	c, err := s.charts.ForLocation(r.Context(), selected)
	if errors.Is(err, chart.ErrUnknownLocation) && len(locations) > 0 {
		// Unknown or missing default: fall back to the first location.
		selected = locations[0]
		c, err = s.charts.ForLocation(r.Context(), selected)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	st := s.status.Status()
	var buf bytes.Buffer
	err = render.Page(&buf, render.PageData{
		Locations: locations,
		Selected:  selected,
		LoadID:    st.LoadID,
		LoadedAt:  st.LastSyncAt,
		Layout:    s.layout(c),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleDebugDataset(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": s.status.Status()}

	if locations, err := s.charts.Locations(); err == nil {
		// Limit to first 100 for debugging
		limit := 100
		shown := locations
		if len(shown) > limit {
			shown = shown[:limit]
		}
		resp["locations"] = shown
	}
	if vaccines, err := s.charts.Vaccines(); err == nil {
		resp["vaccines"] = vaccines
	}
	if s.hub != nil {
		resp["websocket_clients"] = s.hub.Clients()
	}

	writeJSON(w, http.StatusOK, resp)
}
