package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/vaxchart/internal/chart"
	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/model"
)

type staticSource struct {
	snap *dataset.Snapshot
}

func (s staticSource) Snapshot() *dataset.Snapshot { return s.snap }

type staticStatus struct {
	st dataset.Status
}

func (s staticStatus) Status() dataset.Status { return s.st }

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSnapshot() *dataset.Snapshot {
	return dataset.NewSnapshot([]model.Record{
		{Location: "Japan", Date: day("2021-02-17"), Vaccine: "Pfizer/BioNTech", TotalVaccinations: 100},
		{Location: "Japan", Date: day("2021-03-01"), Vaccine: "Pfizer/BioNTech", TotalVaccinations: 400},
		{Location: "Malta", Date: day("2021-01-05"), Vaccine: "Moderna", TotalVaccinations: 10},
		{Location: "Malta", Date: day("2021-03-10"), Vaccine: "Moderna", TotalVaccinations: 50},
	}, time.Now())
}

func newTestServer(t *testing.T, snap *dataset.Snapshot, checks map[string]Pinger) (*Server, *Hub) {
	t.Helper()
	svc := chart.NewService(staticSource{snap: snap}, nil, nil, nil)
	status := dataset.Status{}
	if snap != nil {
		status = dataset.Status{Ready: true, LoadID: snap.LoadID.String(), Rows: snap.Len()}
	}
	hub := NewHub(time.Second, nil)
	cfg := Config{DefaultLocation: "Japan", Width: 800, Height: 400}
	return New(cfg, svc, staticStatus{st: status}, hub, checks, nil), hub
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleLocations(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	rec := get(t, s.Handler(), "/api/locations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Locations []string `json:"locations"`
		Default   string   `json:"default"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Locations) != 2 || resp.Locations[0] != "Japan" || resp.Locations[1] != "Malta" {
		t.Errorf("Locations = %v, want [Japan Malta]", resp.Locations)
	}
	if resp.Default != "Japan" {
		t.Errorf("Default = %q, want Japan", resp.Default)
	}
}

func TestHandleChart(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLoc    string
	}{
		{"explicit location", "/api/chart?location=Malta", http.StatusOK, "Malta"},
		{"default location", "/api/chart", http.StatusOK, "Japan"},
		{"unknown location", "/api/chart?location=Atlantis", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLoc == "" {
				return
			}

			var resp struct {
				Location string           `json:"location"`
				Keys     []string         `json:"keys"`
				Bins     []map[string]any `json:"bins"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Location != tt.wantLoc {
				t.Errorf("location = %q, want %q", resp.Location, tt.wantLoc)
			}
			if len(resp.Bins) != 3 {
				t.Fatalf("bins = %d, want 3 (Jan..Mar)", len(resp.Bins))
			}
			if resp.Bins[0]["month"] != "Jan-2021" {
				t.Errorf("first month = %v, want Jan-2021", resp.Bins[0]["month"])
			}
		})
	}
}

func TestHandleChart_NotReady(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := get(t, s.Handler(), "/api/chart?location=Japan")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSVG(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	rec := get(t, s.Handler(), "/chart.svg?location=Japan")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not SVG")
	}
}

func TestHandleIndex(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	rec := get(t, s.Handler(), "/?location=Malta")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<option value="Malta" selected>`) {
		t.Error("Malta not selected")
	}
	if !strings.Contains(body, "Vaccine: Moderna") {
		t.Error("missing Moderna tooltip")
	}

	// An unknown location falls back to the first one.
	rec = get(t, s.Handler(), "/?location=Atlantis")
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="Japan" selected>`) {
		t.Error("fallback did not select Japan")
	}
}

func TestHandleIndex_NotReady(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		snap       *dataset.Snapshot
		checks     map[string]Pinger
		wantStatus string
		wantCode   int
	}{
		{
			name:       "healthy",
			snap:       testSnapshot(),
			checks:     map[string]Pinger{"redis": pingerFunc(func(context.Context) error { return nil })},
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name:       "degraded before load",
			snap:       nil,
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
		},
		{
			name:       "unhealthy database",
			snap:       testSnapshot(),
			checks:     map[string]Pinger{"timescaledb": pingerFunc(func(context.Context) error { return errors.New("refused") })},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.snap, tt.checks)
			rec := get(t, s.Handler(), "/health")
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if _, ok := resp.Components["dataset"]; !ok {
				t.Error("missing dataset component")
			}
		})
	}
}

func TestHandleMetrics(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vaxchart_") {
		t.Error("metrics output missing vaxchart_ collectors")
	}
}

func TestHandleDebugDataset(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(), nil)

	rec := get(t, s.Handler(), "/debug/dataset")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status   dataset.Status `json:"status"`
		Vaccines []string       `json:"vaccines"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Status.Ready || resp.Status.Rows != 4 {
		t.Errorf("status = %+v", resp.Status)
	}
	if len(resp.Vaccines) != 2 {
		t.Errorf("vaccines = %v, want 2", resp.Vaccines)
	}
}

func TestHub_BroadcastsChanges(t *testing.T) {
	s, hub := newTestServer(t, testSnapshot(), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan dataset.Change, 1)
	go hub.Run(ctx, changes)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Clients() != 1 {
		t.Fatalf("clients = %d, want 1", hub.Clients())
	}

	id := uuid.New()
	changes <- dataset.Change{LoadID: id, Rows: 4, Locations: 2}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != EventDatasetRefreshed {
		t.Errorf("Type = %q, want %q", ev.Type, EventDatasetRefreshed)
	}
	if ev.LoadID != id.String() || ev.Rows != 4 || ev.Locations != 2 {
		t.Errorf("event = %+v", ev)
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Clients() != 0 {
		t.Errorf("clients after close = %d, want 0", hub.Clients())
	}
}
