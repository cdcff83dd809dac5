package dataset

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/vaxchart/internal/model"
	"github.com/rickgao/vaxchart/internal/transform"
)

// Snapshot is one immutable load of the dataset.
type Snapshot struct {
	LoadID   uuid.UUID
	LoadedAt time.Time
	Skipped  int

	records    []model.Record
	byLocation map[string][]int
	locations  []string
	vaccines   []string
	domain     transform.Domain
	thresholds []time.Time
}

// NewSnapshot indexes records. The slice is copied.
func NewSnapshot(records []model.Record, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		LoadID:     uuid.New(),
		LoadedAt:   loadedAt,
		records:    append([]model.Record(nil), records...),
		byLocation: make(map[string][]int),
	}

	for i, r := range s.records {
		if _, ok := s.byLocation[r.Location]; !ok {
			s.locations = append(s.locations, r.Location)
		}
		s.byLocation[r.Location] = append(s.byLocation[r.Location], i)
	}
	s.vaccines = transform.Keys(s.records)

	if d, ok := transform.Extent(s.records); ok {
		s.domain = d
		s.thresholds = transform.MonthThresholds(d)
	}

	return s
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Locations returns location names in order of first appearance.
func (s *Snapshot) Locations() []string {
	return append([]string(nil), s.locations...)
}

// Vaccines returns vaccine names across all locations in order of first appearance.
func (s *Snapshot) Vaccines() []string {
	return append([]string(nil), s.vaccines...)
}

// HasLocation reports whether any record belongs to location.
func (s *Snapshot) HasLocation(location string) bool {
	_, ok := s.byLocation[location]
	return ok
}

// ForLocation returns a copy of the location's records in source order.
func (s *Snapshot) ForLocation(location string) []model.Record {
	idx := s.byLocation[location]
	out := make([]model.Record, len(idx))
	for i, j := range idx {
		out[i] = s.records[j]
	}
	return out
}

// Domain returns the dataset-wide date range.
func (s *Snapshot) Domain() transform.Domain { return s.domain }

// Thresholds returns the dataset-wide month thresholds.
func (s *Snapshot) Thresholds() []time.Time {
	return append([]time.Time(nil), s.thresholds...)
}

// Chart runs the transform pipeline for one location against this snapshot.
func (s *Snapshot) Chart(location string) *model.Chart {
	c := transform.Run(location, s.ForLocation(location), s.domain, s.thresholds)
	c.LoadID = s.LoadID.String()
	return c
}
