package chart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/model"
)

type staticSource struct {
	snap *dataset.Snapshot
}

func (s staticSource) Snapshot() *dataset.Snapshot { return s.snap }

type memCache struct {
	mu   sync.Mutex
	data map[string]*model.Chart
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]*model.Chart)}
}

func (m *memCache) Get(_ context.Context, loadID, location string) (*model.Chart, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[loadID+"/"+location]
	return c, ok
}

func (m *memCache) Set(_ context.Context, c *model.Chart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[c.LoadID+"/"+c.Location] = c
	m.sets++
}

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
		{Location: "Malta", Date: day("2021-03-10"), Vaccine: "Pfizer/BioNTech", TotalVaccinations: 50},
	}, time.Now())
}

func TestColors(t *testing.T) {
	keys := []string{"a", "b", "c"}

	got := Colors(keys, []string{"red", "blue"})
	want := map[string]string{"a": "red", "b": "blue", "c": "red"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Colors()[%q] = %q, want %q", k, got[k], v)
		}
	}

	def := Colors(keys, nil)
	if def["a"] != Palette[0] || def["c"] != Palette[2] {
		t.Errorf("default palette not applied: %v", def)
	}
}

func TestService_NotReady(t *testing.T) {
	svc := NewService(staticSource{}, nil, nil, nil)

	if _, err := svc.ForLocation(context.Background(), "Japan"); !errors.Is(err, ErrNotReady) {
		t.Errorf("ForLocation error = %v, want ErrNotReady", err)
	}
	if _, err := svc.Locations(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Locations error = %v, want ErrNotReady", err)
	}
	if _, err := svc.Colors(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Colors error = %v, want ErrNotReady", err)
	}
}

func TestService_UnknownLocation(t *testing.T) {
	svc := NewService(staticSource{snap: testSnapshot()}, nil, nil, nil)

	_, err := svc.ForLocation(context.Background(), "Atlantis")
	if !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("error = %v, want ErrUnknownLocation", err)
	}
}

func TestService_ForLocation(t *testing.T) {
	snap := testSnapshot()
	svc := NewService(staticSource{snap: snap}, nil, nil, nil)

	c, err := svc.ForLocation(context.Background(), "Japan")
	if err != nil {
		t.Fatalf("ForLocation failed: %v", err)
	}

	if c.Location != "Japan" {
		t.Errorf("Location = %q, want Japan", c.Location)
	}
	if c.LoadID != snap.LoadID.String() {
		t.Errorf("LoadID = %q, want %q", c.LoadID, snap.LoadID)
	}
	if len(c.Keys) != 1 || c.Keys[0] != "Pfizer/BioNTech" {
		t.Errorf("Keys = %v, want [Pfizer/BioNTech]", c.Keys)
	}

	// Colours come from the dataset-wide vaccine order: Pfizer first, Moderna second.
	if c.Colors["Pfizer/BioNTech"] != Palette[0] {
		t.Errorf("Pfizer colour = %q, want %q", c.Colors["Pfizer/BioNTech"], Palette[0])
	}
	if c.Colors["Moderna"] != Palette[1] {
		t.Errorf("Moderna colour = %q, want %q", c.Colors["Moderna"], Palette[1])
	}

	// Bins span the dataset-wide domain, Jan..Mar 2021.
	months := c.Months()
	want := []string{"Jan-2021", "Feb-2021", "Mar-2021"}
	if len(months) != len(want) {
		t.Fatalf("Months = %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("Months[%d] = %q, want %q", i, months[i], want[i])
		}
	}
}

func TestService_UsesCache(t *testing.T) {
	snap := testSnapshot()
	mc := newMemCache()
	svc := NewService(staticSource{snap: snap}, mc, nil, nil)

	first, err := svc.ForLocation(context.Background(), "Malta")
	if err != nil {
		t.Fatalf("ForLocation failed: %v", err)
	}
	if mc.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", mc.sets)
	}

	second, err := svc.ForLocation(context.Background(), "Malta")
	if err != nil {
		t.Fatalf("ForLocation failed: %v", err)
	}
	if second != first {
		t.Error("second call should return the cached chart")
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d after hit, want 1", mc.sets)
	}
}
