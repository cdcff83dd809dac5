package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rickgao/vaxchart/internal/model"
)

func TestKey(t *testing.T) {
	got := Key("0b5e", "Japan")
	if got != "vaxchart:chart:0b5e:Japan" {
		t.Errorf("Key() = %q, want %q", got, "vaxchart:chart:0b5e:Japan")
	}
}

func TestChartCache_Disabled(t *testing.T) {
	c := New(nil, time.Minute, nil)

	if c.Enabled() {
		t.Error("Enabled() = true, want false for nil client")
	}
	if _, ok := c.Get(context.Background(), "id", "Japan"); ok {
		t.Error("Get() on disabled cache should miss")
	}
	// Must not panic.
	c.Set(context.Background(), &model.Chart{Location: "Japan"})
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}

	var nilCache *ChartCache
	if nilCache.Enabled() {
		t.Error("nil *ChartCache should report disabled")
	}
}

func TestEntry_RoundTrip(t *testing.T) {
	chart := &model.Chart{
		Location: "Japan",
		LoadID:   "abc",
		Keys:     []string{"Moderna"},
		Bins: []model.Bin{{
			Month:  "Jun-2021",
			Start:  time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
			Totals: map[string]float64{"Moderna": 1234},
		}},
		Series: []model.Series{{Key: "Moderna", Points: []model.Interval{{0, 1234}}}},
		Colors: map[string]string{"Moderna": "gold"},
	}

	data, err := json.Marshal(newEntry(chart))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := e.toChart()

	if got.Location != "Japan" || got.LoadID != "abc" {
		t.Errorf("identity = %q/%q, want Japan/abc", got.Location, got.LoadID)
	}
	if !got.Bins[0].Start.Equal(chart.Bins[0].Start) {
		t.Errorf("Start = %v, want %v", got.Bins[0].Start, chart.Bins[0].Start)
	}
	if got.Bins[0].Value("Moderna") != 1234 {
		t.Errorf("Moderna = %v, want 1234", got.Bins[0].Value("Moderna"))
	}
	if got.Series[0].Points[0] != (model.Interval{0, 1234}) {
		t.Errorf("Points[0] = %v, want [0 1234]", got.Series[0].Points[0])
	}
	if got.Colors["Moderna"] != "gold" {
		t.Errorf("Colors[Moderna] = %q, want gold", got.Colors["Moderna"])
	}
}
