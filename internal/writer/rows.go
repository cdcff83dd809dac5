package writer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/vaxchart/internal/model"
)

// RowsFromChart flattens a chart into one row per (month, vaccine), including
// months where the vaccine had no doses. Month is the first instant of the
// bin's calendar month, so a first bin starting mid-month still keys on the
// month.
func RowsFromChart(c *model.Chart) ([]MonthlyRow, error) {
	loadID, err := uuid.Parse(c.LoadID)
	if err != nil {
		return nil, fmt.Errorf("parse load id %q: %w", c.LoadID, err)
	}

	rows := make([]MonthlyRow, 0, len(c.Bins)*len(c.Keys))
	for _, b := range c.Bins {
		month := monthStart(b.Start)
		for _, k := range c.Keys {
			rows = append(rows, MonthlyRow{
				LoadID:   loadID,
				Location: c.Location,
				Vaccine:  k,
				Month:    month,
				Doses:    b.Value(k),
			})
		}
	}
	return rows, nil
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
