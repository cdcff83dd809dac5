package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/vaxchart/internal/model"
)

// DateLayout is the format of the date column.
const DateLayout = "2006-01-02"

// Column names the parser requires.
const (
	ColLocation = "location"
	ColDate     = "date"
	ColVaccine  = "vaccine"
	ColTotal    = "total_vaccinations"
)

var requiredColumns = []string{ColLocation, ColDate, ColVaccine, ColTotal}

var (
	// ErrEmpty is returned for a body without a header row.
	ErrEmpty = errors.New("empty dataset")

	// ErrMissingColumn is wrapped by a ParseError when the header lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	errNotFinite = errors.New("not a finite number")
)

// ParseError describes a malformed row or header.
type ParseError struct {
	Line   int    // 1-based line in the CSV body
	Column string // Column name, empty for row-level errors
	Value  string // Offending raw value
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseOptions controls malformed row handling.
type ParseOptions struct {
	// Strict fails on the first malformed row instead of skipping it.
	Strict bool
}

// ParseResult holds parsed records and skip statistics.
type ParseResult struct {
	Records    []model.Record
	Skipped    int
	FirstError error // First skipped row's error, nil when Skipped is 0
}

// Parse reads the dataset CSV.
func Parse(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			if err := res.skip(&ParseError{Line: line, Err: err}, opts); err != nil {
				return nil, err
			}
			continue
		}

		line, _ := cr.FieldPos(0)
		rec, perr := parseRow(row, idx, line)
		if perr != nil {
			if err := res.skip(perr, opts); err != nil {
				return nil, err
			}
			continue
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func (res *ParseResult) skip(perr *ParseError, opts ParseOptions) error {
	if opts.Strict {
		return perr
	}
	if res.FirstError == nil {
		res.FirstError = perr
	}
	res.Skipped++
	return nil
}

// columnIndex maps required column names to their header position.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: ErrMissingColumn}
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int, line int) (model.Record, *ParseError) {
	field := func(col string) (string, *ParseError) {
		i := idx[col]
		if i >= len(row) {
			return "", &ParseError{Line: line, Column: col, Err: fmt.Errorf("row has %d fields", len(row))}
		}
		return strings.TrimSpace(row[i]), nil
	}

	location, perr := field(ColLocation)
	if perr != nil {
		return model.Record{}, perr
	}
	vaccine, perr := field(ColVaccine)
	if perr != nil {
		return model.Record{}, perr
	}
	rawDate, perr := field(ColDate)
	if perr != nil {
		return model.Record{}, perr
	}
	rawTotal, perr := field(ColTotal)
	if perr != nil {
		return model.Record{}, perr
	}

	date, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return model.Record{}, &ParseError{Line: line, Column: ColDate, Value: rawDate, Err: err}
	}
	total, err := strconv.ParseFloat(rawTotal, 64)
	if err == nil && (math.IsNaN(total) || math.IsInf(total, 0)) {
		err = errNotFinite
	}
	if err != nil {
		return model.Record{}, &ParseError{Line: line, Column: ColTotal, Value: rawTotal, Err: err}
	}

	return model.Record{
		Location:          location,
		Date:              date,
		Vaccine:           vaccine,
		TotalVaccinations: total,
	}, nil
}
