package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ============================================================================
// CSV PARSER — Launch rows from a CSV export
// ============================================================================
// Strict: every row must carry a site, payload mass and class. The booster
// category may be blank.
// A bad row fails the whole load; the dashboard never starts on partial data.
// ============================================================================

// ParseCSV reads launch records from r using cols to locate the columns.
// Columns not named in cols are ignored.
func ParseCSV(r io.Reader, cols Columns) ([]LaunchRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	idx, err := cols.locate(headers)
	if err != nil {
		return nil, err
	}

	var records []LaunchRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// columnIndex holds header positions for the four launch columns.
type columnIndex struct {
	site, payload, class, booster int
}

func (c Columns) locate(headers []string) (columnIndex, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		pos[strings.TrimSpace(h)] = i
	}

	find := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.site, err = find(c.Site); err != nil {
		return idx, err
	}
	if idx.payload, err = find(c.Payload); err != nil {
		return idx, err
	}
	if idx.class, err = find(c.Class); err != nil {
		return idx, err
	}
	if idx.booster, err = find(c.Booster); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex) (LaunchRecord, error) {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := LaunchRecord{
		Site:            field(idx.site),
		BoosterCategory: field(idx.booster),
	}
	if rec.Site == "" {
		return rec, fmt.Errorf("%w: empty launch site", ErrInvalidRecord)
	}

	payload, err := strconv.ParseFloat(field(idx.payload), 64)
	if err != nil {
		return rec, fmt.Errorf("%w: payload mass %q: %v", ErrInvalidRecord, field(idx.payload), err)
	}
	rec.PayloadMassKg = payload

	class, err := parseClass(field(idx.class))
	if err != nil {
		return rec, err
	}
	rec.Class = class

	return rec, rec.Validate()
}

// parseClass accepts "0"/"1" and their float spellings ("1.0").
func parseClass(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: class %q: %v", ErrInvalidRecord, s, err)
	}
	switch f {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: class %q is not 0 or 1", ErrInvalidRecord, s)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
