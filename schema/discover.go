package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Column Classification
// ============================================================================
// Inspects raw CSV and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Sample values → detect type (numeric, bool, string)
//   2. Type + cardinality → classify role (dimension, measure, skip)
//   3. Detect units from header hints ("(kg)", "mass")
//   4. Generate synthetic measure (record_count)
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	// 2. Read sample rows
	var rows [][]string
	limit := opt.SampleSize
	if limit <= 0 {
		limit = math.MaxInt
	}

	for len(rows) < limit {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	totalRows := len(rows)
	if totalRows == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	// 3. Analyze each column
	recoverSet := make(map[string]bool)
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	config := &Config{
		Name:           opt.Name,
		Version:        "1.0",
		DiscoveredFrom: "CSV",
		RowCount:       totalRows,
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for i, header := range headers {
		col := analyzeColumn(header, i, rows, totalRows)
		if strings.TrimSpace(header) == "" {
			// pandas index column
			col.role = roleSkipped
			col.skipReason = "Unnamed index column"
			col.recoverable = false
		}
		recovered := recoverSet[strings.ToLower(col.header)] || recoverSet[col.key]

		switch {
		case col.role == roleDimension:
			config.Dimensions = append(config.Dimensions, col.toDimension())
		case col.role == roleMeasure:
			config.Measures = append(config.Measures, col.toMeasure())
		case recovered:
			config.Dimensions = append(config.Dimensions, col.toDimension())
		default:
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
	}

	// 4. Synthetic record_count measure
	config.Measures = append(config.Measures, MeasureMeta{
		Key:                "record_count",
		DisplayName:        "Record Count",
		IsSynthetic:        true,
		Aggregations:       []string{"count"},
		DefaultAggregation: "count",
	})

	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeBool
)

type columnAnalysis struct {
	header      string
	key         string
	colType     columnType
	role        columnRole
	skipReason  string
	recoverable bool

	uniqueCount     int
	nullCount       int
	sampleVals      []string
	hasDecimals     bool
	min, max        float64
	cardinalityHint string
}

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(header string, index int, rows [][]string, totalRows int) columnAnalysis {
	col := columnAnalysis{
		header: strings.TrimSpace(header),
		key:    toSnakeCase(header),
		min:    math.Inf(1),
		max:    math.Inf(-1),
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)

	for _, row := range rows {
		if index >= len(row) {
			col.nullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		if isNull(val) {
			col.nullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)
	col.colType = detectType(values)

	if col.colType == typeNumeric || col.colType == typeBool {
		for _, v := range values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			col.min = math.Min(col.min, f)
			col.max = math.Max(col.max, f)
			if strings.Contains(v, ".") {
				col.hasDecimals = true
			}
		}
	}

	col.classifyRole(totalRows)

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

// classifyRole determines dimension vs measure vs skip.
func (col *columnAnalysis) classifyRole(totalRows int) {
	switch col.colType {

	case typeNumeric:
		if col.uniqueCount == totalRows && totalRows > 10 && !col.hasDecimals && !hasUnitHint(col.header) {
			col.role = roleSkipped
			col.skipReason = "Unique per row, likely an ID column"
			col.recoverable = false
			return
		}
		if col.hasDecimals || hasUnitHint(col.header) {
			col.role = roleMeasure
			return
		}
		// Few distinct integers relative to rows → coded dimension
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = roleDimension
			return
		}
		col.role = roleMeasure

	case typeBool:
		col.role = roleDimension

	case typeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.role = roleSkipped
			col.skipReason = "Unique per row, likely an identifier"
			col.recoverable = true
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values), not useful for grouping", col.uniqueCount)
			col.recoverable = true
			return
		}
		col.role = roleDimension
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for numeric/bool.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	boolCount := 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	if boolCount >= threshold {
		return typeBool
	}
	if numCount >= threshold {
		return typeNumeric
	}
	return typeString
}

func isNumeric(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "yes", "no", "1", "0":
		return true
	}
	return false
}

func isNull(s string) bool {
	switch s {
	case "", "null", "NULL", "N/A", "n/a", "NaN", "nan":
		return true
	}
	return false
}

// ============================================================================
// UNIT DETECTION
// ============================================================================

var unitHints = []struct {
	needle string
	unit   string
}{
	{"(kg)", "kg"},
	{"mass", "kg"},
	{"(km)", "km"},
	{"(s)", "seconds"},
}

func hasUnitHint(header string) bool {
	return detectUnit(header) != ""
}

func detectUnit(header string) string {
	h := strings.ToLower(header)
	for _, hint := range unitHints {
		if strings.Contains(h, hint.needle) {
			return hint.unit
		}
	}
	return ""
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

func (col *columnAnalysis) toDimension() DimensionMeta {
	return DimensionMeta{
		Key:             col.key,
		Column:          col.header,
		DisplayName:     toDisplayName(col.header),
		SampleValues:    col.sampleVals,
		IsBoolean:       col.colType == typeBool,
		CardinalityHint: col.cardinalityHint,
	}
}

func (col *columnAnalysis) toMeasure() MeasureMeta {
	if math.IsInf(col.min, 0) || math.IsInf(col.max, 0) {
		col.min, col.max = 0, 0
	}
	return MeasureMeta{
		Key:                col.key,
		Column:             col.header,
		DisplayName:        toDisplayName(col.header),
		Unit:               detectUnit(col.header),
		Min:                col.min,
		Max:                col.max,
		Aggregations:       []string{"sum", "avg", "min", "max", "count"},
		DefaultAggregation: "sum",
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ToKey converts a column header into the key used for dimensions and measures.
// "Payload Mass (kg)" → "payload_mass_kg", "Launch Site" → "launch_site"
func ToKey(header string) string {
	return toSnakeCase(header)
}

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
// Punctuation is dropped.
func toSnakeCase(s string) string {
	s = strings.TrimSpace(s)
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '_':
			result.WriteRune('_')
		}
	}

	s = result.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "Launch Site" → "Launch Site"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
