package engine

import "errors"

// ============================================================================
// ENGINE TYPES — Records, QuerySpec, Render-ready Results
// ============================================================================
// Records are generic dimension/measure rows. Consumers with typed structs bind
// them through DomainAdapter instead of copying into Records.
// ============================================================================

// ErrInvalidSpec is returned by Execute when a QuerySpec cannot be evaluated.
var ErrInvalidSpec = errors.New("invalid query spec")

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// QUERYSPEC — What the engine should compute
// ============================================================================

// QuerySpec defines what the engine should compute.
type QuerySpec struct {
	Intent      string   `json:"intent"`             // "chart", "table", "text"
	Filters     Filters  `json:"filters"`            // Which records to include
	Aggregation string   `json:"aggregation"`        // "count", "sum", "avg", "max", "min", "none"
	Measure     string   `json:"measure"`            // Measure to aggregate; y value for scatter
	XMeasure    string   `json:"xMeasure,omitempty"` // x value for scatter
	GroupBy     []string `json:"groupBy"`            // Dimension keys
	SeriesBy    string   `json:"seriesBy,omitempty"` // Scatter color dimension
	SortBy      string   `json:"sortBy"`             // "value_desc", "value_asc", "label_asc", "label_desc"
	Limit       int      `json:"limit"`              // 0 = all
	Visualize   string   `json:"visualize"`          // "pie", "bar", "scatter", "table", "text"
	Title       string   `json:"title"`
	XAxis       string   `json:"xAxis,omitempty"` // Axis label overrides
	YAxis       string   `json:"yAxis,omitempty"`
}

// Filters define which records to include.
// Dimensions: keys are dimension names, values are allowed values.
// OR within a dimension, AND across dimensions. Empty = all.
// Ranges: keys are measure names, records pass when Low <= value <= High.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
}

// Range is a closed numeric interval.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies in [Low, High].
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	if len(f.Ranges) > 0 {
		return false
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "chart", "table", "text"
	Reply   string `json:"reply"`
	Title   string `json:"title"`

	// Exactly one of these is populated based on Type:
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	Data        *TextData    `json:"data,omitempty"`

	// Number of records that survived filtering.
	Matched int `json:"matched"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig, TableData, or TextData.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// PointCount returns the total number of points across all series.
func (c *ChartConfig) PointCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, s := range c.Series {
		n += len(s.Data)
	}
	return n
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
// Category charts use Label/Value; scatter charts use X/Value and keep
// the source label for hover text.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	X     float64 `json:"x"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is structured data for simple answers (type="text").
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
}
