package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// SCHEMA — Describes the shape of a dataset
// ============================================================================
// Auto-discovered from CSV headers and values. The dataset loader checks the
// launch columns against it; `launchdash schema` prints it for inspection.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	RowCount       int    `json:"rowCount" yaml:"rowCount"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key" yaml:"key"`
	Column          string   `json:"column" yaml:"column"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	SampleValues    []string `json:"sampleValues" yaml:"sampleValues"`
	IsBoolean       bool     `json:"isBoolean,omitempty" yaml:"isBoolean,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric field used for aggregation or ranges.
type MeasureMeta struct {
	Key                string   `json:"key" yaml:"key"`
	Column             string   `json:"column,omitempty" yaml:"column,omitempty"`
	DisplayName        string   `json:"displayName" yaml:"displayName"`
	Unit               string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	IsSynthetic        bool     `json:"isSynthetic,omitempty" yaml:"isSynthetic,omitempty"`
	Min                float64  `json:"min" yaml:"min"`
	Max                float64  `json:"max" yaml:"max"`
	Aggregations       []string `json:"aggregations,omitempty" yaml:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"`
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Dimension looks up a dimension by its source column header.
func (c Config) Dimension(column string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Column == column {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Measure looks up a measure by its source column header.
func (c Config) Measure(column string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Column == column && !m.IsSynthetic {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// ToYAML renders the schema as YAML.
func (c Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling schema to yaml: %w", err)
	}
	return out, nil
}
