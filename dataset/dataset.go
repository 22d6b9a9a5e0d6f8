// Package dataset loads the launch table once and exposes it read-only.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/spektr-org/launchdash/engine"
	"github.com/spektr-org/launchdash/schema"
)

var (
	// ErrMissingColumn means a required column is absent from the dataset header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidRecord means a row has an empty or unparseable required field.
	ErrInvalidRecord = errors.New("invalid launch record")
	// ErrUnsupportedFormat means the dataset file is neither CSV nor SQLite.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Keys under which launch fields are exposed to the engine.
const (
	KeySite    = "launch_site"
	KeyPayload = "payload_mass_kg"
	KeyClass   = "class"
	KeyBooster = "booster_version_category"
)

// UnknownBooster is the booster category reported for records without one.
const UnknownBooster = "Unknown"


// LaunchRecord is one launch attempt.
type LaunchRecord struct {
	Site            string  `json:"launchSite"`
	PayloadMassKg   float64 `json:"payloadMassKg"`
	Class           int     `json:"class"` // 1 = success, 0 = failure
	BoosterCategory string  `json:"boosterVersionCategory"` // may be empty
}

// Validate checks the non-null invariants of a record. The booster category
// is optional.
func (r LaunchRecord) Validate() error {
	switch {
	case r.Site == "":
		return fmt.Errorf("%w: empty launch site", ErrInvalidRecord)
	case math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0):
		return fmt.Errorf("%w: payload mass %v", ErrInvalidRecord, r.PayloadMassKg)
	case r.Class != 0 && r.Class != 1:
		return fmt.Errorf("%w: class %d is not 0 or 1", ErrInvalidRecord, r.Class)
	}
	return nil
}

// Columns maps launch fields to CSV header names.
type Columns struct {
	Site    string `mapstructure:"site"`
	Payload string `mapstructure:"payload"`
	Class   string `mapstructure:"class"`
	Booster string `mapstructure:"booster"`
}

// DefaultColumns returns the headers of the SpaceX launch CSV export.
func DefaultColumns() Columns {
	return Columns{
		Site:    "Launch Site",
		Payload: "Payload Mass (kg)",
		Class:   "class",
		Booster: "Booster Version Category",
	}
}

// CheckSchema verifies that a discovered schema classifies the launch columns
// the way the dashboard uses them: site and booster as dimensions, payload as
// a measure, class present.
func (c Columns) CheckSchema(cfg *schema.Config) []string {
	var problems []string
	if _, ok := cfg.Dimension(c.Site); !ok {
		problems = append(problems, fmt.Sprintf("%q is not a dimension", c.Site))
	}
	if _, ok := cfg.Dimension(c.Booster); !ok {
		problems = append(problems, fmt.Sprintf("%q is not a dimension", c.Booster))
	}
	if _, ok := cfg.Measure(c.Payload); !ok {
		problems = append(problems, fmt.Sprintf("%q is not a measure", c.Payload))
	}
	_, isDim := cfg.Dimension(c.Class)
	_, isMeasure := cfg.Measure(c.Class)
	if !isDim && !isMeasure {
		problems = append(problems, fmt.Sprintf("%q was not discovered", c.Class))
	}
	return problems
}

// ============================================================================
// DATASET — immutable after construction
// ============================================================================

// Dataset is the in-memory launch table. It is never mutated after New,
// so it is safe for concurrent readers.
type Dataset struct {
	records []LaunchRecord
	view    engine.RecordView
	sites   []string
	source  string
}

var launchAdapter = engine.NewDomainAdapter[LaunchRecord]().
	Dimension(KeySite, func(r LaunchRecord) string { return r.Site }).
	Dimension(KeyClass, func(r LaunchRecord) string { return classLabel(r.Class) }).
	Dimension(KeyBooster, boosterCategory).
	Measure(KeyPayload, func(r LaunchRecord) float64 { return r.PayloadMassKg }).
	Measure(KeyClass, func(r LaunchRecord) float64 { return float64(r.Class) })

// New validates records and builds a Dataset. The slice is copied.
func New(records []LaunchRecord, source string) (*Dataset, error) {
	owned := make([]LaunchRecord, len(records))
	copy(owned, records)
	for i, r := range owned {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	view := launchAdapter.Bind(owned)
	return &Dataset{
		records: owned,
		view:    view,
		sites:   engine.UniqueValues(view, KeySite),
		source:  source,
	}, nil
}

// Len returns the number of launch records.
func (d *Dataset) Len() int { return len(d.records) }

// Source describes where the records were loaded from.
func (d *Dataset) Source() string { return d.source }

// Records returns a copy of the launch records in load order.
func (d *Dataset) Records() []LaunchRecord {
	out := make([]LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// View returns the engine view over the records.
func (d *Dataset) View() engine.RecordView { return d.view }

// Sites returns the distinct launch sites in first-seen order.
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// PayloadBounds returns the smallest and largest payload mass. Both are 0 when empty.
func (d *Dataset) PayloadBounds() (low, high float64) {
	return engine.MinMeasure(d.view, KeyPayload), engine.MaxMeasure(d.view, KeyPayload)
}

func boosterCategory(r LaunchRecord) string {
	if r.BoosterCategory == "" {
		return UnknownBooster
	}
	return r.BoosterCategory
}

func classLabel(class int) string {
	if class == 1 {
		return "1"
	}
	return "0"
}
