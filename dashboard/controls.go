package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spektr-org/launchdash/dataset"
	"github.com/spektr-org/launchdash/engine"
)

// ============================================================================
// CONTROLS — Site dropdown and payload range slider
// ============================================================================

// Control and output identifiers shared with the page.
const (
	SiteDropdown  = "site-dropdown"
	PayloadSlider = "payload-slider"

	PieChart     = "success-pie-chart"
	ScatterChart = "success-payload-scatter"
)

// AllSites is the dropdown value meaning "no site filter".
const AllSites = "ALL"

// DropdownOption is one selectable dropdown entry.
type DropdownOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown describes the site selector.
type Dropdown struct {
	ID          string           `json:"id"`
	Placeholder string           `json:"placeholder"`
	Searchable  bool             `json:"searchable"`
	Options     []DropdownOption `json:"options"`
	Value       string           `json:"value"`
}

// Mark is a labelled tick on the slider track.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Slider describes the payload range selector, in kg.
type Slider struct {
	ID    string       `json:"id"`
	Min   float64      `json:"min"`
	Max   float64      `json:"max"`
	Step  float64      `json:"step"`
	Marks []Mark       `json:"marks"`
	Value engine.Range `json:"value"`
}

// Controls is everything the page needs to draw its inputs.
type Controls struct {
	Dropdown Dropdown `json:"dropdown"`
	Slider   Slider   `json:"slider"`
}

// DefaultSlider spans [0, 10000] kg in steps of 1000 with a mark on every step.
func DefaultSlider() Slider {
	s, _ := NewSlider(0, 10000, 1000)
	return s
}

// NewSlider builds a slider over [min, max] with a mark every step. The
// initial value selects the whole track.
func NewSlider(min, max, step float64) (Slider, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return Slider{}, fmt.Errorf("slider bounds [%v, %v] are not increasing", min, max)
	}
	if !(step > 0) {
		return Slider{}, fmt.Errorf("slider step %v must be positive", step)
	}

	var marks []Mark
	for v := min; v <= max; v += step {
		marks = append(marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return Slider{
		ID:    PayloadSlider,
		Min:   min,
		Max:   max,
		Step:  step,
		Marks: marks,
		Value: engine.Range{Low: min, High: max},
	}, nil
}

// siteDropdown lists "All Sites" followed by every site in first-seen order.
func siteDropdown(ds *dataset.Dataset) Dropdown {
	sites := ds.Sites()
	options := make([]DropdownOption, 0, len(sites)+1)
	options = append(options, DropdownOption{Label: "All Sites", Value: AllSites})
	for _, s := range sites {
		options = append(options, DropdownOption{Label: s, Value: s})
	}
	return Dropdown{
		ID:          SiteDropdown,
		Placeholder: "Select a Launch Site here",
		Searchable:  true,
		Options:     options,
		Value:       AllSites,
	}
}

// ============================================================================
// STATE
// ============================================================================

// State is the current value of every control.
type State struct {
	Site    string       `json:"site"`
	Payload engine.Range `json:"payload"`
}

// siteFilter returns the dimension filter for the selected site, nil for all sites.
func (s State) siteFilter() map[string][]string {
	if s.Site == "" || s.Site == AllSites {
		return nil
	}
	return map[string][]string{dataset.KeySite: {s.Site}}
}

// AllSelected reports whether the dropdown is on the "all sites" sentinel.
// An empty selection counts as all sites.
func (s State) AllSelected() bool {
	return s.Site == "" || s.Site == AllSites
}
