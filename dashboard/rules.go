package dashboard

import (
	"fmt"
	"log/slog"

	"github.com/spektr-org/launchdash/dataset"
	"github.com/spektr-org/launchdash/engine"
)

// ============================================================================
// RULES — Pure functions from control state to a chart
// ============================================================================
// A rule names the output it fills and the controls it listens to. Compute
// never mutates the view and never consults another rule.
// ============================================================================

// Rule recomputes one output from the current control state.
type Rule interface {
	Output() string
	Inputs() []string
	Compute(view engine.RecordView, state State) (*engine.Result, error)
}

// Chart titles and axis labels.
const (
	PieTitleAll     = "Total Success Count for All Sites"
	ScatterTitle    = "Payload vs. Success by Booster Version"
	ScatterXAxis    = "Payload Mass (kg)"
	ScatterYAxis    = "Success (1) / Failure (0)"
	pieTitleForSite = "Success Count for %s"
)

// PieTitle returns the pie chart title for a site selection.
func PieTitle(site string) string {
	if site == "" || site == AllSites {
		return PieTitleAll
	}
	return fmt.Sprintf(pieTitleForSite, site)
}

// ----------------------------------------------------------------------------
// Outcome proportion
// ----------------------------------------------------------------------------

// PieRule counts launches per outcome class at the selected site.
type PieRule struct {
	opts []engine.Option
}

func (PieRule) Output() string   { return PieChart }
func (PieRule) Inputs() []string { return []string{SiteDropdown} }

// Compute yields one slice per distinct class, largest first. Equal counts
// keep the order in which the classes first appear in the dataset.
func (r PieRule) Compute(view engine.RecordView, state State) (*engine.Result, error) {
	spec := engine.QuerySpec{
		Intent:      "chart",
		Visualize:   "pie",
		Aggregation: "count",
		GroupBy:     []string{dataset.KeyClass},
		SortBy:      "value_desc",
		Title:       PieTitle(state.Site),
		Filters:     engine.Filters{Dimensions: state.siteFilter()},
	}
	return engine.Execute(spec, view, r.opts...)
}

// ----------------------------------------------------------------------------
// Payload vs outcome
// ----------------------------------------------------------------------------

// ScatterRule plots payload mass against outcome for launches inside the
// selected payload range, one series per booster version category.
type ScatterRule struct {
	opts   []engine.Option
	logger *slog.Logger
}

func (ScatterRule) Output() string   { return ScatterChart }
func (ScatterRule) Inputs() []string { return []string{SiteDropdown, PayloadSlider} }

func (r ScatterRule) Compute(view engine.RecordView, state State) (*engine.Result, error) {
	spec := engine.QuerySpec{
		Intent:    "chart",
		Visualize: "scatter",
		XMeasure:  dataset.KeyPayload,
		SeriesBy:  dataset.KeyBooster,
		Title:     ScatterTitle,
		XAxis:     ScatterXAxis,
		YAxis:     ScatterYAxis,
		Filters: engine.Filters{
			Dimensions: state.siteFilter(),
			Ranges:     map[string]engine.Range{dataset.KeyPayload: state.Payload},
		},
	}
	res, err := engine.Execute(spec, view, r.opts...)
	if err != nil {
		return nil, err
	}
	if r.logger != nil {
		r.logger.Debug("scatter filtered", "site", state.Site,
			"low", state.Payload.Low, "high", state.Payload.High, "rows", res.Matched)
	}
	return res, nil
}
