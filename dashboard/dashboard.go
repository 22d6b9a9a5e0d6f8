// Package dashboard wires the launch dataset to its controls and the two
// chart rules, and re-evaluates only the rules a control change affects.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/spektr-org/launchdash/dataset"
	"github.com/spektr-org/launchdash/engine"
)

var (
	// ErrUnknownControl is returned by Dispatch for a control no rule listens to.
	ErrUnknownControl = errors.New("unknown control")
	// ErrInvalidState is returned for a state the rules cannot evaluate.
	ErrInvalidState = errors.New("invalid control state")
)

// Update is the recomputed content of one output.
type Update struct {
	Output  string              `json:"output"`
	Title   string              `json:"title"`
	Chart   *engine.ChartConfig `json:"chart"`
	Matched int                 `json:"matched"`
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger used for rule evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPalette overrides chart colors.
func WithPalette(colors []string) Option {
	return func(d *Dashboard) {
		d.palette = colors
	}
}

// Dashboard holds the dataset, the control definitions and the rule set.
// All methods are safe for concurrent use: the dataset is immutable and
// rules keep no state between calls.
type Dashboard struct {
	ds       *dataset.Dataset
	controls Controls
	rules    []Rule
	logger   *slog.Logger
	palette  []string

	// engineOpts make the launch outcome the default measure.
	engineOpts []engine.Option
}

// New builds a dashboard over ds with the given payload slider.
func New(ds *dataset.Dataset, slider Slider, opts ...Option) *Dashboard {
	d := &Dashboard{
		ds:     ds,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	slider.ID = PayloadSlider
	if ds.Len() > 0 {
		if low, high := ds.PayloadBounds(); low < slider.Min || high > slider.Max {
			d.logger.Warn("payloads outside slider range",
				"min", low, "max", high, "sliderMin", slider.Min, "sliderMax", slider.Max)
		}
	}
	d.controls = Controls{
		Dropdown: siteDropdown(ds),
		Slider:   slider,
	}

	d.engineOpts = []engine.Option{
		engine.WithLogger(d.logger),
		engine.WithPalette(d.palette),
		engine.WithDefaultMeasure(dataset.KeyClass),
	}
	d.rules = []Rule{
		PieRule{opts: d.engineOpts},
		ScatterRule{opts: d.engineOpts, logger: d.logger},
	}
	return d
}

// Controls returns the control definitions for the page.
func (d *Dashboard) Controls() Controls {
	c := d.controls
	c.Dropdown.Options = append([]DropdownOption(nil), c.Dropdown.Options...)
	c.Slider.Marks = append([]Mark(nil), c.Slider.Marks...)
	return c
}

// DefaultState is the state of a freshly loaded page.
func (d *Dashboard) DefaultState() State {
	return State{Site: d.controls.Dropdown.Value, Payload: d.controls.Slider.Value}
}

// Dataset returns the dataset the dashboard reads.
func (d *Dashboard) Dataset() *dataset.Dataset { return d.ds }

// Rules returns the registered rules in evaluation order.
func (d *Dashboard) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Dispatch re-evaluates every rule that lists changed among its inputs, in
// registration order.
func (d *Dashboard) Dispatch(state State, changed string) ([]Update, error) {
	var affected []Rule
	for _, r := range d.rules {
		if listensTo(r, changed) {
			affected = append(affected, r)
		}
	}
	if len(affected) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, changed)
	}
	return d.evaluate(affected, state)
}

// Render evaluates every rule, as on first page load.
func (d *Dashboard) Render(state State) ([]Update, error) {
	return d.evaluate(d.rules, state)
}

// Evaluate runs the single rule filling output.
func (d *Dashboard) Evaluate(output string, state State) (Update, error) {
	r, err := d.rule(output)
	if err != nil {
		return Update{}, err
	}
	updates, err := d.evaluate([]Rule{r}, state)
	if err != nil {
		return Update{}, err
	}
	return updates[0], nil
}

// Result runs the single rule filling output and returns the engine result
// unchanged, for exporters that need more than the chart.
func (d *Dashboard) Result(output string, state State) (*engine.Result, error) {
	r, err := d.rule(output)
	if err != nil {
		return nil, err
	}
	if err := validateState(state); err != nil {
		return nil, err
	}
	return r.Compute(d.ds.View(), state)
}

func (d *Dashboard) rule(output string) (Rule, error) {
	for _, r := range d.rules {
		if r.Output() == output {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: output %q", ErrUnknownControl, output)
}

func (d *Dashboard) evaluate(rules []Rule, state State) ([]Update, error) {
	if err := validateState(state); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(rules))
	for _, r := range rules {
		res, err := r.Compute(d.ds.View(), state)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", r.Output(), err)
		}
		updates = append(updates, Update{
			Output:  r.Output(),
			Title:   res.Title,
			Chart:   res.ChartConfig,
			Matched: res.Matched,
		})
	}
	return updates, nil
}

func listensTo(r Rule, control string) bool {
	for _, in := range r.Inputs() {
		if in == control {
			return true
		}
	}
	return false
}

func validateState(s State) error {
	if math.IsNaN(s.Payload.Low) || math.IsNaN(s.Payload.High) {
		return fmt.Errorf("%w: payload range is NaN", ErrInvalidState)
	}
	return nil
}

// ============================================================================
// LAUNCH TABLE AND SUMMARY
// ============================================================================

// Launches lists the launches the scatter rule would plot for state.
func (d *Dashboard) Launches(state State) (*engine.TableData, error) {
	if err := validateState(state); err != nil {
		return nil, err
	}
	spec := engine.QuerySpec{
		Intent:      "table",
		Aggregation: "none",
		Measure:     dataset.KeyPayload,
		Title:       "Launches",
		Filters: engine.Filters{
			Dimensions: state.siteFilter(),
			Ranges:     map[string]engine.Range{dataset.KeyPayload: state.Payload},
		},
	}
	res, err := engine.Execute(spec, d.ds.View(), d.engineOpts...)
	if err != nil {
		return nil, err
	}
	return res.TableData, nil
}

// Summary aggregates launch outcomes for a site selection.
type Summary struct {
	Site        string  `json:"site"`
	Launches    int     `json:"launches"`
	Successes   int     `json:"successes"`
	SuccessRate float64 `json:"successRate"`
	Display     string  `json:"display"`
}

// Summarize counts launches and successes at the selected site. The payload
// range is ignored, matching the pie chart.
func (d *Dashboard) Summarize(state State) (Summary, error) {
	spec := engine.QuerySpec{
		Intent:      "text",
		Aggregation: "avg",
		Filters:     engine.Filters{Dimensions: state.siteFilter()},
	}
	res, err := engine.Execute(spec, d.ds.View(), d.engineOpts...)
	if err != nil {
		return Summary{}, err
	}

	site := state.Site
	if state.AllSelected() {
		site = AllSites
	}
	out := Summary{
		Site:        site,
		Launches:    res.Data.Count,
		Successes:   int(res.Data.Sum),
		SuccessRate: engine.RoundTo2(res.Data.Mean),
	}
	out.Display = fmt.Sprintf("%s of %s launches succeeded (%s%%)",
		engine.FormatInt(out.Successes), engine.FormatInt(out.Launches),
		engine.FormatNumber(engine.RoundTo2(res.Data.Mean*100)))
	return out, nil
}
