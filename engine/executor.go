package engine

import (
	"fmt"
	"math"
)

// ============================================================================
// EXECUTOR — Dispatcher
// ============================================================================
// Entry point: Execute(spec, view, opts...)
//
// Pipeline:
//   1. Normalize the QuerySpec
//   2. Apply filters → SubView
//   3. Scatter: one point per record
//      Otherwise: group and aggregate, dispatch to builder (chart / table / text)
//   4. Return Result
//
// Execute is deterministic: the same spec over the same view always yields
// an identical Result. An empty filtered view is a valid, empty result.
// ============================================================================

// Execute runs a QuerySpec against a RecordView and returns a render-ready Result.
//
// Options:
//   - WithDefaultMeasure(key): sets the measure when QuerySpec.Measure is empty
//   - WithPalette(colors):     overrides chart colors
//   - WithLogger(logger):      debug logging destination
func Execute(spec QuerySpec, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	if spec.Measure == "" {
		spec.Measure = cfg.DefaultMeasure
	}

	spec, err := NormalizeQuerySpec(spec)
	if err != nil {
		return nil, err
	}

	// 1. Apply filters → SubView (zero-copy)
	filtered := ApplyFilters(view, spec.Filters)

	cfg.Logger.Debug("engine: filtered records",
		"intent", spec.Intent,
		"visualize", spec.Visualize,
		"matched", filtered.Len(),
		"total", view.Len())

	result := &Result{
		Success: true,
		Title:   spec.Title,
		Matched: filtered.Len(),
	}

	// 2. Scatter bypasses grouping
	if spec.Intent == "chart" && spec.Visualize == "scatter" {
		result.Type = "chart"
		result.ChartConfig = BuildScatter(spec, filtered, cfg.Palette)
		result.Reply = buildDefaultReply(filtered, "")
		return result, nil
	}

	// 3. Group and aggregate
	groups := GroupAndAggregate(filtered, spec.GroupBy, spec.Measure, spec.Aggregation, spec.SortBy, spec.Limit)

	// 4. Dispatch to builder
	switch spec.Intent {
	case "chart":
		result.Type = "chart"
		result.ChartConfig = BuildChart(spec, groups, cfg.Palette)
	case "table":
		result.Type = "table"
		result.TableData = BuildTable(spec, groups, filtered)
	default:
		result.Type = "text"
		result.Data = BuildText(spec, filtered)
	}

	result.Reply = buildDefaultReply(filtered, "")
	return result, nil
}

// ============================================================================
// QUERYSPEC NORMALIZATION
// ============================================================================

// NormalizeQuerySpec applies deterministic rules to make a QuerySpec executable.
// It returns ErrInvalidSpec for specs that no rule can repair.
func NormalizeQuerySpec(spec QuerySpec) (QuerySpec, error) {
	switch spec.Intent {
	case "":
		spec.Intent = "chart"
	case "chart", "table", "text":
	default:
		return spec, fmt.Errorf("%w: unknown intent %q", ErrInvalidSpec, spec.Intent)
	}

	for measure, r := range spec.Filters.Ranges {
		if math.IsNaN(r.Low) || math.IsNaN(r.High) {
			return spec, fmt.Errorf("%w: range on %q is NaN", ErrInvalidSpec, measure)
		}
	}

	if spec.Visualize == "table" {
		spec.Intent = "table"
	}

	// Scatter needs both coordinates
	if spec.Visualize == "scatter" {
		if spec.XMeasure == "" || spec.Measure == "" {
			return spec, fmt.Errorf("%w: scatter requires xMeasure and measure", ErrInvalidSpec)
		}
		return spec, nil
	}

	// Category charts must have a groupBy dimension
	if spec.Intent == "chart" && len(spec.GroupBy) == 0 {
		spec.Intent = "text"
		spec.Visualize = "text"
	}

	if spec.Aggregation == "" && spec.Intent != "table" {
		spec.Aggregation = "count"
	}

	return spec, nil
}
