package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — Produces TextData for single-number answers
// ============================================================================

// BuildText produces text response data from filtered records.
// Sum and Mean always describe spec.Measure; Value is the formatted aggregation.
func BuildText(spec QuerySpec, view RecordView) *TextData {
	if view.Len() == 0 {
		return &TextData{Value: "0"}
	}

	sum := SumMeasure(view, spec.Measure)
	mean := AvgMeasure(view, spec.Measure)

	var value float64
	switch spec.Aggregation {
	case "sum":
		value = sum
	case "avg":
		value = mean
	case "max":
		value = MaxMeasure(view, spec.Measure)
	case "min":
		value = MinMeasure(view, spec.Measure)
	default:
		value = float64(view.Len())
	}

	return &TextData{
		Value:    FormatNumber(RoundTo2(value)),
		RawValue: value,
		Count:    view.Len(),
		Sum:      sum,
		Mean:     mean,
	}
}

// ============================================================================
// REPLY
// ============================================================================

// buildDefaultReply describes the filtered view in one sentence.
func buildDefaultReply(view RecordView, measure string) string {
	if view.Len() == 0 {
		return "No matching records found."
	}
	if measure == "" {
		return fmt.Sprintf("Found %s records.", FormatInt(view.Len()))
	}
	return fmt.Sprintf("Found %s records totalling %s %s.",
		FormatInt(view.Len()), FormatNumber(RoundTo2(SumMeasure(view, measure))), LabelForDimension(measure))
}
