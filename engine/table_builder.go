package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from QuerySpec + Groups
// ============================================================================
// All functions operate on RecordView: zero-copy access to any data source.
// Column discovery uses view.DimensionKeys() and view.MeasureKeys().
// ============================================================================

// BuildTable produces a TableData from a QuerySpec, groups and the filtered view.
// Aggregation "none" lists one row per record; anything else lists one row per group.
func BuildTable(spec QuerySpec, groups []Group, view RecordView) *TableData {
	if spec.Aggregation == "none" || spec.Aggregation == "" {
		return buildListTable(spec, view)
	}
	return buildAggregatedTable(spec, groups)
}

// ============================================================================
// LIST TABLE — Row per record
// ============================================================================

func buildListTable(spec QuerySpec, view RecordView) *TableData {
	dimKeys := view.DimensionKeys()
	mesKeys := measuresOnly(view.MeasureKeys(), dimKeys)
	columns := make([]Column, 0, len(dimKeys)+len(mesKeys))

	for _, key := range dimKeys {
		columns = append(columns, Column{
			Key:   key,
			Label: LabelForDimension(key),
			Type:  "text",
			Align: "left",
		})
	}
	for _, key := range mesKeys {
		columns = append(columns, Column{
			Key:   key,
			Label: LabelForDimension(key),
			Type:  "number",
			Align: "right",
		})
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		for _, key := range mesKeys {
			row = append(row, formatCell(view.Measure(i, key)))
		}
		rows = append(rows, row)
	}

	table := &TableData{
		Title:   spec.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%s records)", FormatInt(view.Len())),
			Values: map[string]string{},
		},
	}
	if spec.Measure != "" {
		table.Summary.Values[spec.Measure] = FormatNumber(SumMeasure(view, spec.Measure))
	}
	return table
}

// measuresOnly drops measure keys that are also dimensions; the dimension
// column already shows them.
func measuresOnly(mesKeys, dimKeys []string) []string {
	dims := toSet(dimKeys)
	out := make([]string, 0, len(mesKeys))
	for _, key := range mesKeys {
		if !dims[key] {
			out = append(out, key)
		}
	}
	return out
}

// ============================================================================
// AGGREGATED TABLE — Summary rows
// ============================================================================

func buildAggregatedTable(spec QuerySpec, groups []Group) *TableData {
	groupLabel := "Group"
	if len(spec.GroupBy) > 0 {
		groupLabel = LabelForDimension(spec.GroupBy[0])
	}

	columns := []Column{
		{Key: "group", Label: groupLabel, Type: "text", Align: "left"},
		{Key: "value", Label: LabelForAggregation(spec.Aggregation), Type: "number", Align: "right"},
		{Key: "count", Label: "Count", Type: "number", Align: "center"},
	}

	rows := make([][]string, 0, len(groups))
	var totalCount int
	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			formatCell(g.Value),
			fmt.Sprintf("%d", g.Count),
		})
		totalCount += g.Count
	}

	return &TableData{
		Title:   spec.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"count": fmt.Sprintf("%d", totalCount),
			},
		},
	}
}

// formatCell renders whole numbers without decimals, fractional with two.
func formatCell(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
