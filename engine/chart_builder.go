package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from QuerySpec + Groups / Views
// ============================================================================
// Category charts (pie, bar) come from aggregated groups.
// Scatter charts come straight from the filtered view, one point per record.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// BuildChart produces a category ChartConfig from a QuerySpec and aggregated groups.
// Zero groups yields a chart with one empty series, never nil.
func BuildChart(spec QuerySpec, groups []Group, palette []string) *ChartConfig {
	chartType := spec.Visualize
	if chartType == "" {
		chartType = "bar"
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		ShowLegend: true,
		ShowGrid:   chartType != "pie",
	}

	if chartType != "pie" {
		config.XAxis = spec.XAxis
		if config.XAxis == "" && len(spec.GroupBy) > 0 {
			config.XAxis = LabelForDimension(spec.GroupBy[0])
		}
		config.YAxis = spec.YAxis
		if config.YAxis == "" {
			config.YAxis = LabelForAggregation(spec.Aggregation)
		}
	}

	config.Series = buildSingleSeries(groups, spec.Title)
	if chartType == "pie" {
		// one color per slice
		config.Colors = assignColors(len(groups), palette)
	} else {
		config.Colors = assignColors(len(config.Series), palette)
	}
	return config
}

// BuildScatter produces a scatter ChartConfig with one point per record.
// Points are split into series by spec.SeriesBy, in first-seen order; each
// point carries X = spec.XMeasure, Value = spec.Measure, and the series key as Label.
func BuildScatter(spec QuerySpec, view RecordView, palette []string) *ChartConfig {
	config := &ChartConfig{
		ChartType:  "scatter",
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		Series:     []ChartSeries{},
		ShowLegend: spec.SeriesBy != "",
		ShowGrid:   true,
	}
	if config.XAxis == "" {
		config.XAxis = LabelForDimension(spec.XMeasure)
	}
	if config.YAxis == "" {
		config.YAxis = LabelForDimension(spec.Measure)
	}

	index := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		key := ""
		if spec.SeriesBy != "" {
			key = view.Dimension(i, spec.SeriesBy)
		}
		pos, ok := index[key]
		if !ok {
			pos = len(config.Series)
			index[key] = pos
			name := key
			if name == "" {
				name = spec.Title
			}
			config.Series = append(config.Series, ChartSeries{
				Name:  name,
				Data:  []ChartPoint{},
				Color: colorAt(pos, palette),
			})
		}
		config.Series[pos].Data = append(config.Series[pos].Data, ChartPoint{
			Label: key,
			X:     view.Measure(i, spec.XMeasure),
			Value: view.Measure(i, spec.Measure),
		})
	}

	config.Colors = assignColors(len(config.Series), palette)
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
		})
	}

	return []ChartSeries{{
		Name: seriesName,
		Data: points,
	}}
}

func assignColors(count int, palette []string) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = colorAt(i, palette)
	}
	return colors
}

func colorAt(i int, palette []string) string {
	if len(palette) == 0 {
		palette = defaultColors
	}
	return palette[i%len(palette)]
}
