package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/launchdash/engine"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func pieResult() *engine.Result {
	return &engine.Result{
		Success: true,
		Type:    "chart",
		Title:   "Success Count for A",
		Matched: 3,
		ChartConfig: &engine.ChartConfig{
			ChartType: "pie",
			Title:     "Success Count for A",
			Series: []engine.ChartSeries{{
				Name: "Success Count for A",
				Data: []engine.ChartPoint{{Label: "1", Value: 2}, {Label: "0", Value: 1}},
			}},
			Colors:     []string{"#636EFA", "#EF553B"},
			ShowLegend: true,
		},
	}
}

func scatterResult() *engine.Result {
	return &engine.Result{
		Success: true,
		Type:    "chart",
		Matched: 3,
		ChartConfig: &engine.ChartConfig{
			ChartType: "scatter",
			Title:     "Payload vs. Success by Booster Version",
			XAxis:     "Payload Mass (kg)",
			YAxis:     "Success (1) / Failure (0)",
			Series: []engine.ChartSeries{
				{Name: "v1.0", Data: []engine.ChartPoint{{Label: "v1.0", X: 0, Value: 1}}},
				{Name: "FT", Data: []engine.ChartPoint{
					{Label: "FT", X: 5000, Value: 0},
					{Label: "FT", X: 9600, Value: 1},
				}},
			},
		},
	}
}

func TestPieCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, pieResult(), CSV))
	newGoldie(t).Assert(t, "pie_csv", buf.Bytes())
}

func TestScatterCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, scatterResult(), CSV))
	newGoldie(t).Assert(t, "scatter_csv", buf.Bytes())
}

func TestTableCSV(t *testing.T) {
	result := &engine.Result{
		Type: "table",
		TableData: &engine.TableData{
			Columns: []engine.Column{
				{Key: "launch_site", Label: "Launch Site"},
				{Key: "class", Label: "Class"},
				{Key: "booster_version_category", Label: "Booster Version Category"},
				{Key: "payload_mass_kg", Label: "Payload Mass Kg"},
			},
			Rows: [][]string{
				{"A", "1", "v1.0", "0"},
				{"KSC LC-39A, pad", "1", "FT", "9600.50"},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))
	newGoldie(t).Assert(t, "launches_csv", buf.Bytes())
}

func TestTextCSV(t *testing.T) {
	result := &engine.Result{
		Type:  "text",
		Reply: "Found 3 records.",
		Data:  &engine.TextData{Value: "0.67", RawValue: 0.6667, Count: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))
	newGoldie(t).Assert(t, "text_csv", buf.Bytes())
}

func TestEmptyPieCSV(t *testing.T) {
	res := pieResult()
	res.ChartConfig.Series[0].Data = []engine.ChartPoint{}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))
	assert.Equal(t, "Label,Value\n", buf.String())
}

func TestJSON(t *testing.T) {
	var compact, pretty bytes.Buffer
	require.NoError(t, Write(&compact, pieResult(), JSON))
	require.NoError(t, Write(&pretty, pieResult(), Pretty))

	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Greater(t, strings.Count(pretty.String(), "\n"), 1)

	var decoded engine.Result
	require.NoError(t, json.Unmarshal(compact.Bytes(), &decoded))
	assert.Equal(t, *pieResult(), decoded)
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, scatterResult(), SVG))
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))
	assert.Equal(t, 3, strings.Count(buf.String(), "<circle"))

	err := Write(&buf, &engine.Result{Type: "text"}, SVG)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, pieResult(), Format("xml")), ErrUnknownFormat)
}
