// Package export writes engine results to files and streams.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/launchdash/engine"
	"github.com/spektr-org/launchdash/render"
)

// Format selects the output encoding.
type Format string

const (
	JSON   Format = "json"   // compact JSON, one line
	Pretty Format = "pretty" // indented JSON
	CSV    Format = "csv"    // chart or table data, ready for a spreadsheet
	SVG    Format = "svg"    // rendered chart
)

// ErrUnknownFormat is returned by ParseFormat and Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats in help order.
func Formats() []Format { return []Format{JSON, Pretty, CSV, SVG} }

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write encodes result to w in the given format.
func Write(w io.Writer, result *engine.Result, format Format) error {
	switch format {
	case JSON, Pretty:
		return WriteJSON(w, result, format)
	case CSV:
		return WriteCSV(w, result)
	case SVG:
		if result == nil || result.ChartConfig == nil {
			return fmt.Errorf("%w: svg needs a chart result", ErrUnknownFormat)
		}
		out, err := render.SVG(result.ChartConfig)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

// WriteJSON writes any value as JSON followed by a newline.
func WriteJSON(w io.Writer, v any, format Format) error {
	var out []byte
	var err error

	if format == Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

// WriteCSV writes chart data, table rows or a one-line text summary, in that
// order of preference.
func WriteCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	switch {
	case result == nil:
		cw.Write([]string{"Result", "No data"})
	case result.ChartConfig != nil:
		writeChartCSV(cw, result.ChartConfig)
	case result.TableData != nil:
		writeTableCSV(cw, result.TableData)
	default:
		cw.Write([]string{"Summary", "Value"})
		value := ""
		if result.Data != nil {
			value = result.Data.Value
		}
		reply := result.Reply
		if reply == "" {
			reply = "No data"
		}
		cw.Write([]string{reply, value})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Scatter → one row per point
	if chart.ChartType == "scatter" {
		cw.Write([]string{"Series", xLabel, yLabel})
		for _, s := range chart.Series {
			for _, d := range s.Data {
				cw.Write([]string{s.Name, fmtNum(d.X), fmtNum(d.Value)})
			}
		}
		return
	}

	// Single series → two columns
	if len(chart.Series) <= 1 {
		cw.Write([]string{xLabel, yLabel})
		if len(chart.Series) == 1 {
			for _, d := range chart.Series[0].Data {
				cw.Write([]string{d.Label, fmtNum(d.Value)})
			}
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}
}

// fmtNum writes whole numbers without decimals, fractional with two.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
