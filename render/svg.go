// Package render draws engine chart configs as standalone SVG documents.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/beevik/etree"

	"github.com/spektr-org/launchdash/engine"
)

// ErrUnsupportedChart is returned when a chart type has no SVG renderer.
var ErrUnsupportedChart = errors.New("unsupported chart type")

// Canvas size and plot margins, in SVG user units.
const (
	Width  = 720
	Height = 420

	marginTop    = 50
	marginRight  = 170
	marginBottom = 60
	marginLeft   = 70

	noDataText = "No data"
)

// SVG renders chart according to its ChartType.
func SVG(chart *engine.ChartConfig) ([]byte, error) {
	if chart == nil {
		return nil, fmt.Errorf("%w: nil chart", ErrUnsupportedChart)
	}
	switch chart.ChartType {
	case "pie":
		return PieSVG(chart)
	case "scatter":
		return ScatterSVG(chart)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedChart, chart.ChartType)
}

// newCanvas starts an SVG document with a white background and a centered title.
func newCanvas(title string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("width", strconv.Itoa(Width))
	svg.CreateAttr("height", strconv.Itoa(Height))
	svg.CreateAttr("viewBox", fmt.Sprintf("0 0 %d %d", Width, Height))
	svg.CreateAttr("font-family", "sans-serif")

	bg := svg.CreateElement("rect")
	bg.CreateAttr("width", "100%")
	bg.CreateAttr("height", "100%")
	bg.CreateAttr("fill", "#ffffff")

	t := svg.CreateElement("text")
	t.CreateAttr("class", "title")
	t.CreateAttr("x", num(Width/2))
	t.CreateAttr("y", "28")
	t.CreateAttr("text-anchor", "middle")
	t.CreateAttr("font-size", "17")
	t.SetText(title)
	return doc, svg
}

// placeholder marks an empty chart.
func placeholder(svg *etree.Element) {
	t := svg.CreateElement("text")
	t.CreateAttr("class", "no-data")
	t.CreateAttr("x", num(Width/2))
	t.CreateAttr("y", num(Height/2))
	t.CreateAttr("text-anchor", "middle")
	t.CreateAttr("font-size", "15")
	t.CreateAttr("fill", "#888888")
	t.SetText(noDataText)
}

// legend draws one swatch and label per entry, top right.
func legend(svg *etree.Element, names, colors []string) {
	g := svg.CreateElement("g")
	g.CreateAttr("class", "legend")
	x := float64(Width - marginRight + 20)
	for i, name := range names {
		y := float64(marginTop + i*22)
		sw := g.CreateElement("rect")
		sw.CreateAttr("x", num(x))
		sw.CreateAttr("y", num(y))
		sw.CreateAttr("width", "12")
		sw.CreateAttr("height", "12")
		sw.CreateAttr("fill", colorOr(colors, i))

		label := g.CreateElement("text")
		label.CreateAttr("x", num(x+18))
		label.CreateAttr("y", num(y+11))
		label.CreateAttr("font-size", "12")
		label.SetText(name)
	}
}

func write(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing svg: %w", err)
	}
	return buf.Bytes(), nil
}

func colorOr(colors []string, i int) string {
	if i < len(colors) && colors[i] != "" {
		return colors[i]
	}
	return "#636EFA"
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
