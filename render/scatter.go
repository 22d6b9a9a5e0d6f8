package render

import (
	"fmt"
	"math"

	"github.com/beevik/etree"

	"github.com/spektr-org/launchdash/engine"
)

const tickCount = 5

// ScatterSVG draws every point of every series as a circle colored by its
// series, with linear axes fitted to the data.
func ScatterSVG(chart *engine.ChartConfig) ([]byte, error) {
	doc, svg := newCanvas(chart.Title)

	if chart.PointCount() == 0 {
		placeholder(svg)
		return write(doc)
	}

	xs := newScale(chart, func(p engine.ChartPoint) float64 { return p.X },
		float64(marginLeft), float64(Width-marginRight))
	// SVG y grows downwards
	ys := newScale(chart, func(p engine.ChartPoint) float64 { return p.Value },
		float64(Height-marginBottom), float64(marginTop))

	axes(svg, chart, xs, ys)

	g := svg.CreateElement("g")
	g.CreateAttr("class", "points")
	names := make([]string, len(chart.Series))
	colors := make([]string, len(chart.Series))
	for i, s := range chart.Series {
		names[i] = s.Name
		colors[i] = s.Color
		if colors[i] == "" {
			colors[i] = colorOr(chart.Colors, i)
		}
		for _, p := range s.Data {
			c := g.CreateElement("circle")
			c.CreateAttr("cx", num(xs.at(p.X)))
			c.CreateAttr("cy", num(ys.at(p.Value)))
			c.CreateAttr("r", "5")
			c.CreateAttr("fill", colors[i])
			c.CreateAttr("fill-opacity", "0.8")
			c.CreateElement("title").SetText(fmt.Sprintf("%s: %s, %s",
				s.Name, engine.FormatNumber(p.X), engine.FormatNumber(p.Value)))
		}
	}

	legend(svg, names, colors)
	return write(doc)
}

// ============================================================================
// SCALES AND AXES
// ============================================================================

// scale maps a data interval linearly onto a pixel interval.
type scale struct {
	lo, hi       float64
	pxLo, pxHigh float64
}

func newScale(chart *engine.ChartConfig, value func(engine.ChartPoint) float64, pxLo, pxHigh float64) scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range chart.Series {
		for _, p := range s.Data {
			v := value(p)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * 0.05
	return scale{lo: lo - pad, hi: hi + pad, pxLo: pxLo, pxHigh: pxHigh}
}

func (s scale) at(v float64) float64 {
	return s.pxLo + (v-s.lo)/(s.hi-s.lo)*(s.pxHigh-s.pxLo)
}

func (s scale) ticks() []float64 {
	out := make([]float64, tickCount)
	for i := range out {
		out[i] = s.lo + (s.hi-s.lo)*float64(i)/float64(tickCount-1)
	}
	return out
}

func axes(svg *etree.Element, chart *engine.ChartConfig, xs, ys scale) {
	g := svg.CreateElement("g")
	g.CreateAttr("class", "axes")
	g.CreateAttr("font-size", "11")

	left, right := float64(marginLeft), float64(Width-marginRight)
	top, bottom := float64(marginTop), float64(Height-marginBottom)

	line(g, left, bottom, right, bottom, "#444444")
	line(g, left, top, left, bottom, "#444444")

	for _, v := range xs.ticks() {
		x := xs.at(v)
		if chart.ShowGrid {
			line(g, x, top, x, bottom, "#eeeeee")
		}
		t := g.CreateElement("text")
		t.CreateAttr("x", num(x))
		t.CreateAttr("y", num(bottom+16))
		t.CreateAttr("text-anchor", "middle")
		t.SetText(engine.FormatNumber(engine.RoundTo2(v)))
	}
	for _, v := range ys.ticks() {
		y := ys.at(v)
		if chart.ShowGrid {
			line(g, left, y, right, y, "#eeeeee")
		}
		t := g.CreateElement("text")
		t.CreateAttr("x", num(left-8))
		t.CreateAttr("y", num(y+4))
		t.CreateAttr("text-anchor", "end")
		t.SetText(engine.FormatNumber(engine.RoundTo2(v)))
	}

	xl := g.CreateElement("text")
	xl.CreateAttr("class", "x-label")
	xl.CreateAttr("x", num((left+right)/2))
	xl.CreateAttr("y", num(float64(Height-16)))
	xl.CreateAttr("text-anchor", "middle")
	xl.CreateAttr("font-size", "13")
	xl.SetText(chart.XAxis)

	yl := g.CreateElement("text")
	yl.CreateAttr("class", "y-label")
	yl.CreateAttr("x", "0")
	yl.CreateAttr("y", "0")
	yl.CreateAttr("text-anchor", "middle")
	yl.CreateAttr("font-size", "13")
	yl.CreateAttr("transform", fmt.Sprintf("translate(18 %s) rotate(-90)", num((top+bottom)/2)))
	yl.SetText(chart.YAxis)
}

func line(g *etree.Element, x1, y1, x2, y2 float64, stroke string) {
	l := g.CreateElement("line")
	l.CreateAttr("x1", num(x1))
	l.CreateAttr("y1", num(y1))
	l.CreateAttr("x2", num(x2))
	l.CreateAttr("y2", num(y2))
	l.CreateAttr("stroke", stroke)
}
