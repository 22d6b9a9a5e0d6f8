package render

import (
	"fmt"
	"math"

	"github.com/spektr-org/launchdash/engine"
)

// PieSVG draws the first series of chart as a pie, one wedge per point,
// clockwise from twelve o'clock. Charts with no positive values get a
// "No data" placeholder.
func PieSVG(chart *engine.ChartConfig) ([]byte, error) {
	doc, svg := newCanvas(chart.Title)

	var points []engine.ChartPoint
	if len(chart.Series) > 0 {
		points = chart.Series[0].Data
	}
	total := 0.0
	for _, p := range points {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total == 0 {
		placeholder(svg)
		return write(doc)
	}

	cx := float64(Width-marginRight) / 2
	cy := float64(marginTop+Height-marginBottom) / 2
	r := math.Min(cx-marginLeft, cy-marginTop)

	g := svg.CreateElement("g")
	g.CreateAttr("class", "slices")

	names := make([]string, len(points))
	angle := -math.Pi / 2
	for i, p := range points {
		share := math.Max(p.Value, 0) / total
		names[i] = fmt.Sprintf("%s (%s)", p.Label, engine.FormatNumber(p.Value))
		if share == 0 {
			continue
		}

		color := colorOr(chart.Colors, i)
		if share >= 1 {
			c := g.CreateElement("circle")
			c.CreateAttr("cx", num(cx))
			c.CreateAttr("cy", num(cy))
			c.CreateAttr("r", num(r))
			c.CreateAttr("fill", color)
			c.CreateElement("title").SetText(sliceTitle(p, share))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			path := g.CreateElement("path")
			path.CreateAttr("d", fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
				num(cx), num(cy),
				num(cx+r*math.Cos(angle)), num(cy+r*math.Sin(angle)),
				num(r), num(r), large,
				num(cx+r*math.Cos(end)), num(cy+r*math.Sin(end))))
			path.CreateAttr("fill", color)
			path.CreateAttr("stroke", "#ffffff")
			path.CreateElement("title").SetText(sliceTitle(p, share))
			angle = end
		}

		// percentage label at the wedge's mid angle
		mid := angle - share*math.Pi
		if share >= 1 {
			mid = -math.Pi / 2
		}
		lbl := g.CreateElement("text")
		lbl.CreateAttr("x", num(cx+0.6*r*math.Cos(mid)))
		lbl.CreateAttr("y", num(cy+0.6*r*math.Sin(mid)))
		lbl.CreateAttr("text-anchor", "middle")
		lbl.CreateAttr("font-size", "13")
		lbl.CreateAttr("fill", "#ffffff")
		lbl.SetText(percent(share))
	}

	legend(svg, names, chart.Colors)
	return write(doc)
}

func sliceTitle(p engine.ChartPoint, share float64) string {
	return fmt.Sprintf("%s: %s (%s)", p.Label, engine.FormatNumber(p.Value), percent(share))
}

func percent(share float64) string {
	return engine.FormatNumber(engine.RoundTo2(share*100)) + "%"
}
