package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yosssi/gohtml"

	"github.com/spektr-org/launchdash/dashboard"
	"github.com/spektr-org/launchdash/render"
)

// PageTitle is the heading of the dashboard page.
const PageTitle = "SpaceX Launch Dashboard"

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title      string
	Controls   dashboard.Controls
	Summary    string
	PieID      string
	ScatterID  string
	PieSVG     template.HTML
	ScatterSVG template.HTML
}

// renderPage builds the page for the default state. The result is formatted
// once and served from memory; every later change goes through the API.
func renderPage(dash *dashboard.Dashboard) ([]byte, error) {
	state := dash.DefaultState()

	updates, err := dash.Render(state)
	if err != nil {
		return nil, fmt.Errorf("rendering initial charts: %w", err)
	}
	svgs := make(map[string]template.HTML, len(updates))
	for _, u := range updates {
		out, err := render.SVG(u.Chart)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", u.Output, err)
		}
		svgs[u.Output] = template.HTML(out)
	}

	summary, err := dash.Summarize(state)
	if err != nil {
		return nil, fmt.Errorf("summarizing: %w", err)
	}

	data := pageData{
		Title:      PageTitle,
		Controls:   dash.Controls(),
		Summary:    summary.Display,
		PieID:      dashboard.PieChart,
		ScatterID:  dashboard.ScatterChart,
		PieSVG:     svgs[dashboard.PieChart],
		ScatterSVG: svgs[dashboard.ScatterChart],
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return gohtml.FormatBytes(buf.Bytes()), nil
}
