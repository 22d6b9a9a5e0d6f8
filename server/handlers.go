package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/spektr-org/launchdash/dashboard"
	"github.com/spektr-org/launchdash/engine"
	"github.com/spektr-org/launchdash/export"
	"github.com/spektr-org/launchdash/render"
)

// ErrBadRequest marks request parameters the rules never see.
var ErrBadRequest = errors.New("bad request")

// ============================================================================
// PAGE AND HEALTH
// ============================================================================

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.dash.Dataset()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": ds.Len(),
		"source":  ds.Source(),
	})
}

// ============================================================================
// CONTROLS AND DISPATCH
// ============================================================================

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Controls())
}

// Seq is echoed back so the page can drop responses that arrive out of order.
type dispatchRequest struct {
	Seq     uint64          `json:"seq,omitempty"`
	Changed string          `json:"changed"`
	State   dashboard.State `json:"state"`
}

type chartUpdate struct {
	dashboard.Update
	SVG string `json:"svg"`
}

type dispatchResponse struct {
	Seq     uint64        `json:"seq,omitempty"`
	Updates []chartUpdate `json:"updates"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decoding body: %v", ErrBadRequest, err))
		return
	}
	if req.Changed == "" {
		s.writeError(w, r, fmt.Errorf("%w: changed is required", ErrBadRequest))
		return
	}

	updates, err := s.dash.Dispatch(req.State, req.Changed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := dispatchResponse{Seq: req.Seq, Updates: make([]chartUpdate, 0, len(updates))}
	for _, u := range updates {
		svg, err := render.SVG(u.Chart)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Updates = append(resp.Updates, chartUpdate{Update: u, SVG: string(svg)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// CHARTS
// ============================================================================

// chartOutputs maps the short chart names used in URLs to output IDs.
var chartOutputs = map[string]string{
	"pie":                  dashboard.PieChart,
	"scatter":              dashboard.ScatterChart,
	dashboard.PieChart:     dashboard.PieChart,
	dashboard.ScatterChart: dashboard.ScatterChart,
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, name string) (dashboard.Update, bool) {
	output, ok := chartOutputs[name]
	if !ok {
		s.writeErrorStatus(w, r, http.StatusNotFound, fmt.Errorf("unknown chart %q", name))
		return dashboard.Update{}, false
	}
	state, err := s.parseState(r)
	if err != nil {
		s.writeError(w, r, err)
		return dashboard.Update{}, false
	}
	u, err := s.dash.Evaluate(output, state)
	if err != nil {
		s.writeError(w, r, err)
		return dashboard.Update{}, false
	}
	return u, true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	u, ok := s.evaluate(w, r, r.PathValue("chart"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		s.writeErrorStatus(w, r, http.StatusNotFound, fmt.Errorf("unknown chart file %q", r.PathValue("file")))
		return
	}
	u, ok := s.evaluate(w, r, name)
	if !ok {
		return
	}
	out, err := render.SVG(u.Chart)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(out)
}

// ============================================================================
// LAUNCHES AND SUMMARY
// ============================================================================

func (s *Server) handleLaunches(w http.ResponseWriter, r *http.Request) {
	state, err := s.parseState(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, err := s.dash.Launches(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, table)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="launches.csv"`)
		if err := export.WriteCSV(w, &engine.Result{Type: "table", TableData: table}); err != nil {
			s.logger.Error("writing launches csv", "error", err)
		}
	default:
		s.writeError(w, r, fmt.Errorf("%w: format must be json or csv", ErrBadRequest))
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	state, err := s.parseState(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.dash.Summarize(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ============================================================================
// PARAMETERS AND RESPONSES
// ============================================================================

// parseState reads site, low and high from the query string. Missing values
// fall back to the page defaults.
func (s *Server) parseState(r *http.Request) (dashboard.State, error) {
	state := s.dash.DefaultState()
	q := r.URL.Query()

	if q.Has("site") {
		state.Site = q.Get("site")
	}
	var err error
	if state.Payload.Low, err = floatParam(q.Get("low"), q.Has("low"), state.Payload.Low); err != nil {
		return state, fmt.Errorf("%w: low: %v", ErrBadRequest, err)
	}
	if state.Payload.High, err = floatParam(q.Get("high"), q.Has("high"), state.Payload.High); err != nil {
		return state, fmt.Errorf("%w: high: %v", ErrBadRequest, err)
	}
	return state, nil
}

func floatParam(raw string, present bool, def float64) (float64, error) {
	if !present {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", raw)
	}
	return v, nil
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError maps domain errors to a status code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, dashboard.ErrUnknownControl),
		errors.Is(err, dashboard.ErrInvalidState),
		errors.Is(err, engine.ErrInvalidSpec):
		status = http.StatusBadRequest
	}
	s.writeErrorStatus(w, r, status, err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
