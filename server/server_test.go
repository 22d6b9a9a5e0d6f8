package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/launchdash/dashboard"
	"github.com/spektr-org/launchdash/dataset"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	ds, err := dataset.New([]dataset.LaunchRecord{
		{Site: "A", PayloadMassKg: 0, Class: 1, BoosterCategory: "v1.0"},
		{Site: "A", PayloadMassKg: 5000, Class: 0, BoosterCategory: "FT"},
		{Site: "A", PayloadMassKg: 9600, Class: 1, BoosterCategory: "FT"},
		{Site: "B", PayloadMassKg: 5000, Class: 0, BoosterCategory: "v1.1"},
		{Site: "B", PayloadMassKg: 10000, Class: 0, BoosterCategory: "B4"},
	}, "scenario")
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dash := dashboard.New(ds, dashboard.DefaultSlider(), dashboard.WithLogger(logger))

	srv, err := New(dash, WithLogger(logger))
	require.NoError(t, err)
	return srv, &logs
}

func do(t *testing.T, srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "SpaceX Launch Dashboard")
	assert.Contains(t, body, `id="site-dropdown"`)
	assert.Contains(t, body, `id="payload-slider"`)
	assert.Contains(t, body, `id="success-pie-chart"`)
	assert.Contains(t, body, `id="success-payload-scatter"`)
	assert.Contains(t, body, "Select a Launch Site here")
	assert.Contains(t, body, "Total Success Count for All Sites")
	assert.Contains(t, body, "<svg")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 5.0, body["records"])
}

func TestControls(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/controls", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c := decode[dashboard.Controls](t, rec)
	require.Len(t, c.Dropdown.Options, 3)
	assert.Equal(t, dashboard.AllSites, c.Dropdown.Options[0].Value)
	assert.Equal(t, 1000.0, c.Slider.Step)
	assert.Len(t, c.Slider.Marks, 11)
}

func TestDispatch(t *testing.T) {
	srv, logs := newTestServer(t)
	body := `{"changed":"payload-slider","state":{"site":"A","payload":{"low":1000,"high":10000}}}`
	rec := do(t, srv, http.MethodPost, "/api/dispatch", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dispatchResponse](t, rec)
	require.Len(t, resp.Updates, 1)
	u := resp.Updates[0]
	assert.Equal(t, dashboard.ScatterChart, u.Output)
	assert.Equal(t, 2, u.Matched)
	assert.Equal(t, 2, u.Chart.PointCount())
	assert.True(t, strings.HasPrefix(u.SVG, "<svg"))

	assert.Contains(t, logs.String(), "scatter filtered")
	assert.Contains(t, logs.String(), "path=/api/dispatch")
}

func TestDispatchEchoesSeq(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"seq":42,"changed":"site-dropdown","state":{"site":"A","payload":{"low":0,"high":10000}}}`
	rec := do(t, srv, http.MethodPost, "/api/dispatch", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dispatchResponse](t, rec)
	assert.Equal(t, uint64(42), resp.Seq)
	assert.Len(t, resp.Updates, 2)

	page := do(t, srv, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, "applied[u.output]")
	assert.Contains(t, page, "summarySeq")
}

func TestDispatchSiteChangeUpdatesBoth(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"changed":"site-dropdown","state":{"site":"B","payload":{"low":0,"high":10000}}}`
	rec := do(t, srv, http.MethodPost, "/api/dispatch", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dispatchResponse](t, rec)
	require.Len(t, resp.Updates, 2)
	assert.Equal(t, "Success Count for B", resp.Updates[0].Title)
	assert.Equal(t, 2, resp.Updates[1].Matched)
}

func TestDispatchRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown control", `{"changed":"launch-year","state":{"site":"ALL"}}`},
		{"missing changed", `{"state":{"site":"ALL"}}`},
		{"unknown field", `{"changed":"site-dropdown","extra":1}`},
		{"payload not a number", `{"changed":"site-dropdown","state":{"payload":{"low":"x"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/dispatch", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestChartJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/charts/pie?site=A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[dashboard.Update](t, rec)
	assert.Equal(t, "Success Count for A", u.Title)
	assert.Equal(t, 3, u.Matched)

	rec = do(t, srv, http.MethodGet, "/api/charts/success-payload-scatter?low=5000&high=5000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	u = decode[dashboard.Update](t, rec)
	assert.Equal(t, 2, u.Chart.PointCount())

	rec = do(t, srv, http.MethodGet, "/api/charts/scatter?site=Nowhere", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	u = decode[dashboard.Update](t, rec)
	assert.Zero(t, u.Matched)
}

func TestChartRejectsMalformedParams(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, target := range []string{
		"/api/charts/scatter?low=abc",
		"/api/charts/scatter?high=NaN",
		"/api/charts/scatter?low=Inf",
		"/charts/pie.svg?low=",
		"/api/summary?high=1e",
		"/api/launches?format=xml",
	} {
		rec := do(t, srv, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := do(t, srv, http.MethodGet, "/api/charts/bar", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodGet, "/charts/pie.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartSVG(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/charts/scatter.svg?site=A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, 3, strings.Count(rec.Body.String(), "<circle"))
}

func TestLaunches(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/launches?site=B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[struct {
		Rows [][]string `json:"rows"`
	}](t, rec)
	assert.Len(t, table.Rows, 2)

	rec = do(t, srv, http.MethodGet, "/api/launches?site=A&low=9000&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Launch Site,Class,Booster Version Category,Payload Mass Kg\nA,1,FT,9600\n", rec.Body.String())
}

func TestSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/summary?site=A", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sum := decode[dashboard.Summary](t, rec)
	assert.Equal(t, 3, sum.Launches)
	assert.Equal(t, 2, sum.Successes)
}

func TestBrotli(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/controls", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))

	plain, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	var c dashboard.Controls
	require.NoError(t, json.Unmarshal(plain, &c))
	assert.Equal(t, dashboard.SiteDropdown, c.Dropdown.ID)
}

func TestAcceptsBrotli(t *testing.T) {
	assert.True(t, acceptsBrotli("br"))
	assert.True(t, acceptsBrotli("gzip, br;q=0.8"))
	assert.False(t, acceptsBrotli("gzip, deflate"))
	assert.False(t, acceptsBrotli("br;q=0"))
	assert.False(t, acceptsBrotli(""))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
