package web

import (
	"encoding/json"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
)

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "states.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return New(ds, chart.DefaultLayout(), nil, opts).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexRendersSelection(t *testing.T) {
	h := newTestServer(t, Options{})
	rec := get(t, h, "/?x=age&y=smokes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`class="label active" data-axis="x" data-value="age"`,
		`class="label inactive" data-axis="x" data-value="poverty"`,
		`class="label active" data-axis="y" data-value="smokes"`,
		"Household Income (Median)",
		">BB</text>",
		"transition:transform 1000ms",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page is missing %q", want)
		}
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestIndexTicksAreKeyedForTransitions(t *testing.T) {
	h := newTestServer(t, Options{})
	body := get(t, h, "/").Body.String()

	for _, want := range []string{
		// server-rendered ticks carry the key the script matches on
		`class="tick" data-key="10" data-value="10"`,
		"transition:transform 1000ms ease-in-out,opacity 1000ms ease-in-out",
		// the initial scales seed the entering tick positions
		`"domain":[`,
		"function moveTicks(",
		"var g = existing[t.text];",
		"g.style.transform = place(axis, oldScale(t.value));",
		"g.style.transform = place(axis, newScale(+g.dataset.value));",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page is missing %q", want)
		}
	}
	// kept ticks are moved in place, never wiped and recreated
	if strings.Contains(body, "n.remove(); });") {
		t.Fatalf("page still removes every tick before redrawing")
	}
}

func TestIndexScriptRestoresStateOnFailedFetch(t *testing.T) {
	body := get(t, newTestServer(t, Options{}), "/").Body.String()
	for _, want := range []string{
		"var prev = state[axis];",
		"if (!r.ok) {",
		".catch(function (err) {",
		"state[axis] = prev;",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page script is missing %q", want)
		}
	}
}

func TestAPIView(t *testing.T) {
	h := newTestServer(t, Options{})
	rec := get(t, h, "/api/view?x=income&y=healthcare")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got struct {
		Selection chart.Selection `json:"selection"`
		Points    []chart.Point   `json:"points"`
		XAxis     chart.AxisView  `json:"x_axis"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Selection.X != dataset.Income || got.Selection.Y != dataset.Healthcare {
		t.Fatalf("unexpected selection %+v", got.Selection)
	}
	if len(got.Points) != 3 || len(got.XAxis.Ticks) == 0 {
		t.Fatalf("unexpected view: %d points, %d ticks", len(got.Points), len(got.XAxis.Ticks))
	}
	if got.Points[0].Tooltip[1] != "Income: 40000" {
		t.Fatalf("unexpected tooltip %v", got.Points[0].Tooltip)
	}
}

func TestAPIRejectsUnknownVariable(t *testing.T) {
	h := newTestServer(t, Options{})
	for _, target := range []string{"/api/view?x=obesity", "/api/view?y=height", "/chart.png?x=bogus", "/api/labels?axis=z"} {
		if rec := get(t, h, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestAPILabels(t *testing.T) {
	h := newTestServer(t, Options{})
	rec := get(t, h, "/api/labels?axis=y&y=healthcare")
	var labels []chart.Label
	if err := json.NewDecoder(rec.Body).Decode(&labels); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(labels) != 3 || !labels[2].Active || labels[0].Active {
		t.Fatalf("unexpected labels %+v", labels)
	}
}

func TestChartImages(t *testing.T) {
	h := newTestServer(t, Options{ImageRPS: 100, ImageBurst: 100})

	rec := get(t, h, "/chart.png?x=age")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png: status %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Fatalf("png decode failed: %v", err)
	}

	rec = get(t, h, "/chart.svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("svg: status %d", rec.Code)
	}

	rec = get(t, h, "/chart.gif?to_x=income&frames=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("gif: status %d", rec.Code)
	}
	g, err := gif.DecodeAll(rec.Body)
	if err != nil || len(g.Image) != 3 {
		t.Fatalf("gif decode: %v", err)
	}

	if rec := get(t, h, "/chart.gif?to_x=age&frames=0"); rec.Code != http.StatusBadRequest {
		t.Fatalf("frames=0: status %d, want 400", rec.Code)
	}
	if rec := get(t, h, "/chart.gif?x=age&to_x=age"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unchanged selection: status %d, want 400", rec.Code)
	}
	if rec := get(t, h, "/chart.gif?y=smokes&to_x=income&frames=1"); rec.Code != http.StatusOK {
		t.Fatalf("single-axis switch: status %d", rec.Code)
	}
}

func TestImageRateLimit(t *testing.T) {
	h := newTestServer(t, Options{ImageRPS: 0.001, ImageBurst: 1})
	if rec := get(t, h, "/chart.svg"); rec.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rec.Code)
	}
	rec := get(t, h, "/chart.svg")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", rec.Code)
	}
	if rec := get(t, h, "/api/view"); rec.Code != http.StatusOK {
		t.Fatalf("json api must not be rate limited, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, Options{})
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"rows":3`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body)
	}
	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path: status %d", rec.Code)
	}
}
