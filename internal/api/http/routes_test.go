package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse/gateway"
	"github.com/i474232898/greenhouse-dashboard/internal/store"
	"github.com/i474232898/greenhouse-dashboard/internal/views"
)

// fakeGateway serves /list and /data/{file} like the sensor gateway.
func fakeGateway(t *testing.T, list []string, data map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/data/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := data[strings.TrimPrefix(r.URL.Path, "/data/")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, list []string, data map[string]string) (*fiber.App, *greenhouse.Controller) {
	t.Helper()
	require.NoError(t, views.LoadTemplates())

	srv := fakeGateway(t, list, data)
	client := gateway.NewClient(srv.Client(), srv.URL, 0)
	svc := greenhouse.NewService(client, store.NewMemoryStore(10, time.Minute), false)
	ctrl := greenhouse.NewController(svc, greenhouse.ControllerOptions{})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, ctrl, svc, Options{Title: "Greenhouse", LabelDensity: 3, DateLayout: greenhouse.DefaultDateLayout})
	return app, ctrl
}

func defaultApp(t *testing.T) (*fiber.App, *greenhouse.Controller) {
	t.Helper()
	app, ctrl := newTestApp(t,
		[]string{"2023-03-16.jsonl", "2023-03-17.jsonl"},
		map[string]string{
			"2023-03-16.jsonl": `[{"time":"00:00","temperature":18.5,"humidity":40},{"time":"00:10","temperature":18.7,"humidity":41}]`,
			"2023-03-17.jsonl": `[{"time":"00:00","temperature":19.5,"humidity":42}]`,
			"empty.jsonl":      `[]`,
		},
	)
	require.NoError(t, ctrl.Load(context.Background()))
	return app, ctrl
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(out)
}

func TestState(t *testing.T) {
	app, _ := defaultApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v greenhouse.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	assert.Equal(t, greenhouse.StateReady, v.State)
	assert.Equal(t, 0, v.SelectedIndex)
	assert.Len(t, v.Files, 2)
	assert.Equal(t, []string{"00:00", "00:10"}, v.Series.Labels)
}

func TestFiles(t *testing.T) {
	app, _ := defaultApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/files", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[
		{"index":0,"fileName":"2023-03-16.jsonl","displayDate":"3/16/2023"},
		{"index":1,"fileName":"2023-03-17.jsonl","displayDate":"3/17/2023"}
	]`, body)
}

func TestSelection(t *testing.T) {
	app, ctrl := defaultApp(t)

	resp, _ := do(t, app, http.MethodPut, "/api/v1/selection", `{"index":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, ctrl.View().SelectedIndex)

	for _, body := range []string{`{"index":-1}`, `{}`, `{"index":7}`, `not json`} {
		resp, msg := do(t, app, http.MethodPut, "/api/v1/selection", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, msg, `"error":true`)
	}
	assert.Equal(t, 1, ctrl.View().SelectedIndex)
}

func TestDashboardPage(t *testing.T) {
	app, ctrl := defaultApp(t)

	resp, body := do(t, app, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `id="file-selector"`)
	assert.Contains(t, body, "/api/v1/files/2023-03-16.jsonl/chart.svg")

	resp, body = do(t, app, http.MethodGet, "/?index=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/v1/files/2023-03-17.jsonl/chart.svg")
	assert.Equal(t, 1, ctrl.View().SelectedIndex)

	for _, q := range []string{"abc", "-2", "9"} {
		resp, _ := do(t, app, http.MethodGet, "/?index="+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestDashboardWithoutFiles(t *testing.T) {
	app, ctrl := newTestApp(t, []string{}, nil)
	require.NoError(t, ctrl.Load(context.Background()))

	resp, body := do(t, app, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "There are no files with data")

	resp, _ = do(t, app, http.MethodGet, "/api/v1/chart.svg", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFileChart(t *testing.T) {
	app, ctrl := defaultApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/files/2023-03-17.jsonl/chart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Series       greenhouse.ChartSeries `json:"series"`
		Presentation struct {
			AxisTitle string `json:"axisTitle"`
			Width     struct {
				CSS string `json:"css"`
			} `json:"width"`
		} `json:"presentation"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, []string{"00:00"}, out.Series.Labels)
	assert.Equal(t, "3/17/2023", out.Presentation.AxisTitle)
	assert.Equal(t, "100%", out.Presentation.Width.CSS)

	assert.Equal(t, 0, ctrl.View().SelectedIndex, "per-file charts must not change the selection")
}

func TestFileChartErrors(t *testing.T) {
	app, _ := defaultApp(t)

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/files/empty.jsonl/chart", http.StatusNotFound},
		{"/api/v1/files/missing.jsonl/chart", http.StatusBadGateway},
		{"/api/v1/files/a%5Cb.jsonl/chart", http.StatusBadRequest},
		{"/api/v1/files/empty.jsonl/chart.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, body := do(t, app, http.MethodGet, tt.target, "")
		assert.Equal(t, tt.status, resp.StatusCode, tt.target)
		assert.Contains(t, body, `"error":true`, tt.target)
	}
}

func TestChartImages(t *testing.T) {
	app, _ := defaultApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/files/2023-03-16.jsonl/chart.svg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")

	resp, body = do(t, app, http.MethodGet, "/api/v1/files/2023-03-16.jsonl/chart.png", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))

	resp, body = do(t, app, http.MethodGet, "/api/v1/chart.svg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "3/16/2023")
}

func TestRefresh(t *testing.T) {
	app, ctrl := defaultApp(t)
	require.NoError(t, ctrl.Select(context.Background(), 1))

	resp, body := do(t, app, http.MethodPost, "/api/v1/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v greenhouse.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	assert.Equal(t, 1, v.SelectedIndex)
	assert.Equal(t, greenhouse.StateReady, v.State)
}
