package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/observability"
	"github.com/matzehuels/nocgen/pkg/pipeline"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, cache.NewScopedKeyer(nil, "serve:"), nil)
	ts := httptest.NewServer(New(runner, nil, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

const meshBody = `{"topology": "mesh", "x": [2], "y": [1], "z": 1}`

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Build.Version == "" {
		t.Errorf("health = %+v", h)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing secure headers")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestNetwork(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts, "/v1/networks", meshBody)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/xml") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get(RunIDHeader) == "" {
		t.Error("missing run ID")
	}
	if resp.Header.Get(CacheHeader) != "miss" {
		t.Errorf("first request X-Cache = %q", resp.Header.Get(CacheHeader))
	}
	if !strings.Contains(body, "<network-on-chip") || !strings.Contains(body, "<connections>") {
		t.Errorf("unexpected body:\n%s", body)
	}

	again := post(t, ts, "/v1/networks", strings.Replace(meshBody, "mesh", "MESH", 1))
	if again.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", again.StatusCode)
	}
	if again.Header.Get(CacheHeader) != "hit" {
		t.Errorf("repeat request X-Cache = %q, want hit", again.Header.Get(CacheHeader))
	}
	if readBody(t, again) != body {
		t.Error("cached document differs")
	}
}

func TestNetworkErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"torus too small", `{"topology": "torus", "x": [1], "y": [3], "z": 1}`, http.StatusBadRequest, "TOPOLOGY_CONSTRAINT"},
		{"ring with layers", `{"topology": "ring", "x": [4, 4], "y": [1, 1], "z": 2}`, http.StatusBadRequest, "TOPOLOGY_CONSTRAINT"},
		{"unknown topology", `{"topology": "star", "x": [2], "y": [2], "z": 1}`, http.StatusBadRequest, "INVALID_TOPOLOGY"},
		{"shape mismatch", `{"topology": "mesh", "x": [2, 2], "y": [2], "z": 2}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"oversized extents", `{"topology": "mesh", "x": [4294967296], "y": [4294967296], "z": 1}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"oversized layer count", `{"topology": "mesh", "x": [2], "y": [2], "z": 1099511627776}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"bad json", `{"topology": `, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"topology": "mesh", "width": 3}`, http.StatusBadRequest, "INVALID_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/networks", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts, "/v1/networks/summary", `{"topology": "ring", "x": [4], "y": [1], "z": 1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var s summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Summary.Routers != 4 || s.Summary.Nodes != 8 || s.Summary.Connections != 8 {
		t.Errorf("summary = %+v", s.Summary)
	}
	if s.RunID == "" || s.RunID != resp.Header.Get(RunIDHeader) {
		t.Errorf("run ID %q does not match header %q", s.RunID, resp.Header.Get(RunIDHeader))
	}
}

func TestDiagram(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts, "/v1/networks/diagram?format=dot&pe=false", meshBody)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, "0 -- 1;") || strings.Contains(body, "circle") {
		t.Errorf("unexpected DOT:\n%s", body)
	}

	bad := post(t, ts, "/v1/networks/diagram?format=gif", meshBody)
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("format=gif status = %d", bad.StatusCode)
	}
}

func TestSimConfig(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts, "/v1/simconfig", `{"benchmark": "task", "buffer_report_routers": [1, 2]}`)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "<configuration") || !strings.Contains(body, "1 2") {
		t.Errorf("unexpected body:\n%s", body)
	}

	bad := post(t, ts, "/v1/simconfig", `{"benchmark": "netrace"}`)
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("bad benchmark status = %d", bad.StatusCode)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/v2/nothing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || decodeError(t, resp).Code != "NOT_FOUND" {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/v1/simconfig")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/simconfig status = %d", resp2.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetHTTPHooks(hooks)
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	post(t, ts, "/v1/networks", meshBody)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body := readBody(t, resp)

	for _, want := range []string{
		`nocgen_generate_total{result="ok",topology="mesh"} 1`,
		`nocgen_http_requests_total{code="200",method="POST",route="/v1/networks"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(plain error) = %d", got)
	}
}
