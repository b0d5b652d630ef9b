package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
	"github.com/matzehuels/nocgen/pkg/observability"
	"github.com/matzehuels/nocgen/pkg/render/nodelink"
)

func meshConfig() config.Config {
	return config.Config{Topology: config.Mesh, X: []int{2}, Y: []int{1}, Z: 1}
}

func fileRunner(t *testing.T) (*Runner, *cache.FileCache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil), c
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		code errors.Code
	}{
		{"mesh", meshConfig(), ""},
		{"torus 3x3", config.Config{Topology: config.Torus, X: []int{3}, Y: []int{3}, Z: 1}, ""},
		{"torus flat", config.Config{Topology: config.Torus, X: []int{3}, Y: []int{1}, Z: 1}, errors.ErrCodeTopologyConstraint},
		{"ring two layers", config.Config{Topology: config.Ring, X: []int{4, 4}, Y: []int{1, 1}, Z: 2}, errors.ErrCodeTopologyConstraint},
		{"unknown", config.Config{Topology: "star", X: []int{2}, Y: []int{2}, Z: 1}, errors.ErrCodeInvalidTopology},
		{"shape mismatch", config.Config{Topology: config.Mesh, X: []int{2, 2}, Y: []int{2}, Z: 2}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Prepare(tt.cfg)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Prepare() error: %v", err)
				}
				if cfg.Routing != config.DefaultRouting {
					t.Errorf("Prepare() did not apply defaults: %+v", cfg)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Prepare() = %v, want code %s", err, tt.code)
			}
			if !errors.IsConfigError(err) {
				t.Errorf("Prepare() error %v should be a config error", err)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Generate(context.Background(), meshConfig())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !bytes.HasPrefix(res.XML, []byte(`<?xml version="1.0" ?>`)) {
		t.Errorf("XML prefix = %q", res.XML[:min(40, len(res.XML))])
	}
	if !bytes.Contains(res.XML, []byte("<network-on-chip")) {
		t.Error("XML missing network-on-chip root")
	}
	want := Stats{Layers: 1, Routers: 2, Nodes: 4, Edges: 3}
	got := res.Stats
	got.Duration = 0
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if res.CacheHit || res.Descriptor == nil || res.RunID == "" {
		t.Errorf("Result = hit %v, descriptor %v, run %q", res.CacheHit, res.Descriptor != nil, res.RunID)
	}
}

func TestGenerateCached(t *testing.T) {
	ctx := context.Background()
	r, _ := fileRunner(t)

	first, err := r.Generate(ctx, meshConfig())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Generate(ctx, meshConfig())
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheHit {
		t.Fatal("second Generate() should hit the cache")
	}
	if !bytes.Equal(first.XML, second.XML) {
		t.Error("cached XML differs")
	}
	if second.Summary != first.Summary {
		t.Errorf("cached Summary = %+v, want %+v", second.Summary, first.Summary)
	}
	if second.Descriptor != nil {
		t.Error("cached result should not carry a descriptor")
	}
	if first.RunID == second.RunID {
		t.Error("every run needs its own RunID")
	}

	r.Refresh = true
	third, err := r.Generate(ctx, meshConfig())
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestGenerateInvalidWritesNothing(t *testing.T) {
	r, c := fileRunner(t)

	_, err := r.Generate(context.Background(), config.Config{Topology: config.Ring, X: []int{1}, Y: []int{1}, Z: 1})
	if !errors.Is(err, errors.ErrCodeTopologyConstraint) {
		t.Fatalf("Generate() = %v, want TOPOLOGY_CONSTRAINT", err)
	}
	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 0 {
		t.Errorf("cache has %d entries after failed run", st.Entries)
	}
}

func TestGenerateParallel(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{Topology: config.Torus, X: []int{3, 3, 3}, Y: []int{4, 4, 4}, Z: 3}

	seq, err := NewRunner(nil, nil, nil).Generate(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, nil)
	r.Parallel = true
	par, err := r.Generate(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(seq.XML, par.XML) {
		t.Error("parallel build produced a different document")
	}
}

func TestDescribeAndEdges(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	d, err := r.Describe(ctx, meshConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nodes) != 4 || len(d.Connections) != 3 {
		t.Errorf("Describe() = %d nodes, %d connections", len(d.Nodes), len(d.Connections))
	}

	s, edges, err := r.Edges(ctx, meshConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.RouterCount() != 2 || edges.Len() != 3 {
		t.Errorf("Edges() = %d routers, %d edges", s.RouterCount(), edges.Len())
	}
}

func TestSimConfig(t *testing.T) {
	ctx := context.Background()
	r, c := fileRunner(t)

	data, err := r.SimConfig(ctx, config.Simulation{Benchmark: config.BenchmarkTask})
	if err != nil {
		t.Fatalf("SimConfig() error: %v", err)
	}
	if !bytes.Contains(data, []byte("<configuration")) {
		t.Errorf("SimConfig() missing root:\n%s", data)
	}
	if st, _ := c.Stats(); st.Entries != 1 {
		t.Errorf("cache entries = %d, want 1", st.Entries)
	}

	if _, err := r.SimConfig(ctx, config.Simulation{Benchmark: "trace"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("SimConfig(trace) = %v, want INVALID_CONFIG", err)
	}
}

func TestRenderDOT(t *testing.T) {
	ctx := context.Background()
	r, _ := fileRunner(t)

	res, err := r.Render(ctx, meshConfig(), []string{"dot"}, nodelink.Options{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), `graph "mesh"`) {
		t.Errorf("dot artifact = %q", res.Artifacts["dot"])
	}
	if res.CacheHit {
		t.Error("first Render() should miss")
	}

	again, err := r.Render(ctx, meshConfig(), []string{"dot"}, nodelink.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("second Render() should hit the cache")
	}

	other, err := r.Render(ctx, meshConfig(), []string{"dot"}, nodelink.Options{HidePE: true})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheHit {
		t.Error("different diagram options must not share a cache entry")
	}
}

func TestRenderInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Render(context.Background(), meshConfig(), []string{"gif"}, nodelink.Options{}); err == nil {
		t.Error("Render(gif) should fail")
	}
	bad := config.Config{Topology: config.Torus, X: []int{1}, Y: []int{1}, Z: 1}
	if _, err := r.Render(context.Background(), bad, nil, nodelink.Options{}); !errors.Is(err, errors.ErrCodeTopologyConstraint) {
		t.Errorf("Render(bad torus) = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu      sync.Mutex
	done    []error
	hits    int
	sets    int
	nodes   int
	lastTop string
}

func (h *recordingHooks) OnGenerateComplete(_ context.Context, topology string, nodes, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = append(h.done, err)
	h.nodes = nodes
	h.lastTop = topology
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestGenerateHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	r, _ := fileRunner(t)
	for i := 0; i < 2; i++ {
		if _, err := r.Generate(ctx, meshConfig()); err != nil {
			t.Fatal(err)
		}
	}

	if len(h.done) != 2 || h.done[0] != nil || h.done[1] != nil {
		t.Errorf("OnGenerateComplete calls = %v", h.done)
	}
	if h.nodes != 4 || h.lastTop != "mesh" {
		t.Errorf("last completion = %d nodes, topology %q", h.nodes, h.lastTop)
	}
	if h.sets != 1 || h.hits != 1 {
		t.Errorf("cache hooks: sets=%d hits=%d, want 1 and 1", h.sets, h.hits)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "network.xml")

	if err := WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("WriteFile() overwrite error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("file = %q, want second", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want only network.xml", len(entries))
	}

	if err := WriteFile(dir+"/", []byte("x")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("WriteFile(dir/) = %v, want INVALID_INPUT", err)
	}
}
