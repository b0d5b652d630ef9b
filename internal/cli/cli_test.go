package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
)

const meshConfig = `[network]
topology = "mesh"
x = [2]
y = [2]
z = 1
`

const torusFlatConfig = `[network]
topology = "torus"
x = [3]
y = [1]
z = 1
`

// runCLI executes the root command with args. Command output that goes
// through cobra is captured in out when non-nil.
func runCLI(t *testing.T, out io.Writer, args ...string) error {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nocgen.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"generate", "simconfig", "render", "stats", "browse", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"cache-url", "no-cache", "refresh"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	out := filepath.Join(t.TempDir(), "config", "network.xml")

	if err := runCLI(t, nil, "--no-cache", "generate", "-c", cfg, "-o", out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte("<network-on-chip")) {
		t.Errorf("output is not a network descriptor:\n%s", data)
	}
	// 4 routers: 4 core links and 4 mesh links.
	if n := bytes.Count(data, []byte("<con id=")); n != 8 {
		t.Errorf("connections = %d, want 8", n)
	}
}

func TestGenerateTopologyOverride(t *testing.T) {
	cfg := writeConfig(t, `[network]
topology = "mesh"
x = [4]
y = [1]
z = 1
`)
	out := filepath.Join(t.TempDir(), "network.xml")

	if err := runCLI(t, nil, "--no-cache", "generate", "-c", cfg, "-o", out, "--topology", "RING"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// Ring of 4: 4 core links and 4 ring links.
	if n := bytes.Count(data, []byte("<con id=")); n != 8 {
		t.Errorf("connections = %d, want 8", n)
	}
}

func TestGenerateFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		body string
		args []string
		code errors.Code
	}{
		{"torus constraint", torusFlatConfig, nil, errors.ErrCodeTopologyConstraint},
		{"shape mismatch", "[network]\ntopology = \"mesh\"\nx = [2, 2]\ny = [2]\nz = 2\n", nil, errors.ErrCodeInvalidConfig},
		{"unknown override", meshConfig, []string{"--topology", "star"}, errors.ErrCodeInvalidTopology},
		{"unknown key", meshConfig + "colour = \"red\"\n", nil, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeConfig(t, tt.body)
			out := filepath.Join(t.TempDir(), "network.xml")

			args := append([]string{"--no-cache", "generate", "-c", cfg, "-o", out}, tt.args...)
			err := runCLI(t, nil, args...)
			if !errors.Is(err, tt.code) {
				t.Fatalf("generate error = %v, want code %s", err, tt.code)
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Errorf("output file exists after failure")
			}
		})
	}
}

func TestGenerateMissingConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "network.xml")
	err := runCLI(t, nil, "--no-cache", "generate", "-c", filepath.Join(t.TempDir(), "missing.toml"), "-o", out)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("generate error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestSimConfigCommand(t *testing.T) {
	cfg := writeConfig(t, meshConfig+`
[simulation]
simulation_time = 5000
benchmark = "task"
`)
	out := filepath.Join(t.TempDir(), "config.xml")

	if err := runCLI(t, nil, "--no-cache", "simconfig", "-c", cfg, "-o", out); err != nil {
		t.Fatalf("simconfig: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<configuration>", "5000", "task"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("config.xml missing %q", want)
		}
	}
}

func TestRenderCommandDOT(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	dir := t.TempDir()
	base := filepath.Join(dir, "mesh")

	if err := runCLI(t, nil, "--no-cache", "render", "-c", cfg, "-f", "dot", "-o", base+".dot", "--hide-pe"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `graph "mesh" {`) {
		t.Errorf("DOT header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
	if n := strings.Count(string(data), " -- "); n != 4 {
		t.Errorf("DOT edges = %d, want 4 without PEs", n)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	if err := runCLI(t, nil, "--no-cache", "render", "-c", cfg, "-f", "gif"); err == nil {
		t.Error("render with an unknown format should fail")
	}
}

func TestStatsCommandJSON(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	vcDir := t.TempDir()
	files := map[string]string{
		"0.csv":    "North,1,2\nSouth,3,4\n",
		"3.csv":    "North,1,0\nSouth,0,1\n",
		"x.csv":    "North,1\n",
		"99.csv":   "North,1\n",
		"notes.md": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(vcDir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	latencies := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(latencies, []byte("flit 10.5\npacket 20\nnetwork 30\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runCLI(t, &out, "stats", "-c", cfg, "--vc-dir", vcDir, "--buff-dir", filepath.Join(vcDir, "missing"),
		"--latencies", latencies, "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	var report statsReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if len(report.Layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(report.Layers))
	}
	vc := report.Layers[0].VC
	if vc == nil {
		t.Fatal("layer 0 has no VC table")
	}
	if strings.Join(vc.Columns, ",") != "North,South" {
		t.Errorf("VC columns = %v", vc.Columns)
	}
	// Rows are VC counts 1 and 2, summed over routers 0 and 3.
	want := [][]float64{{2, 3}, {2, 5}}
	for i := range want {
		for j := range want[i] {
			if vc.Rows[i][j] != want[i][j] {
				t.Errorf("VC[%d][%d] = %v, want %v", i, j, vc.Rows[i][j], want[i][j])
			}
		}
	}
	if vc.Total != 12 {
		t.Errorf("VC total = %v, want 12", vc.Total)
	}
	if len(report.Layers[0].Buffers) != 0 {
		t.Errorf("missing buffer dir produced %v", report.Layers[0].Buffers)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("skipped = %v, want x.csv and 99.csv", report.Skipped)
	}
	if report.Latencies == nil || report.Latencies.Flit != 10.5 || report.Latencies.Network != 30 {
		t.Errorf("latencies = %+v", report.Latencies)
	}
}

func TestStatsCommandTable(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	vcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(vcDir, "1.csv"), []byte("North,4,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runCLI(t, &out, "stats", "-c", cfg, "--vc-dir", vcDir, "--latencies", filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"unavailable", "Layer 0", "VC usage, total 5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, out.String())
		}
	}
}

func TestStatsCommandNeedsInput(t *testing.T) {
	cfg := writeConfig(t, meshConfig)
	if err := runCLI(t, nil, "stats", "-c", cfg); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("stats without inputs = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := writeConfig(t, meshConfig)

	f, err := loadConfig(cfg, " Torus ")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if f.Network.Topology != config.Torus {
		t.Errorf("topology = %q, want torus", f.Network.Topology)
	}
	if f.Simulation.Benchmark != config.BenchmarkSynthetic {
		t.Errorf("simulation defaults not applied: %+v", f.Simulation)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , dot ,", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExampleConfigs(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example configs")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "network.xml")
			if err := runCLI(t, nil, "--no-cache", "generate", "-c", path, "-o", out); err != nil {
				t.Fatalf("generate %s: %v", path, err)
			}
			if err := runCLI(t, nil, "--no-cache", "simconfig", "-c", path, "-o", filepath.Join(t.TempDir(), "config.xml")); err != nil {
				t.Fatalf("simconfig %s: %v", path, err)
			}
		})
	}
}
