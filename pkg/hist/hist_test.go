package hist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/nocgen/pkg/config"
)

func twoLayers() config.Config {
	return config.Config{Topology: config.Mesh, X: []int{2, 2}, Y: []int{2, 1}, Z: 2}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLayerRanges(t *testing.T) {
	ranges := LayerRanges(twoLayers())
	if len(ranges) != 2 || ranges[0] != (LayerRange{0, 4}) || ranges[1] != (LayerRange{4, 6}) {
		t.Fatalf("LayerRanges() = %v", ranges)
	}

	tests := []struct {
		id   int
		want int
	}{
		{0, 0}, {3, 0}, {4, 1}, {5, 1}, {6, -1}, {-1, -1},
	}
	for _, tt := range tests {
		if got := FindLayer(ranges, tt.id); got != tt.want {
			t.Errorf("FindLayer(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestCombineVC(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"0.csv":     "North,1,2\nEast,3,0\n",
		"1.csv":     "North,4,1\n",
		"4.csv":     "Up,7,7\n",
		"bad.csv":   "North,1\n",
		"2.csv":     "North,x\n",
		"notes.txt": "ignored",
	})

	res, err := CombineVC(dir, twoLayers())
	if err != nil {
		t.Fatalf("CombineVC() error: %v", err)
	}
	if len(res.Layers) != 2 {
		t.Fatalf("got %d layers", len(res.Layers))
	}

	l0 := res.Layers[0]
	if got := l0.Get("1", "North"); got != 5 {
		t.Errorf("layer 0 North/1 = %v, want 5", got)
	}
	if got := l0.Get("2", "North"); got != 3 {
		t.Errorf("layer 0 North/2 = %v, want 3", got)
	}
	if got := l0.Get("1", "East"); got != 3 {
		t.Errorf("layer 0 East/1 = %v, want 3", got)
	}
	if got := res.Layers[1].Get("2", "Up"); got != 7 {
		t.Errorf("layer 1 Up/2 = %v, want 7", got)
	}
	if len(res.Skipped) != 2 {
		t.Errorf("Skipped = %v, want bad.csv and 2.csv", res.Skipped)
	}
}

func TestCombineBuffers(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"0_North.csv": "depth,0,1\na,4,8\n",
		"1_North.csv": "depth,0,1\na,4,1\n",
		"5_Up.csv":    "depth,0\nb,9\n",
		"3_Local.csv": "depth,0\na,100\n",
		"2_South.csv": "depth,0\n",
		"x_West.csv":  "depth,0\na,1\n",
		"0_East.csv":  "depth,0\na,oops\n",
	})

	res, err := CombineBuffers(dir, twoLayers())
	if err != nil {
		t.Fatalf("CombineBuffers() error: %v", err)
	}

	north := res.Layers[0]["North"]
	if got := north.Get("a", "0"); got != 2 {
		t.Errorf("North a/0 = %v, want ceil(8/4)=2", got)
	}
	if got := north.Get("a", "1"); got != 3 {
		t.Errorf("North a/1 = %v, want ceil(9/4)=3", got)
	}
	if got := res.Layers[1]["Up"].Get("b", "0"); got != 3 {
		t.Errorf("layer 1 Up b/0 = %v, want 3", got)
	}
	if !res.Layers[0]["South"].Empty() {
		t.Error("header-only file should contribute nothing")
	}
	for _, l := range res.Layers {
		if _, ok := l["Local"]; ok {
			t.Error("unknown directions must be ignored")
		}
	}
	if len(res.Skipped) != 2 {
		t.Errorf("Skipped = %v, want x_West.csv and 0_East.csv", res.Skipped)
	}
}

func TestMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	vc, err := CombineVC(missing, twoLayers())
	if err != nil || vc != nil {
		t.Errorf("CombineVC(missing) = %v, %v; want nil, nil", vc, err)
	}
	buf, err := CombineBuffers(missing, twoLayers())
	if err != nil || buf != nil {
		t.Errorf("CombineBuffers(missing) = %v, %v; want nil, nil", buf, err)
	}
}

func TestReadLatencies(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.txt":    "flit 12.5\npacket 40\nnetwork 33.25\n",
		"short.txt": "flit 12.5\n",
		"bad.txt":   "flit a\npacket b\nnetwork c\n",
	})

	got := ReadLatencies(filepath.Join(dir, "ok.txt"))
	want := Latencies{Flit: 12.5, Packet: 40, Network: 33.25}
	if got != want {
		t.Errorf("ReadLatencies(ok) = %+v, want %+v", got, want)
	}
	if !got.Valid() {
		t.Error("measured latencies should be valid")
	}

	for _, name := range []string{"short.txt", "bad.txt", "missing.txt"} {
		if got := ReadLatencies(filepath.Join(dir, name)); got != Unavailable {
			t.Errorf("ReadLatencies(%s) = %+v, want Unavailable", name, got)
		}
	}
}

func TestFrame(t *testing.T) {
	f := NewFrame("rows", "cols")
	f.Add("b", "x", 1)
	f.Add("a", "x", 2)
	f.Add("b", "y", 3)
	f.Add("b", "x", 4)

	if f.Index[0] != "b" || f.Columns[1] != "y" {
		t.Errorf("labels should keep insertion order: %v %v", f.Index, f.Columns)
	}
	if f.Total() != 10 {
		t.Errorf("Total() = %v", f.Total())
	}
	rows := f.Rows()
	if rows[0][0] != 5 || rows[1][1] != 0 {
		t.Errorf("Rows() = %v", rows)
	}
}
