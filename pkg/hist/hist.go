// Package hist aggregates the per-router histogram files written by the
// simulator into per-layer tables.
//
// Aggregation is best effort. A missing directory yields no data and no
// error; a file that cannot be read or parsed is skipped and listed in
// the result's Skipped field.
package hist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/nocgen/pkg/config"
)

// Directions are the buffer directions reported by the simulator.
var Directions = []string{"Up", "Down", "North", "South", "East", "West"}

// LayerRange is the half-open router ID range [Lo, Hi) of one layer.
type LayerRange struct {
	Lo, Hi int
}

// Contains reports whether id falls in the range.
func (r LayerRange) Contains(id int) bool { return id >= r.Lo && id < r.Hi }

// LayerRanges returns the router ID range of every layer.
func LayerRanges(cfg config.Config) []LayerRange {
	ranges := make([]LayerRange, 0, len(cfg.X))
	lo := 0
	for i := range cfg.X {
		if i >= len(cfg.Y) {
			break
		}
		hi := lo + cfg.X[i]*cfg.Y[i]
		ranges = append(ranges, LayerRange{Lo: lo, Hi: hi})
		lo = hi
	}
	return ranges
}

// FindLayer returns the layer containing router id, or -1.
func FindLayer(ranges []LayerRange, id int) int {
	for i, r := range ranges {
		if r.Contains(id) {
			return i
		}
	}
	return -1
}

// VCResult holds one VC histogram per layer: rows are VC counts, columns
// are directions.
type VCResult struct {
	Layers  []*Frame
	Skipped []string
}

// BufferResult holds one buffer histogram per layer and direction.
type BufferResult struct {
	Layers  []map[string]*Frame
	Skipped []string
}

// CombineVC sums the {router}.csv VC histograms in dir per layer. Each
// file row is a direction label followed by counts for 1..k VCs.
func CombineVC(dir string, cfg config.Config) (*VCResult, error) {
	files, err := listCSV(dir)
	if err != nil || files == nil {
		return nil, err
	}

	ranges := LayerRanges(cfg)
	res := &VCResult{Layers: make([]*Frame, len(ranges))}
	for i := range res.Layers {
		res.Layers[i] = NewFrame("Number of VCs", "Direction")
	}

	for _, name := range files {
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".csv"))
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		layer := FindLayer(ranges, id)
		if layer < 0 {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		records, err := readCSV(filepath.Join(dir, name), ',')
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		frame, err := vcFrame(records)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		res.Layers[layer].Merge(frame)
	}
	return res, nil
}

// vcFrame reads label-first rows and transposes them so that VC counts
// become rows and labels become columns.
func vcFrame(records [][]string) (*Frame, error) {
	f := NewFrame("Number of VCs", "Direction")
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		label := rec[0]
		for j, cell := range rec[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, err
			}
			f.Add(strconv.Itoa(j+1), label, v)
		}
	}
	return f, nil
}

// CombineBuffers sums the {router}_{direction}.csv buffer histograms in
// dir per layer and direction, then averages over inner routers. Files
// for other directions are ignored.
func CombineBuffers(dir string, cfg config.Config) (*BufferResult, error) {
	files, err := listCSV(dir)
	if err != nil || files == nil {
		return nil, err
	}

	ranges := LayerRanges(cfg)
	res := &BufferResult{Layers: make([]map[string]*Frame, len(ranges))}
	for i := range res.Layers {
		res.Layers[i] = make(map[string]*Frame, len(Directions))
		for _, d := range Directions {
			res.Layers[i][d] = NewFrame("", "")
		}
	}

	for _, name := range files {
		idPart, direction, ok := strings.Cut(strings.TrimSuffix(name, ".csv"), "_")
		if !ok || !isDirection(direction) {
			continue
		}
		id, err := strconv.Atoi(idPart)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		layer := FindLayer(ranges, id)
		if layer < 0 {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		records, err := readCSV(filepath.Join(dir, name), ',')
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		frame, err := bufferFrame(records)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if frame.Empty() {
			continue
		}
		res.Layers[layer][direction].Merge(frame)
	}

	for _, layer := range res.Layers {
		for _, f := range layer {
			f.Apply(averageInnerRouters)
		}
	}
	return res, nil
}

// bufferFrame reads a table whose first row is a header and whose first
// column is the row label.
func bufferFrame(records [][]string) (*Frame, error) {
	if len(records) == 0 {
		return NewFrame("", ""), nil
	}
	header := records[0]
	f := NewFrame(header[0], "")
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		for j, cell := range rec[1:] {
			col := strconv.Itoa(j)
			if j+1 < len(header) {
				col = header[j+1]
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, err
			}
			f.Add(rec[0], col, v)
		}
	}
	return f, nil
}

func isDirection(s string) bool {
	for _, d := range Directions {
		if d == s {
			return true
		}
	}
	return false
}

// listCSV returns the sorted file names in dir, or nil if dir does not exist.
func listCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read histogram dir: %w", err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func readCSV(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, comma)
}

func parseCSV(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = comma != ' '
	return cr.ReadAll()
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
