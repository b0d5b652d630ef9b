package hist

import "math"

// Frame is a small labelled table of counts. Row and column labels keep
// the order in which they were first seen.
type Frame struct {
	IndexName   string
	ColumnsName string
	Index       []string
	Columns     []string

	cells map[[2]string]float64
	rows  map[string]bool
	cols  map[string]bool
}

// NewFrame returns an empty frame with the given axis names.
func NewFrame(indexName, columnsName string) *Frame {
	return &Frame{
		IndexName:   indexName,
		ColumnsName: columnsName,
		cells:       make(map[[2]string]float64),
		rows:        make(map[string]bool),
		cols:        make(map[string]bool),
	}
}

// Add accumulates v into the cell (row, col). Missing cells count as zero.
func (f *Frame) Add(row, col string, v float64) {
	if !f.rows[row] {
		f.rows[row] = true
		f.Index = append(f.Index, row)
	}
	if !f.cols[col] {
		f.cols[col] = true
		f.Columns = append(f.Columns, col)
	}
	f.cells[[2]string{row, col}] += v
}

// Get returns the value at (row, col), zero if unset.
func (f *Frame) Get(row, col string) float64 {
	return f.cells[[2]string{row, col}]
}

// Merge adds every cell of other into f.
func (f *Frame) Merge(other *Frame) {
	for _, r := range other.Index {
		for _, c := range other.Columns {
			if v, ok := other.cells[[2]string{r, c}]; ok {
				f.Add(r, c, v)
			}
		}
	}
}

// Empty reports whether the frame has no cells.
func (f *Frame) Empty() bool { return len(f.cells) == 0 }

// Apply replaces every cell value v with fn(v).
func (f *Frame) Apply(fn func(float64) float64) {
	for k, v := range f.cells {
		f.cells[k] = fn(v)
	}
}

// Total returns the sum of all cells.
func (f *Frame) Total() float64 {
	var sum float64
	for _, v := range f.cells {
		sum += v
	}
	return sum
}

// Rows returns the frame as a matrix in Index x Columns order.
func (f *Frame) Rows() [][]float64 {
	out := make([][]float64, len(f.Index))
	for i, r := range f.Index {
		out[i] = make([]float64, len(f.Columns))
		for j, c := range f.Columns {
			out[i][j] = f.Get(r, c)
		}
	}
	return out
}

// averageInnerRouters divides by four and rounds up: buffer usage is
// reported per inner router.
func averageInnerRouters(v float64) float64 {
	return math.Ceil(v / 4)
}
