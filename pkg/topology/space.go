package topology

import (
	"math"

	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
)

// Axis is one dimension of one layer: its extent and the normalized
// positions along it.
//
// A single-cell axis has Step 1 and the single position 0. Otherwise
// Step is 1/(Extent-1) and Values runs from 0 to 1 inclusive.
type Axis struct {
	Extent int
	Step   float64
	Values []float64
}

func newAxis(extent int) Axis {
	if extent == 1 {
		return Axis{Extent: 1, Step: 1, Values: []float64{0}}
	}
	step := 1 / float64(extent-1)
	values := make([]float64, extent)
	for i := range values {
		values[i] = float64(i) * step
	}
	// (n-1) * 1/(n-1) is not exactly 1 for every n.
	values[extent-1] = 1
	return Axis{Extent: extent, Step: step, Values: values}
}

// Degenerate reports whether the axis has a single cell.
func (a Axis) Degenerate() bool { return a.Extent == 1 }

// Max returns the largest normalized position on the axis.
func (a Axis) Max() float64 { return a.Values[len(a.Values)-1] }

// Norm is a normalized position in [0,1]^3.
type Norm struct {
	X, Y, Z float64
}

// Index is a discrete grid position: column, row and layer.
type Index struct {
	X, Y, Z int
}

// normKey is a Norm quantized to a fixed resolution so that positions
// reached by adding a step compare equal to the precomputed ones.
type normKey struct {
	x, y, z int64
}

const normResolution = 1e9

func keyOf(n Norm) normKey {
	return normKey{
		x: int64(math.Round(n.X * normResolution)),
		y: int64(math.Round(n.Y * normResolution)),
		z: int64(math.Round(n.Z * normResolution)),
	}
}

// Space maps node IDs to grid positions and back.
//
// Router IDs are assigned layer by layer, row by row, column by column,
// starting at 0. Router i is paired with the processing element i+N where
// N is [Space.RouterCount]. A Space is immutable once built and safe for
// concurrent readers.
type Space struct {
	Z Axis
	X []Axis
	Y []Axis

	norms   []Norm
	indexes []Index
	typeIdx []int

	byNorm  map[normKey]int
	byIndex map[Index]int
}

// NewSpace builds the coordinate space for cfg's layer extents.
// Only the structural shape is checked here; topology preconditions
// belong to the builders.
func NewSpace(cfg config.Config) (*Space, error) {
	if cfg.Z < 1 || len(cfg.X) != cfg.Z || len(cfg.Y) != cfg.Z {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"layer extents do not match z: len(x)=%d, len(y)=%d, z=%d", len(cfg.X), len(cfg.Y), cfg.Z)
	}

	s := &Space{
		Z: newAxis(cfg.Z),
		X: make([]Axis, cfg.Z),
		Y: make([]Axis, cfg.Z),
	}
	n := 0
	for i := 0; i < cfg.Z; i++ {
		if cfg.X[i] < 1 || cfg.Y[i] < 1 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"layer %d: extents must be positive, got x=%d y=%d", i, cfg.X[i], cfg.Y[i])
		}
		s.X[i] = newAxis(cfg.X[i])
		s.Y[i] = newAxis(cfg.Y[i])
		n += cfg.X[i] * cfg.Y[i]
	}

	s.norms = make([]Norm, 0, n)
	s.indexes = make([]Index, 0, n)
	s.typeIdx = make([]int, 0, n)
	s.byNorm = make(map[normKey]int, n)
	s.byIndex = make(map[Index]int, n)

	id := 0
	for zi, z := range s.Z.Values {
		pos := 0
		for yi, y := range s.Y[zi].Values {
			for xi, x := range s.X[zi].Values {
				norm := Norm{X: x, Y: y, Z: z}
				idx := Index{X: xi, Y: yi, Z: zi}
				s.norms = append(s.norms, norm)
				s.indexes = append(s.indexes, idx)
				s.typeIdx = append(s.typeIdx, pos)
				s.byNorm[keyOf(norm)] = id
				s.byIndex[idx] = id
				id++
				pos++
			}
		}
	}
	return s, nil
}

// Layers returns the number of layers.
func (s *Space) Layers() int { return s.Z.Extent }

// RouterCount returns N, the number of router nodes.
func (s *Space) RouterCount() int { return len(s.norms) }

// NodeCount returns 2N: every router plus its processing element.
func (s *Space) NodeCount() int { return 2 * len(s.norms) }

// IsRouter reports whether id is in the router half [0,N).
func (s *Space) IsRouter(id int) bool { return id >= 0 && id < len(s.norms) }

// PE returns the processing element paired with router id.
func (s *Space) PE(id int) int { return id + len(s.norms) }

// router folds a PE id onto its router. ok is false outside [0,2N).
func (s *Space) router(id int) (int, bool) {
	n := len(s.norms)
	switch {
	case id >= 0 && id < n:
		return id, true
	case id >= n && id < 2*n:
		return id - n, true
	}
	return 0, false
}

// Norm returns the normalized position of a router or PE node.
func (s *Space) Norm(id int) (Norm, bool) {
	r, ok := s.router(id)
	if !ok {
		return Norm{}, false
	}
	return s.norms[r], true
}

// Index returns the discrete grid position of a router or PE node.
func (s *Space) Index(id int) (Index, bool) {
	r, ok := s.router(id)
	if !ok {
		return Index{}, false
	}
	return s.indexes[r], true
}

// IDAtIndex returns the router at a discrete grid position.
func (s *Space) IDAtIndex(idx Index) (int, bool) {
	id, ok := s.byIndex[idx]
	return id, ok
}

// IDAtNorm returns the router at a normalized position.
func (s *Space) IDAtNorm(n Norm) (int, bool) {
	id, ok := s.byNorm[keyOf(n)]
	return id, ok
}

// LayerOf returns the discrete layer of a router or PE node, or -1.
func (s *Space) LayerOf(id int) int {
	idx, ok := s.Index(id)
	if !ok {
		return -1
	}
	return idx.Z
}

// TypeIndex returns the position of a router or PE node within its layer, or -1.
func (s *Space) TypeIndex(id int) int {
	r, ok := s.router(id)
	if !ok {
		return -1
	}
	return s.typeIdx[r]
}

// LayerRange returns the half-open router ID range [lo,hi) of layer z.
func (s *Space) LayerRange(z int) (lo, hi int) {
	for i := 0; i < z && i < len(s.X); i++ {
		lo += s.X[i].Extent * s.Y[i].Extent
	}
	if z < 0 || z >= len(s.X) {
		return lo, lo
	}
	return lo, lo + s.X[z].Extent*s.Y[z].Extent
}
