package topology

import (
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
)

// torusBuilder wraps both in-plane axes around. Layers are stacked like a
// mesh, and with three or more layers the bottom and top layer are coupled
// directly at every position they share.
type torusBuilder struct{}

func (torusBuilder) Kind() config.Kind { return config.Torus }

func (b torusBuilder) Build(s *Space) (EdgeSet, error) { return run(b, s) }

func (torusBuilder) check(x, y []int, z int) error {
	for i := 0; i < z && i < len(x) && i < len(y); i++ {
		if x[i] <= 1 || y[i] <= 1 {
			return errors.New(errors.ErrCodeTopologyConstraint,
				"torus: x and y at layer %d must be larger than 1, got x=%d y=%d", i, x[i], y[i])
		}
	}
	return nil
}

func (torusBuilder) passes() []pass {
	return []pass{corePass, wrapPass(1, 0), wrapPass(0, 1), verticalPass, couplingPass}
}

// wrapPass links every router to its next neighbour along an in-plane
// axis, modulo that layer's extent.
func wrapPass(dx, dy int) pass {
	return func(s *Space) EdgeSet {
		edges := NewEdgeSet()
		for id := 0; id < s.RouterCount(); id++ {
			idx, _ := s.Index(id)
			next := Index{
				X: (idx.X + dx) % s.X[idx.Z].Extent,
				Y: (idx.Y + dy) % s.Y[idx.Z].Extent,
				Z: idx.Z,
			}
			target, ok := s.IDAtIndex(next)
			if !ok {
				continue
			}
			edges.Add(id, target)
		}
		return edges
	}
}

// couplingPass links normalized z=0 to z=1 at every (x, y) of the bottom
// layer that also exists on the top layer. It only applies with more than
// two layers; with two the vertical pass already covers it.
func couplingPass(s *Space) EdgeSet {
	edges := NewEdgeSet()
	if len(s.Z.Values) <= 2 {
		return edges
	}
	for _, ny := range s.Y[0].Values {
		for _, nx := range s.X[0].Values {
			src, ok := s.IDAtNorm(Norm{X: nx, Y: ny, Z: 0})
			if !ok {
				continue
			}
			dst, ok := s.IDAtNorm(Norm{X: nx, Y: ny, Z: 1})
			if !ok {
				continue
			}
			edges.Add(src, dst)
		}
	}
	return edges
}
