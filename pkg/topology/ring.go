package topology

import (
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
)

// ringBuilder closes a single row of routers into a cycle.
type ringBuilder struct{}

func (ringBuilder) Kind() config.Kind { return config.Ring }

func (b ringBuilder) Build(s *Space) (EdgeSet, error) { return run(b, s) }

func (ringBuilder) check(x, y []int, z int) error {
	if z != 1 || len(y) == 0 || y[0] != 1 {
		return errors.New(errors.ErrCodeTopologyConstraint, "ring: z and y[0] must be 1")
	}
	if len(x) == 0 || x[0] <= 1 {
		return errors.New(errors.ErrCodeTopologyConstraint, "ring: x[0] must be larger than 1")
	}
	return nil
}

func (ringBuilder) passes() []pass {
	return []pass{corePass, cyclePass}
}

func cyclePass(s *Space) EdgeSet {
	edges := NewEdgeSet()
	n := s.RouterCount()
	for id := 0; id < n; id++ {
		edges.Add(id, (id+1)%n)
	}
	return edges
}
