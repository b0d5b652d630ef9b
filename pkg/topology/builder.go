package topology

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
)

// Builder computes the link set of one topology family.
type Builder interface {
	// Kind returns the topology family.
	Kind() config.Kind

	// Build checks the family's preconditions against s and returns the
	// deduplicated edge set. No edge is computed if a precondition fails.
	Build(s *Space) (EdgeSet, error)
}

// pass discovers one class of edges (core links, one axis, extras).
// Passes only read the space, so they may run concurrently.
type pass func(s *Space) EdgeSet

// family is implemented by every Builder in this package.
type family interface {
	Builder
	check(x, y []int, z int) error
	passes() []pass
}

// New returns the builder for kind.
func New(kind config.Kind) (Builder, error) {
	return lookup(kind)
}

func lookup(kind config.Kind) (family, error) {
	switch kind {
	case config.Mesh:
		return meshBuilder{}, nil
	case config.Torus:
		return torusBuilder{}, nil
	case config.Ring:
		return ringBuilder{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidTopology, "unknown topology %q (must be one of: mesh, torus, ring)", kind)
}

// Validate checks kind's preconditions against cfg's extents without
// building anything.
func Validate(kind config.Kind, cfg config.Config) error {
	f, err := lookup(kind)
	if err != nil {
		return err
	}
	return f.check(cfg.X, cfg.Y, cfg.Z)
}

// Build creates the coordinate space for cfg and builds its edge set with
// the builder selected by cfg.Topology.
func Build(cfg config.Config) (*Space, EdgeSet, error) {
	b, err := New(cfg.Topology)
	if err != nil {
		return nil, nil, err
	}
	if err := Validate(cfg.Topology, cfg); err != nil {
		return nil, nil, err
	}
	s, err := NewSpace(cfg)
	if err != nil {
		return nil, nil, err
	}
	edges, err := b.Build(s)
	if err != nil {
		return nil, nil, err
	}
	return s, edges, nil
}

// BuildParallel is Build with every edge-discovery pass on its own
// goroutine. The partial sets are merged once all passes finish.
func BuildParallel(ctx context.Context, b Builder, s *Space) (EdgeSet, error) {
	f, ok := b.(family)
	if !ok {
		return b.Build(s)
	}
	if err := f.check(extents(s)); err != nil {
		return nil, err
	}

	passes := f.passes()
	parts := make([]EdgeSet, len(passes))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range passes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts[i] = p(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edges := NewEdgeSet()
	for _, part := range parts {
		edges.Union(part)
	}
	return edges, nil
}

// run checks preconditions and applies every pass in order.
func run(f family, s *Space) (EdgeSet, error) {
	if err := f.check(extents(s)); err != nil {
		return nil, err
	}
	edges := NewEdgeSet()
	for _, p := range f.passes() {
		edges.Union(p(s))
	}
	return edges, nil
}

func extents(s *Space) (x, y []int, z int) {
	x = make([]int, len(s.X))
	y = make([]int, len(s.Y))
	for i := range s.X {
		x[i] = s.X[i].Extent
		y[i] = s.Y[i].Extent
	}
	return x, y, s.Z.Extent
}

// corePass links every router to its processing element.
func corePass(s *Space) EdgeSet {
	edges := NewEdgeSet()
	for id := 0; id < s.RouterCount(); id++ {
		edges.Add(id, s.PE(id))
	}
	return edges
}

// stepPass links every router to the router one grid step further along
// an in-plane axis, without wraparound.
func stepPass(dx, dy int) pass {
	return func(s *Space) EdgeSet {
		edges := NewEdgeSet()
		for id := 0; id < s.RouterCount(); id++ {
			idx, _ := s.Index(id)
			target, ok := s.IDAtIndex(Index{X: idx.X + dx, Y: idx.Y + dy, Z: idx.Z})
			if !ok {
				continue
			}
			edges.Add(id, target)
		}
		return edges
	}
}

// verticalPass links every router to the router at the same normalized
// (x, y) one z-step above, when such a position exists. Layers with
// different extents only link where their normalized positions coincide.
func verticalPass(s *Space) EdgeSet {
	edges := NewEdgeSet()
	limit := s.Z.Max() + 1/normResolution
	for id := 0; id < s.RouterCount(); id++ {
		n, _ := s.Norm(id)
		tz := n.Z + s.Z.Step
		if tz > limit {
			continue
		}
		target, ok := s.IDAtNorm(Norm{X: n.X, Y: n.Y, Z: tz})
		if !ok {
			continue
		}
		edges.Add(id, target)
	}
	return edges
}
