package topology

import "github.com/matzehuels/nocgen/pkg/config"

// meshBuilder links grid neighbours without wraparound. Boundary routers
// have no outward link on that side.
type meshBuilder struct{}

func (meshBuilder) Kind() config.Kind { return config.Mesh }

func (b meshBuilder) Build(s *Space) (EdgeSet, error) { return run(b, s) }

// A mesh accepts any positive extents.
func (meshBuilder) check([]int, []int, int) error { return nil }

func (meshBuilder) passes() []pass {
	return []pass{corePass, stepPass(1, 0), stepPass(0, 1), verticalPass}
}
