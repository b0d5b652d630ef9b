// Package topology computes node coordinates and link sets for
// network-on-chip topologies.
//
// A [Space] assigns node IDs to grid positions. Routers take IDs 0..N-1 in
// layer, row, column order; each router i has a processing element N+i at
// the same position. Every position is known both by its discrete [Index]
// and by its [Norm], the position normalized to [0,1] per axis.
//
// A [Builder] turns a Space into an [EdgeSet] for one family:
//
//   - mesh: grid neighbours, no wraparound
//   - torus: grid neighbours with x and y wrapped per layer
//   - ring: a single row of routers closed into a cycle
//
// All families link each router to its processing element, and mesh and
// torus link layers through normalized z steps.
//
// # Usage
//
//	space, edges, err := topology.Build(cfg)
//	if err != nil {
//	    return err
//	}
//	for _, e := range edges.Sorted() {
//	    fmt.Println(e.A, e.B)
//	}
package topology
