// Package pkg provides the core libraries for nocgen, a network-on-chip
// topology generator.
//
// # Overview
//
// nocgen turns per-layer grid extents into the network.xml descriptor read by
// cycle-accurate NoC simulators. Every grid position holds a router and the
// processing element (PE) attached to it; the topology family decides which
// routers are linked. The pkg directory is organized into three areas:
//
//  1. Domain logic: [config], [topology], [network], [xmltree]
//  2. Simulator companions: [simconfig], [hist]
//  3. Infrastructure: [pipeline], [cache], [observability], [render], [errors]
//
// # Architecture
//
// The data flow through nocgen:
//
//	config file (TOML / JSON)
//	         ↓
//	    [config] package (defaults + validation)
//	         ↓
//	    [topology] package (coordinate space + mesh/torus/ring edge set)
//	         ↓
//	    [network] package (numbered connections + descriptor)
//	         ↓
//	    [xmltree] package (indented XML)
//	         ↓
//	    network.xml
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/nocgen/pkg/config"
//	    "github.com/matzehuels/nocgen/pkg/network"
//	    "github.com/matzehuels/nocgen/pkg/topology"
//	)
//
//	cfg := config.Config{Topology: config.Torus, X: []int{4, 4}, Y: []int{4, 4}, Z: 2}
//	cfg.SetDefaults()
//
//	space, edges, err := topology.Build(cfg)
//	if err != nil {
//	    return err // INVALID_CONFIG, INVALID_TOPOLOGY or TOPOLOGY_CONSTRAINT
//	}
//	d := network.Build(cfg, space, network.Emit(edges, cfg))
//	xml := d.Marshal()
//
// # Main Packages
//
// [topology] - Coordinate space (node ID to normalized and grid positions and
// back) and the three Builder strategies. Edges are canonical (min, max)
// pairs in a set, so discovery order never produces duplicates.
//
// [network] - Connection emission in sorted edge order and the descriptor
// model: header, per-layer node types, nodes and connections.
//
// [xmltree] - Generic attributed tree with an encoder matching the
// simulator's expected layout.
//
// [simconfig] - The simulator's config.xml run configuration.
//
// [hist] - Per-layer aggregation of the simulator's VC and buffer histograms.
//
// [pipeline] - Generation with caching and hooks, used by the CLI and the
// HTTP API so both behave the same.
//
// [cache] - File, Redis, MongoDB and null backends keyed by config hash.
//
// [render] - Topology diagrams through Graphviz (SVG, PDF, PNG, DOT).
//
// # Testing
//
// Run tests:
//
//	go test ./...                                        # All tests
//	go test ./pkg/topology/...                           # Specific package
//	NOCGEN_TEST_MONGO_URL=mongodb://localhost go test ./pkg/cache
//
// [config]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/config
// [topology]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/topology
// [network]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/network
// [xmltree]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/xmltree
// [simconfig]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/simconfig
// [hist]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/hist
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/observability
// [render]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/nocgen/pkg/errors
package pkg
