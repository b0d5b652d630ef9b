// Package pipeline runs network generation end to end for the CLI and the
// HTTP API.
//
// The stages are:
//
//  1. Validate: defaults, config shape, topology preconditions
//  2. Build: coordinate space and edge set (topology)
//  3. Emit: numbered connections and the network descriptor (network)
//  4. Serialize: the network-on-chip XML document
//
// The serialized document is cached under a hash of the config, so repeated
// runs with the same config skip stages 2 to 4. Diagrams and simulator
// configuration documents are produced by separate, also cached, calls.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Generate(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	err = pipeline.WriteFile("network.xml", res.XML)
package pipeline

import (
	"time"

	"github.com/matzehuels/nocgen/pkg/network"
)

// Result contains the outputs of a generation run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// NetworkKey is the cache key of the generated document.
	NetworkKey string

	// XML is the serialized network-on-chip document.
	XML []byte

	// Descriptor is the in-memory network. It is nil when XML came from
	// the cache; [Runner.Describe] rebuilds it.
	Descriptor *network.Descriptor

	// Summary holds the network's counts and is always set.
	Summary network.Summary

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether XML came from the cache.
	CacheHit bool
}

// Stats contains generation statistics.
type Stats struct {
	Layers   int
	Routers  int
	Nodes    int
	Edges    int
	Duration time.Duration
}

func statsOf(s network.Summary, d time.Duration) Stats {
	return Stats{
		Layers:   s.Layers,
		Routers:  s.Routers,
		Nodes:    s.Nodes,
		Edges:    s.Connections,
		Duration: d,
	}
}
