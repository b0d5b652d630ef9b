package network

import (
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/topology"
)

// Port is one end of a connection. Buffer and VC settings are the same on
// every port of a network.
type Port struct {
	ID            int    `json:"id"`
	Node          int    `json:"node"`
	BufferDepth   int    `json:"buffer_depth"`
	BuffersDepths string `json:"buffers_depths"`
	VCCount       int    `json:"vc_count"`
}

// Connection is one physical link and its two ports.
type Connection struct {
	ID    int     `json:"id"`
	Ports [2]Port `json:"ports"`
}

// Edge returns the canonical edge the connection was emitted from.
func (c Connection) Edge() topology.Edge {
	return topology.NewEdge(c.Ports[0].Node, c.Ports[1].Node)
}

// Emit numbers the edges in [topology.EdgeSet.Sorted] order starting at 0.
// Port 0 binds the higher node ID and port 1 the lower.
func Emit(edges topology.EdgeSet, cfg config.Config) []Connection {
	sorted := edges.Sorted()
	conns := make([]Connection, len(sorted))
	for i, e := range sorted {
		conns[i] = Connection{
			ID: i,
			Ports: [2]Port{
				newPort(0, e.B, cfg),
				newPort(1, e.A, cfg),
			},
		}
	}
	return conns
}

func newPort(id, node int, cfg config.Config) Port {
	return Port{
		ID:            id,
		Node:          node,
		BufferDepth:   cfg.BufferDepth,
		BuffersDepths: cfg.BuffersDepths,
		VCCount:       cfg.VCCount,
	}
}
