// Package network assembles the network-on-chip descriptor consumed by the
// simulator: the coordinate header, node types, nodes and connections.
//
// The flow is
//
//	space, edges, _ := topology.Build(cfg)
//	conns := network.Emit(edges, cfg)
//	d := network.Build(cfg, space, conns)
//	xml := d.Marshal()
package network

import (
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/topology"
)

// Node models.
const (
	ModelRouter            = "RouterVC"
	ModelProcessingElement = "ProcessingElement"
)

// Fixed router parameters.
const (
	RouterSelection   = "1stFreeVC"
	RouterArbiterType = "fair"
)

// NodeType is a router or processing-element type. Each layer has one of each.
type NodeType struct {
	ID          int    `json:"id"`
	Model       string `json:"model"`
	Routing     string `json:"routing,omitempty"`
	Selection   string `json:"selection,omitempty"`
	ClockDelay  int    `json:"clock_delay"`
	ArbiterType string `json:"arbiter_type,omitempty"`
}

// IsRouter reports whether t describes routers.
func (t NodeType) IsRouter() bool { return t.Model == ModelRouter }

// Node is a router or processing element at a grid position.
type Node struct {
	ID        int            `json:"id"`
	Pos       topology.Norm  `json:"pos"`
	Index     topology.Index `json:"index"`
	NodeType  int            `json:"node_type"`
	TypeIndex int            `json:"id_type"`
	Layer     int            `json:"layer"`
}

// Descriptor is a complete network description.
type Descriptor struct {
	Topology        config.Kind
	BufferDepthType string
	X, Y            []int
	Z               int

	ZAxis  topology.Axis
	XAxes  []topology.Axis
	YAxes  []topology.Axis
	Layers int

	NodeTypes   []NodeType
	Nodes       []Node
	Connections []Connection
}

// Build assembles the descriptor. Routers come first in Nodes, followed by
// their processing elements in the same order.
func Build(cfg config.Config, s *topology.Space, conns []Connection) *Descriptor {
	d := &Descriptor{
		Topology:        cfg.Topology,
		BufferDepthType: cfg.BufferDepthType,
		X:               cfg.X,
		Y:               cfg.Y,
		Z:               cfg.Z,
		ZAxis:           s.Z,
		XAxes:           s.X,
		YAxes:           s.Y,
		Layers:          s.Layers(),
		Connections:     conns,
	}

	d.NodeTypes = make([]NodeType, 0, 2*d.Layers)
	for i := 0; i < d.Layers; i++ {
		delay := config.DefaultClockDelay
		if i < len(cfg.ClockDelay) {
			delay = cfg.ClockDelay[i]
		}
		d.NodeTypes = append(d.NodeTypes, NodeType{
			ID:          i,
			Model:       ModelRouter,
			Routing:     cfg.Routing,
			Selection:   RouterSelection,
			ClockDelay:  delay,
			ArbiterType: RouterArbiterType,
		})
	}
	for i := 0; i < d.Layers; i++ {
		d.NodeTypes = append(d.NodeTypes, NodeType{
			ID:         d.Layers + i,
			Model:      ModelProcessingElement,
			ClockDelay: 1,
		})
	}

	d.Nodes = make([]Node, 0, s.NodeCount())
	for id := 0; id < s.NodeCount(); id++ {
		pos, _ := s.Norm(id)
		idx, _ := s.Index(id)
		nodeType := idx.Z
		if !s.IsRouter(id) {
			nodeType += d.Layers
		}
		d.Nodes = append(d.Nodes, Node{
			ID:        id,
			Pos:       pos,
			Index:     idx,
			NodeType:  nodeType,
			TypeIndex: s.TypeIndex(id),
			Layer:     idx.Z,
		})
	}
	return d
}

// Summary holds the counts reported after generation.
type Summary struct {
	Topology    config.Kind `json:"topology"`
	Layers      int         `json:"layers"`
	Routers     int         `json:"routers"`
	Nodes       int         `json:"nodes"`
	Connections int         `json:"connections"`
}

// Summary returns the descriptor's counts.
func (d *Descriptor) Summary() Summary {
	return Summary{
		Topology:    d.Topology,
		Layers:      d.Layers,
		Routers:     len(d.Nodes) / 2,
		Nodes:       len(d.Nodes),
		Connections: len(d.Connections),
	}
}
