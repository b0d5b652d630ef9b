package network

import (
	"strconv"

	"github.com/matzehuels/nocgen/pkg/topology"
	"github.com/matzehuels/nocgen/pkg/xmltree"
)

// RootElement is the document element of a network descriptor.
const RootElement = "network-on-chip"

// Tree converts the descriptor into its XML element tree.
func (d *Descriptor) Tree() *xmltree.Element {
	root := xmltree.NewDocument(RootElement)
	root.AddValue("bufferDepthType", d.BufferDepthType)
	root.Add("topology").SetText(string(d.Topology))
	d.writeAbstract(root.Add("abstract"))

	layers := root.Add("layers")
	for i := 0; i < d.Layers; i++ {
		layers.AddValue("layer", strconv.Itoa(i))
	}

	types := root.Add("nodeTypes")
	for _, t := range d.NodeTypes {
		el := types.Add("nodeType").Set("id", strconv.Itoa(t.ID))
		el.AddValue("model", t.Model)
		if t.IsRouter() {
			el.AddValue("routing", t.Routing)
			el.AddValue("selection", t.Selection)
			el.AddValue("clockDelay", strconv.Itoa(t.ClockDelay))
			el.AddValue("arbiterType", t.ArbiterType)
		} else {
			el.AddValue("clockDelay", strconv.Itoa(t.ClockDelay))
		}
	}

	nodes := root.Add("nodes")
	for _, n := range d.Nodes {
		el := nodes.Add("node").Set("id", strconv.Itoa(n.ID))
		el.AddValue("xPos", axisValue(d.XAxes[n.Index.Z], n.Pos.X))
		el.AddValue("yPos", axisValue(d.YAxes[n.Index.Z], n.Pos.Y))
		el.AddValue("zPos", axisValue(d.ZAxis, n.Pos.Z))
		el.AddValue("nodeType", strconv.Itoa(n.NodeType))
		el.AddValue("idType", strconv.Itoa(n.TypeIndex))
		el.AddValue("layer", strconv.Itoa(n.Layer))
	}

	conns := root.Add("connections")
	for _, c := range d.Connections {
		ports := conns.Add("con").Set("id", strconv.Itoa(c.ID)).Add("ports")
		for _, p := range c.Ports {
			el := ports.Add("port").Set("id", strconv.Itoa(p.ID))
			el.AddValue("node", strconv.Itoa(p.Node))
			el.AddValue("bufferDepth", strconv.Itoa(p.BufferDepth))
			el.AddValue("buffersDepths", p.BuffersDepths)
			el.AddValue("vcCount", strconv.Itoa(p.VCCount))
		}
	}
	return root
}

// Marshal returns the descriptor as an XML document.
func (d *Descriptor) Marshal() []byte {
	return xmltree.Marshal(d.Tree())
}

func (d *Descriptor) writeAbstract(abstract *xmltree.Element) {
	z := abstract.AddValue("z", strconv.Itoa(d.Z))
	z.AddValue("zStep", axisStep(d.ZAxis))
	z.Add("zRange").SetText(axisRange(d.ZAxis))

	y := abstract.AddValue("y", xmltree.JoinInts(d.Y))
	for i, a := range d.YAxes {
		layer := y.AddValue("layer", strconv.Itoa(i))
		layer.AddValue("yStep", axisStep(a))
		layer.Add("yRange").SetText(axisRange(a))
	}

	x := abstract.AddValue("x", xmltree.JoinInts(d.X))
	for i, a := range d.XAxes {
		layer := x.AddValue("layer", strconv.Itoa(i))
		layer.AddValue("xStep", axisStep(a))
		layer.Add("xRange").SetText(axisRange(a))
	}
}

// A single-cell axis is integral: step 1, range 0. Every other axis is
// written in floating point, so an extent of 2 has step 1.0.
func axisStep(a topology.Axis) string {
	if a.Degenerate() {
		return "1"
	}
	return xmltree.FormatFloat(a.Step)
}

func axisRange(a topology.Axis) string {
	if a.Degenerate() {
		return "0"
	}
	return xmltree.JoinFloats(a.Values)
}

func axisValue(a topology.Axis, v float64) string {
	if a.Degenerate() {
		return strconv.Itoa(int(v))
	}
	return xmltree.FormatFloat(v)
}
