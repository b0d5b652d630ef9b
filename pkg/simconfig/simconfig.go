// Package simconfig writes the simulator's run configuration (config.xml).
package simconfig

import (
	"strconv"

	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/xmltree"
)

// Fixed paths the simulator resolves relative to its working directory.
const (
	NetworkFile    = "config/network.xml"
	DataFile       = "config/data.xml"
	MapFile        = "config/map.xml"
	SimulationFile = "traffic/pipelinePerformance_2D/PipelineResetTB.xml"
	MappingFile    = "traffic/pipelinePerformance_2D/PipelineResetTBMapping.xml"
	NetraceFile    = "traffic/netrace/example.tra.bz2"
)

// Phase is a synthetic traffic phase.
type Phase struct {
	Name     string
	Start    [2]int
	Duration [2]int
}

// DefaultPhases is the warmup/run template written for synthetic benchmarks.
var DefaultPhases = []Phase{
	{Name: "warmup", Start: [2]int{100, 100}, Duration: [2]int{1090, 1090}},
	{Name: "run", Start: [2]int{1100, 1100}, Duration: [2]int{101100, 101100}},
}

// Tree builds the configuration document for sim.
func Tree(sim config.Simulation) *xmltree.Element {
	root := xmltree.NewDocument("configuration")

	general := root.Add("general")
	general.AddValue("simulationTime", strconv.Itoa(sim.SimulationTime))
	general.AddValue("outputToFile", "true").SetText("report")

	noc := root.Add("noc")
	noc.Add("nocFile").SetText(NetworkFile)
	noc.AddValue("flitsPerPacket", strconv.Itoa(sim.FlitsPerPacket))
	noc.AddValue("bitWidth", strconv.Itoa(sim.BitWidth))
	noc.AddValue("Vdd", "5")

	writeApplication(root.Add("application"), sim)
	writeVerbose(root.Add("verbose"))

	report := root.Add("report")
	report.Add("bufferReportRouters").SetText(xmltree.JoinInts(sim.BufferReportRouters))
	return root
}

// Marshal returns the configuration document for sim.
func Marshal(sim config.Simulation) []byte {
	return xmltree.Marshal(Tree(sim))
}

func writeApplication(app *xmltree.Element, sim config.Simulation) {
	app.Add("benchmark").SetText(sim.Benchmark)
	switch sim.Benchmark {
	case config.BenchmarkSynthetic:
		synthetic := app.Add("synthetic")
		for _, p := range DefaultPhases {
			writePhase(synthetic, p)
		}
	case config.BenchmarkTask:
		app.Add("dataFile").SetText(DataFile)
		app.Add("mapFile").SetText(MapFile)
	}
	app.Add("simulationFile").SetText(SimulationFile)
	app.Add("mappingFile").SetText(MappingFile)
	app.Add("netraceFile").SetText(NetraceFile)
	app.AddValue("netraceStartRegion", "0")
	app.AddValue("isUniform", "false")
	app.AddValue("numberOfTrafficTypes", "5")
}

func writePhase(parent *xmltree.Element, p Phase) {
	phase := parent.Add("phase").Set("name", p.Name)
	phase.AddValue("distribution", "uniform")
	minMax(phase, "start", p.Start[0], p.Start[1])
	minMax(phase, "duration", p.Duration[0], p.Duration[1])
	minMax(phase, "repeat", -1, -1)
	minMax(phase, "delay", 0, 0)
	phase.AddValue("injectionRate", "0.002")
	minMax(phase, "count", 1, 1)
	phase.AddValue("hotspot", "0")
}

func minMax(parent *xmltree.Element, name string, lo, hi int) {
	parent.Add(name).Set("min", strconv.Itoa(lo)).Set("max", strconv.Itoa(hi))
}

type flag struct {
	name  string
	value bool
}

func flags(parent *xmltree.Element, fs ...flag) {
	for _, f := range fs {
		parent.AddValue(f.name, strconv.FormatBool(f.value))
	}
}

func writeVerbose(verbose *xmltree.Element) {
	nodeFlags := []flag{
		{"function_calls", false},
		{"send_flit", false},
		{"send_head_flit", true},
		{"receive_flit", false},
		{"receive_tail_flit", true},
		{"throttle", false},
		{"reset", false},
	}
	flags(verbose.Add("processingElements"), nodeFlags...)
	flags(verbose.Add("router"), append(nodeFlags,
		flag{"assign_channel", false},
		flag{"buffer_overflow", true},
	)...)
	flags(verbose.Add("netrace"),
		flag{"inject", true},
		flag{"eject", true},
		flag{"router_receive", true},
	)
	flags(verbose.Add("tasks"),
		flag{"function_calls", true},
		flag{"xml_parse", false},
		flag{"data_receive", true},
		flag{"data_send", true},
		flag{"source_execute", false},
	)
}
