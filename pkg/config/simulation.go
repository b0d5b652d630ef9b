package config

import "github.com/matzehuels/nocgen/pkg/errors"

// Benchmark kinds understood by the simulator.
const (
	BenchmarkSynthetic = "synthetic"
	BenchmarkTask      = "task"
)

// Simulation holds the run parameters written to the simulator's config.xml.
type Simulation struct {
	SimulationTime      int    `toml:"simulation_time" json:"simulation_time,omitempty"`
	FlitsPerPacket      int    `toml:"flits_per_packet" json:"flits_per_packet,omitempty"`
	BitWidth            int    `toml:"bit_width" json:"bit_width,omitempty"`
	Benchmark           string `toml:"benchmark" json:"benchmark,omitempty"`
	BufferReportRouters []int  `toml:"buffer_report_routers" json:"buffer_report_routers,omitempty"`
}

// SetDefaults fills unset simulation fields.
func (s *Simulation) SetDefaults() {
	if s.SimulationTime == 0 {
		s.SimulationTime = 100000
	}
	if s.FlitsPerPacket == 0 {
		s.FlitsPerPacket = 32
	}
	if s.BitWidth == 0 {
		s.BitWidth = 32
	}
	if s.Benchmark == "" {
		s.Benchmark = BenchmarkSynthetic
	}
}

// Validate checks the simulation parameters.
func (s Simulation) Validate() error {
	if s.SimulationTime < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation_time must be positive, got %d", s.SimulationTime)
	}
	if s.FlitsPerPacket < 1 || s.BitWidth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "flits_per_packet and bit_width must be positive")
	}
	switch s.Benchmark {
	case BenchmarkSynthetic, BenchmarkTask:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown benchmark %q (must be synthetic or task)", s.Benchmark)
	}
	return nil
}
