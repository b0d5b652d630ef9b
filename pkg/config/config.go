// Package config defines the network description consumed by the generator.
//
// A Config is loaded once (from TOML or JSON), completed with
// [Config.SetDefaults], checked with [Config.Validate] and then passed by
// value through the rest of the pipeline. Nothing mutates it afterwards.
//
// # File Format
//
//	[network]
//	topology = "mesh"
//	x = [4, 4]
//	y = [4, 4]
//	z = 2
//	routing = "XYZ"
//	clock_delay = [1, 1]
//
//	[simulation]
//	simulation_time = 100000
//	benchmark = "synthetic"
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nocgen/pkg/errors"
)

// Kind names a topology family.
type Kind string

// Supported topology families.
const (
	Mesh  Kind = "mesh"
	Torus Kind = "torus"
	Ring  Kind = "ring"
)

// Kinds lists the supported topology families in display order.
var Kinds = []Kind{Mesh, Torus, Ring}

// ParseKind converts a topology name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Mesh, Torus, Ring:
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidTopology, "unknown topology %q (must be one of: mesh, torus, ring)", s)
}

// Defaults applied by SetDefaults.
const (
	DefaultRouting         = "XYZ"
	DefaultBufferDepthType = "single"
	DefaultBufferDepth     = 4
	DefaultVCCount         = 4
	DefaultClockDelay      = 1
)

// Size limits enforced by Validate. Every router and link is held in memory.
const (
	MaxExtent  = 1024
	MaxRouters = 1 << 16
	MaxVCCount = 64
)

// Config describes one network-on-chip: per-layer extents, topology family
// and the uniform link and router parameters written into the descriptor.
type Config struct {
	Topology        Kind   `toml:"topology" json:"topology"`
	X               []int  `toml:"x" json:"x"`
	Y               []int  `toml:"y" json:"y"`
	Z               int    `toml:"z" json:"z"`
	Routing         string `toml:"routing" json:"routing,omitempty"`
	ClockDelay      []int  `toml:"clock_delay" json:"clock_delay,omitempty"`
	BufferDepthType string `toml:"buffer_depth_type" json:"buffer_depth_type,omitempty"`
	BufferDepth     int    `toml:"buffer_depth" json:"buffer_depth,omitempty"`
	BuffersDepths   string `toml:"buffers_depths" json:"buffers_depths,omitempty"`
	VCCount         int    `toml:"vc_count" json:"vc_count,omitempty"`
}

// File is the on-disk layout: a [network] table and an optional [simulation] table.
type File struct {
	Network    Config     `toml:"network" json:"network"`
	Simulation Simulation `toml:"simulation" json:"simulation"`
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.Z == 0 && len(c.X) > 0 && len(c.X) == len(c.Y) {
		c.Z = len(c.X)
	}
	if c.Routing == "" {
		c.Routing = DefaultRouting
	}
	if c.BufferDepthType == "" {
		c.BufferDepthType = DefaultBufferDepthType
	}
	if c.BufferDepth == 0 {
		c.BufferDepth = DefaultBufferDepth
	}
	if c.VCCount == 0 {
		c.VCCount = DefaultVCCount
	}
	if len(c.ClockDelay) == 0 && c.Z > 0 && c.Z == len(c.X) {
		c.ClockDelay = make([]int, c.Z)
		for i := range c.ClockDelay {
			c.ClockDelay[i] = DefaultClockDelay
		}
	}
	if c.BuffersDepths == "" && c.VCCount > 0 && c.VCCount <= MaxVCCount {
		depths := make([]string, c.VCCount)
		for i := range depths {
			depths[i] = fmt.Sprint(c.BufferDepth)
		}
		c.BuffersDepths = strings.Join(depths, " ")
	}
}

// Validate checks the structural invariants every topology relies on.
// Topology-specific preconditions (torus extents, ring shape) are checked
// by the topology package.
func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Topology)); err != nil {
		return err
	}
	if c.Z < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "z must be at least 1, got %d", c.Z)
	}
	if len(c.X) != c.Z || len(c.Y) != c.Z {
		return errors.New(errors.ErrCodeInvalidConfig,
			"x and y must have one entry per layer: len(x)=%d, len(y)=%d, z=%d", len(c.X), len(c.Y), c.Z)
	}
	if len(c.ClockDelay) != c.Z {
		return errors.New(errors.ErrCodeInvalidConfig,
			"clock_delay must have one entry per layer: got %d, z=%d", len(c.ClockDelay), c.Z)
	}
	routers := 0
	for i := 0; i < c.Z; i++ {
		if c.X[i] < 1 || c.Y[i] < 1 {
			return errors.New(errors.ErrCodeInvalidConfig,
				"layer %d: extents must be positive, got x=%d y=%d", i, c.X[i], c.Y[i])
		}
		if c.X[i] > MaxExtent || c.Y[i] > MaxExtent {
			return errors.New(errors.ErrCodeInvalidConfig,
				"layer %d: extents must be at most %d, got x=%d y=%d", i, MaxExtent, c.X[i], c.Y[i])
		}
		// Factors are bounded above, so neither term overflows.
		routers += c.X[i] * c.Y[i]
		if routers > MaxRouters {
			return errors.New(errors.ErrCodeInvalidConfig,
				"network exceeds %d routers (reached %d by layer %d)", MaxRouters, routers, i)
		}
	}
	if c.BufferDepth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "buffer_depth must be positive, got %d", c.BufferDepth)
	}
	if c.VCCount < 1 || c.VCCount > MaxVCCount {
		return errors.New(errors.ErrCodeInvalidConfig, "vc_count must be between 1 and %d, got %d", MaxVCCount, c.VCCount)
	}
	return errors.ValidateRoutingName(c.Routing)
}

// RouterCount returns the number of router nodes, the sum of x[i]*y[i].
func (c Config) RouterCount() int {
	n := 0
	for i := range c.X {
		if i < len(c.Y) {
			n += c.X[i] * c.Y[i]
		}
	}
	return n
}

// Load reads a config file, choosing the decoder from the file extension.
// Defaults are applied but the result is not validated.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return File{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		f, err = DecodeTOML(data)
	case ".json":
		f, err = DecodeJSON(data)
	default:
		return File{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config extension %q (use .toml or .json)", ext)
	}
	if err != nil {
		return File{}, err
	}
	return f, nil
}

// DecodeTOML parses a TOML document and applies defaults.
func DecodeTOML(data []byte) (File, error) {
	var f File
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return File{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	f.Network.Topology = Kind(strings.ToLower(string(f.Network.Topology)))
	f.Network.SetDefaults()
	f.Simulation.SetDefaults()
	return f, nil
}

// DecodeJSON parses a JSON document and applies defaults.
func DecodeJSON(data []byte) (File, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON config")
	}
	f.Network.Topology = Kind(strings.ToLower(string(f.Network.Topology)))
	f.Network.SetDefaults()
	f.Simulation.SetDefaults()
	return f, nil
}
