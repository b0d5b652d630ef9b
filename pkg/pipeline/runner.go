package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/network"
	"github.com/matzehuels/nocgen/pkg/observability"
	"github.com/matzehuels/nocgen/pkg/simconfig"
	"github.com/matzehuels/nocgen/pkg/topology"
)

// Cache key types reported to observability hooks.
const (
	keyTypeNetwork   = "network"
	keyTypeSimConfig = "simconfig"
	keyTypeArtifact  = "artifact"
)

// Runner encapsulates generation with caching.
// Both CLI and API use it so that caching and hooks behave the same.
//
// The Runner holds no per-run state, so multiple goroutines can safely
// share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Parallel runs edge discovery passes concurrently.
	Parallel bool

	// Refresh skips cache reads but still writes results.
	Refresh bool
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Prepare applies defaults to cfg and checks it, including the topology
// preconditions. Every error is an *errors.Error with a configuration code.
func Prepare(cfg config.Config) (config.Config, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := topology.Validate(cfg.Topology, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// cachedNetwork is the stored form of a generated document.
type cachedNetwork struct {
	XML     []byte          `json:"xml"`
	Summary network.Summary `json:"summary"`
}

// Generate validates cfg and produces the network-on-chip document.
// Nothing is built when validation fails.
func (r *Runner) Generate(ctx context.Context, cfg config.Config) (*Result, error) {
	cfg, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		RunID:      uuid.NewString(),
		NetworkKey: r.Keyer.NetworkKey(cfg),
	}
	logger := r.Logger.With("run", res.RunID[:8], "topology", cfg.Topology)
	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, string(cfg.Topology), cfg.RouterCount())

	if !r.Refresh {
		if entry, ok := r.lookupNetwork(ctx, res.NetworkKey); ok {
			res.XML = entry.XML
			res.Summary = entry.Summary
			res.CacheHit = true
			res.Stats = statsOf(entry.Summary, time.Since(start))
			logger.Debug("network from cache", "key", res.NetworkKey)
			hooks.OnGenerateComplete(ctx, string(cfg.Topology), res.Stats.Nodes, res.Stats.Edges, res.Stats.Duration, nil)
			return res, nil
		}
	}

	d, err := r.describe(ctx, cfg)
	if err != nil {
		hooks.OnGenerateComplete(ctx, string(cfg.Topology), 0, 0, time.Since(start), err)
		return nil, err
	}
	res.Descriptor = d
	res.Summary = d.Summary()
	res.XML = d.Marshal()
	res.Stats = statsOf(res.Summary, time.Since(start))

	logger.Info("generated network",
		"routers", res.Stats.Routers,
		"nodes", res.Stats.Nodes,
		"connections", res.Stats.Edges,
		"duration", res.Stats.Duration)
	hooks.OnGenerateComplete(ctx, string(cfg.Topology), res.Stats.Nodes, res.Stats.Edges, res.Stats.Duration, nil)

	if data, err := json.Marshal(cachedNetwork{XML: res.XML, Summary: res.Summary}); err == nil {
		r.store(ctx, keyTypeNetwork, res.NetworkKey, data, cache.TTLNetwork)
	}
	return res, nil
}

// Describe validates cfg and builds its descriptor without touching the cache.
func (r *Runner) Describe(ctx context.Context, cfg config.Config) (*network.Descriptor, error) {
	cfg, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}
	return r.describe(ctx, cfg)
}

// Edges validates cfg and returns its coordinate space and edge set.
func (r *Runner) Edges(ctx context.Context, cfg config.Config) (*topology.Space, topology.EdgeSet, error) {
	cfg, err := Prepare(cfg)
	if err != nil {
		return nil, nil, err
	}
	return r.build(ctx, cfg)
}

func (r *Runner) describe(ctx context.Context, cfg config.Config) (*network.Descriptor, error) {
	s, edges, err := r.build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return network.Build(cfg, s, network.Emit(edges, cfg)), nil
}

func (r *Runner) build(ctx context.Context, cfg config.Config) (*topology.Space, topology.EdgeSet, error) {
	if !r.Parallel {
		return topology.Build(cfg)
	}
	b, err := topology.New(cfg.Topology)
	if err != nil {
		return nil, nil, err
	}
	s, err := topology.NewSpace(cfg)
	if err != nil {
		return nil, nil, err
	}
	edges, err := topology.BuildParallel(ctx, b, s)
	if err != nil {
		return nil, nil, err
	}
	return s, edges, nil
}

func (r *Runner) lookupNetwork(ctx context.Context, key string) (cachedNetwork, bool) {
	data, ok := r.lookup(ctx, keyTypeNetwork, key)
	if !ok {
		return cachedNetwork{}, false
	}
	var entry cachedNetwork
	if err := json.Unmarshal(data, &entry); err != nil || len(entry.XML) == 0 {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return cachedNetwork{}, false
	}
	return entry, true
}

// SimConfig validates sim and produces the simulator configuration document.
func (r *Runner) SimConfig(ctx context.Context, sim config.Simulation) ([]byte, error) {
	sim.SetDefaults()
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	key := r.Keyer.SimConfigKey(sim)
	if !r.Refresh {
		if data, ok := r.lookup(ctx, keyTypeSimConfig, key); ok {
			return data, nil
		}
	}
	data := simconfig.Marshal(sim)
	r.store(ctx, keyTypeSimConfig, key, data, cache.TTLSimConfig)
	return data, nil
}

// lookup reads key and reports the outcome to the cache hooks. Cache
// failures are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key; failures are logged, never returned.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
