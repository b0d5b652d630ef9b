package cache

import "github.com/matzehuels/nocgen/pkg/config"

// keyVersion changes whenever the stored artifact format changes, so old
// entries are never decoded as new ones.
const keyVersion = "v1"

// Keyer derives cache keys from generation inputs.
type Keyer interface {
	// NetworkKey identifies a network descriptor.
	NetworkKey(cfg config.Config) string

	// SimConfigKey identifies a simulator configuration document.
	SimConfigKey(sim config.Simulation) string

	// ArtifactKey identifies a rendered diagram of a network.
	ArtifactKey(networkKey, format string) string
}

// DefaultKeyer hashes the canonical JSON form of its inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// NetworkKey implements Keyer.
func (DefaultKeyer) NetworkKey(cfg config.Config) string {
	return hashKey("network:"+keyVersion, cfg)
}

// SimConfigKey implements Keyer.
func (DefaultKeyer) SimConfigKey(sim config.Simulation) string {
	return hashKey("simconfig:"+keyVersion, sim)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(networkKey, format string) string {
	return hashKey("artifact:"+keyVersion, networkKey, format)
}

// ScopedKeyer prefixes every key of an inner Keyer so that several
// consumers can share one backend without colliding:
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// NetworkKey implements Keyer.
func (k *ScopedKeyer) NetworkKey(cfg config.Config) string {
	return k.prefix + k.inner.NetworkKey(cfg)
}

// SimConfigKey implements Keyer.
func (k *ScopedKeyer) SimConfigKey(sim config.Simulation) string {
	return k.prefix + k.inner.SimConfigKey(sim)
}

// ArtifactKey implements Keyer. The network key is already scoped.
func (k *ScopedKeyer) ArtifactKey(networkKey, format string) string {
	return k.prefix + k.inner.ArtifactKey(networkKey, format)
}
