// Package cache provides pluggable caching for compilation artifacts.
//
// Compiling a block graph is deterministic: the same manifest, convention,
// and scale factor always produce the same circuit. That makes every stage
// of the compiler a natural caching target. This package defines the Cache
// interface, key generation, and the available backends (file, redis, null).
//
// Keys are generated through a Keyer so that CLI and API share the same
// namespace layout and multi-tenant deployments can prefix keys via
// ScopedKeyer.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures, not misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs per artifact class. Compiled circuits are immutable for a given
// key, so the long TTLs exist mainly to bound disk usage, not freshness.
const (
	// TTLGraph applies to parsed block graphs.
	TTLGraph = 24 * time.Hour

	// TTLCircuit applies to compiled circuit text.
	TTLCircuit = 7 * 24 * time.Hour

	// TTLDetectors applies to detector database entries.
	TTLDetectors = 7 * 24 * time.Hour
)

// CircuitKeyOpts captures everything besides the graph that affects the
// compiled circuit.
type CircuitKeyOpts struct {
	K          int64
	Convention string
	Radius     int
	Noise      float64
}

// Keyer generates cache keys for the compiler's artifact classes.
type Keyer interface {
	// GraphKey keys a parsed block graph by the hash of its manifest.
	GraphKey(manifestHash string) string

	// CircuitKey keys a compiled circuit by graph hash and compile options.
	CircuitKey(graphHash string, opts CircuitKeyOpts) string

	// DetectorKey keys a detector database entry by the fingerprint of the
	// measurement rounds it was computed from.
	DetectorKey(fingerprint string, radius int) string
}

// DefaultKeyer generates versioned, hash-based keys.
//
// The version component is bumped whenever the serialized artifact format
// changes, invalidating stale entries without an explicit flush.
type DefaultKeyer struct {
	version string
}

// NewDefaultKeyer creates a keyer with the current format version.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{version: "v1"}
}

// GraphKey generates a key for a parsed block graph.
func (k *DefaultKeyer) GraphKey(manifestHash string) string {
	return hashKey("graph", k.version, manifestHash)
}

// CircuitKey generates a key for a compiled circuit.
func (k *DefaultKeyer) CircuitKey(graphHash string, opts CircuitKeyOpts) string {
	return hashKey("circuit", k.version, graphHash, opts.K, opts.Convention, opts.Radius, opts.Noise)
}

// DetectorKey generates a key for a detector database entry.
func (k *DefaultKeyer) DetectorKey(fingerprint string, radius int) string {
	return hashKey("detectors", k.version, fingerprint, radius)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
