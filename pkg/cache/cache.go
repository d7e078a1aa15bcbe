// Package cache stores solve results and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// All backends are safe for concurrent use.
//
// # Keys
//
// A [Keyer] turns a netlist content hash plus the options that influence
// the result into a key. Solver options that do not change the equivalent
// resistances (the picker seed) still change the reduction trace and the
// solved network's layout, so they are part of the key.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLSolve  = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SolveKey identifies the solved network of a netlist.
	SolveKey(netlistHash string, opts SolveKeyOpts) string

	// RenderKey identifies a rendered image of a netlist.
	RenderKey(netlistHash string, opts RenderKeyOpts) string
}

// SolveKeyOpts are the solver options that shape a result.
type SolveKeyOpts struct {
	Random        bool   `json:"random,omitempty"`
	Seed          uint64 `json:"seed,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

// RenderKeyOpts are the rendering options that shape an artifact.
type RenderKeyOpts struct {
	Format string        `json:"format"`
	Solved bool          `json:"solved,omitempty"`
	Solve  *SolveKeyOpts `json:"solve,omitempty"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SolveKey returns "solve:<sha256>".
func (DefaultKeyer) SolveKey(netlistHash string, opts SolveKeyOpts) string {
	return hashKey("solve", netlistHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(netlistHash string, opts RenderKeyOpts) string {
	return hashKey("render", netlistHash, opts)
}
