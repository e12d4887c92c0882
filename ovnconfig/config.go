// Package ovnconfig provides the typed configuration surface for the
// LFC and its adapters, a plain struct of tunables in the style of the
// teacher's fs.Options/nodefs.Options rather than a generic key-value
// bag.
package ovnconfig

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// configurable is implemented by lflowcache.Cache; declared here rather
// than imported to avoid a dependency from ovnconfig back onto
// lflowcache.
type configurable interface {
	Configure(enabled bool, capacity uint32, maxKiB uint64)
}

// Apply pushes the config onto a Cache via its Configure method, saving
// callers from unpacking the three fields by hand at each call site.
func (c LFCConfig) Apply(cache configurable) {
	cache.Configure(c.Enabled, c.Capacity, c.MaxMemKiB)
}

// LFCConfig holds the logical-flow cache's runtime tunables, set once
// at controller startup.
type LFCConfig struct {
	// Enabled mirrors the "lflow-cache" northbound setting (spec.md §6
	// compat_lflow_cache_*); if false, the Cache.AddX calls reject every
	// entry and Cache.Get always reports not found.
	Enabled bool

	// Capacity bounds the number of entries the cache may hold. Cache.Configure
	// treats this as a hard cap with no sentinel value (spec.md §4.2:
	// create() itself yields zero capacity precisely so a freshly
	// created, unconfigured cache admits nothing) — to leave entry
	// count effectively unbounded, set this to math.MaxUint32 rather
	// than 0.
	Capacity uint32

	// MaxMemKiB bounds the cache's tracked byte size, also a hard cap
	// with no "0 means unbounded" sentinel; use a large value to leave
	// it effectively unbounded.
	MaxMemKiB uint64
}

// DefaultLFCConfig matches ovn-controller's compiled-in defaults: the
// cache is enabled, capacity is effectively unbounded by entry count,
// and bounded to 512 MiB by tracked size.
func DefaultLFCConfig() LFCConfig {
	return LFCConfig{
		Enabled:   true,
		Capacity:  math.MaxUint32,
		MaxMemKiB: 512 * 1024,
	}
}

// FromEnv overlays DefaultLFCConfig with <prefix>_ENABLED,
// <prefix>_CAPACITY, and <prefix>_MAX_MEM_KIB environment variables
// when present, returning an error if any set variable fails to parse.
// An unset variable leaves the corresponding default untouched.
func FromEnv(prefix string) (LFCConfig, error) {
	cfg := DefaultLFCConfig()

	if v, ok := os.LookupEnv(prefix + "_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return LFCConfig{}, fmt.Errorf("ovnconfig: parsing %s_ENABLED: %w", prefix, err)
		}
		cfg.Enabled = b
	}

	if v, ok := os.LookupEnv(prefix + "_CAPACITY"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return LFCConfig{}, fmt.Errorf("ovnconfig: parsing %s_CAPACITY: %w", prefix, err)
		}
		cfg.Capacity = uint32(n)
	}

	if v, ok := os.LookupEnv(prefix + "_MAX_MEM_KIB"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return LFCConfig{}, fmt.Errorf("ovnconfig: parsing %s_MAX_MEM_KIB: %w", prefix, err)
		}
		cfg.MaxMemKiB = n
	}

	return cfg, nil
}
