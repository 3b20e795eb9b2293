// Package config loads the tunable knobs for the bus and clock packages
// from TOML or YAML files, with environment-variable overrides and
// optional file-watch hot reload.
package config

// BusConfig carries the MessageBus's non-identity-affecting tunables,
// grounded on modules/eventbus/config.go's struct-tag style.
type BusConfig struct {
	// DefaultPriority is used when a caller subscribes without an
	// explicit priority.
	DefaultPriority int `json:"defaultPriority" yaml:"defaultPriority" toml:"default_priority" env:"DEFAULT_PRIORITY"`

	// PatternsCacheSize bounds the LRU cache of resolved topic->subscriber
	// lists (spec.md §4.5's "patterns" cache).
	PatternsCacheSize int `json:"patternsCacheSize" yaml:"patternsCacheSize" toml:"patterns_cache_size" env:"PATTERNS_CACHE_SIZE"`
}

// DefaultBusConfig returns the conservative defaults used when no config
// file is supplied.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		DefaultPriority:   0,
		PatternsCacheSize: 1024,
	}
}

// ClockConfig carries LiveClock's non-identity-affecting tunables.
type ClockConfig struct {
	// ResolutionMs is the nominal scheduling resolution reported by
	// LiveClock.Resolution(); it does not change actual sleep precision.
	ResolutionMs int `json:"resolutionMs" yaml:"resolutionMs" toml:"resolution_ms" env:"RESOLUTION_MS"`
}

// DefaultClockConfig returns the conservative defaults used when no config
// file is supplied.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{ResolutionMs: 1}
}
