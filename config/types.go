package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultDebounceMs is the debounce delay applied to raw filesystem
	// events when none is configured.
	DefaultDebounceMs = 300

	// MaxDebounceMs is the upper clamp for the configured debounce delay.
	MaxDebounceMs = 2000

	// DefaultStatusPollMs is the interval at which the structured git-status
	// feed is polled when none is configured.
	DefaultStatusPollMs = 500
)

// Config represents the lookout.yml configuration file.
type Config struct {
	Version string `yaml:"version" toml:"version"`

	// IncludePatterns are explicit globs that force tracking of matching
	// files even when an ignore rule would exclude them.
	IncludePatterns []string `yaml:"include_patterns,omitempty" toml:"include_patterns,omitempty"`

	// DebounceMs is the quiet period applied to raw filesystem events before
	// a change is reported. Clamped to [0, 2000].
	DebounceMs *int `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty"`

	// StatusPollMs is the polling interval for the structured git-status feed.
	StatusPollMs int `yaml:"status_poll_ms,omitempty" toml:"status_poll_ms,omitempty"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.StatusPollMs <= 0 {
		c.StatusPollMs = DefaultStatusPollMs
	}
}

// DebounceDelay returns the configured debounce delay clamped to the
// supported range. A malformed value is clamped, never rejected.
func (c *Config) DebounceDelay() time.Duration {
	ms := DefaultDebounceMs
	if c.DebounceMs != nil {
		ms = *c.DebounceMs
	}
	if ms < 0 {
		ms = 0
	}
	if ms > MaxDebounceMs {
		ms = MaxDebounceMs
	}
	return time.Duration(ms) * time.Millisecond
}

// StatusPollInterval returns the structured-feed polling interval.
func (c *Config) StatusPollInterval() time.Duration {
	if c.StatusPollMs <= 0 {
		return DefaultStatusPollMs * time.Millisecond
	}
	return time.Duration(c.StatusPollMs) * time.Millisecond
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded lookout.yml into the provided target struct. The target must be a
// pointer. This provides a type-safe way for extensions to access their
// custom configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
