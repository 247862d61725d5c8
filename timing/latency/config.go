package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds execution latencies for the three trace operation types.
type Config struct {
	// Type0Latency is the execute latency for type-0 operations.
	// Default: 1 cycle.
	Type0Latency int `json:"type0_latency"`

	// Type1Latency is the execute latency for type-1 operations.
	// Default: 2 cycles.
	Type1Latency int `json:"type1_latency"`

	// Type2Latency is the execute latency for type-2 operations.
	// Default: 5 cycles.
	Type2Latency int `json:"type2_latency"`
}

// DefaultConfig returns a Config with the standard 1/2/5 latencies.
func DefaultConfig() *Config {
	return &Config{
		Type0Latency: 1,
		Type1Latency: 2,
		Type2Latency: 5,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read latency config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse latency config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize latency config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write latency config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *Config) Validate() error {
	if c.Type0Latency <= 0 {
		return fmt.Errorf("type0_latency must be > 0")
	}
	if c.Type1Latency <= 0 {
		return fmt.Errorf("type1_latency must be > 0")
	}
	if c.Type2Latency <= 0 {
		return fmt.Errorf("type2_latency must be > 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		Type0Latency: c.Type0Latency,
		Type1Latency: c.Type1Latency,
		Type2Latency: c.Type2Latency,
	}
}
