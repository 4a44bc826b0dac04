// Package config holds the tunable decoding parameters shared by the two
// collector binaries. Fields are pointers so a partial JSON file only
// overrides what it names; the Get* accessors supply defaults for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/tempframe"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/validate"
)

// Defaults applied when a field is absent from the config file.
const (
	DefaultLineBufferSize = 1000
	DefaultFrameRetention = tempframe.DefaultRetention
	DefaultChunkSize      = 32
	DefaultPollInterval   = 15 * time.Minute
	DefaultSettleDelay    = 200 * time.Millisecond
)

// Config represents the collector tuning parameters. Durations are
// strings like "200ms" or "15m".
type Config struct {
	// Flow pipeline params
	LineBufferSize *int `json:"line_buffer_size,omitempty"`

	// Temperature pipeline params
	FrameRetention *int     `json:"frame_retention,omitempty"`
	ChunkSize      *int     `json:"chunk_size,omitempty"`
	PollInterval   *string  `json:"poll_interval,omitempty"`
	SettleDelay    *string  `json:"settle_delay,omitempty"`
	TempMin        *float64 `json:"temp_min,omitempty"`
	TempMax        *float64 `json:"temp_max,omitempty"`
}

// Empty returns a Config with all fields unset; every accessor falls back
// to its default.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every set field for consistency.
func (c *Config) Validate() error {
	if c.LineBufferSize != nil && *c.LineBufferSize <= 0 {
		return fmt.Errorf("line_buffer_size must be positive, got %d", *c.LineBufferSize)
	}
	if c.FrameRetention != nil && *c.FrameRetention < tempframe.FrameLen {
		return fmt.Errorf("frame_retention must hold at least one frame (%d bytes), got %d",
			tempframe.FrameLen, *c.FrameRetention)
	}
	if c.ChunkSize != nil && *c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", *c.ChunkSize)
	}
	if c.PollInterval != nil {
		d, err := time.ParseDuration(*c.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval %q: %w", *c.PollInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("poll_interval must be positive, got %s", d)
		}
	}
	if c.SettleDelay != nil {
		d, err := time.ParseDuration(*c.SettleDelay)
		if err != nil {
			return fmt.Errorf("invalid settle_delay %q: %w", *c.SettleDelay, err)
		}
		if d < 0 {
			return fmt.Errorf("settle_delay must not be negative, got %s", d)
		}
	}
	lo, hi := c.GetTempRange().Low, c.GetTempRange().High
	if lo >= hi {
		return fmt.Errorf("temperature range [%g, %g] is empty", lo, hi)
	}
	return nil
}

// GetLineBufferSize returns the flow pipeline's line buffer capacity.
func (c *Config) GetLineBufferSize() int {
	if c.LineBufferSize != nil {
		return *c.LineBufferSize
	}
	return DefaultLineBufferSize
}

// GetFrameRetention returns the retained byte window for frame scanning.
func (c *Config) GetFrameRetention() int {
	if c.FrameRetention != nil {
		return *c.FrameRetention
	}
	return DefaultFrameRetention
}

// GetChunkSize returns the per-cycle serial read size.
func (c *Config) GetChunkSize() int {
	if c.ChunkSize != nil {
		return *c.ChunkSize
	}
	return DefaultChunkSize
}

// GetPollInterval returns the delay between temperature poll cycles.
// Validate has already checked parseability for loaded configs.
func (c *Config) GetPollInterval() time.Duration {
	if c.PollInterval != nil {
		if d, err := time.ParseDuration(*c.PollInterval); err == nil {
			return d
		}
	}
	return DefaultPollInterval
}

// GetSettleDelay returns the wait between poll command and response read.
func (c *Config) GetSettleDelay() time.Duration {
	if c.SettleDelay != nil {
		if d, err := time.ParseDuration(*c.SettleDelay); err == nil {
			return d
		}
	}
	return DefaultSettleDelay
}

// GetTempRange returns the accepted temperature range.
func (c *Config) GetTempRange() validate.Range {
	r := validate.TemperatureRange
	if c.TempMin != nil {
		r.Low = *c.TempMin
	}
	if c.TempMax != nil {
		r.High = *c.TempMax
	}
	return r
}
