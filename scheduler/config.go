package scheduler

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameBudget      = 5 * time.Millisecond
	DefaultMaxSliceDuration = 300 * time.Millisecond
)

// Config holds the scheduler tunables.
type Config struct {
	FrameBudget      time.Duration `yaml:"frameBudget"`
	MaxSliceDuration time.Duration `yaml:"maxSliceDuration"`
	Timeouts         Timeouts      `yaml:"timeouts"`
}

func DefaultConfig() Config {
	return Config{
		FrameBudget:      DefaultFrameBudget,
		MaxSliceDuration: DefaultMaxSliceDuration,
		Timeouts:         DefaultTimeouts(),
	}
}

func (c Config) Validate() error {
	if c.FrameBudget <= 0 {
		return fmt.Errorf("%w: frameBudget must be positive, got %s", ErrInvalidConfig, c.FrameBudget)
	}
	if c.MaxSliceDuration < c.FrameBudget {
		return fmt.Errorf("%w: maxSliceDuration %s is shorter than frameBudget %s", ErrInvalidConfig, c.MaxSliceDuration, c.FrameBudget)
	}

	t := c.Timeouts
	if !(t.Immediate <= t.UserBlocking && t.UserBlocking <= t.Normal && t.Normal <= t.Low && t.Low <= t.Idle) {
		return fmt.Errorf("%w: timeouts must not decrease with priority", ErrInvalidConfig)
	}

	return nil
}

// LoadConfig decodes a YAML document on top of DefaultConfig, so omitted
// fields keep their defaults. Durations use Go syntax ("5ms").
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
