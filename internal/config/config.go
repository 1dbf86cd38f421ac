// Package config provides configuration management for the recew command line client.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/GnDu/RECEW/internal/ai"
	"github.com/GnDu/RECEW/internal/telemetry"
)

const (
	DefaultKeyFile     = "resources/claude3.txt"
	DefaultModel       = string(ai.ModelClaude3Haiku)
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.2
)

// Config holds the configuration for the client
type Config struct {
	KeyFile   string `toml:"key_file"`
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`

	Temperature *float64 `toml:"temperature"`
	TopP        *float64 `toml:"top_p"`
	TopK        int64    `toml:"top_k"`

	SystemPrompt  string   `toml:"system_prompt"`
	StopSequences []string `toml:"stop_sequences"`

	Debug     bool      `toml:"debug"`
	Telemetry Telemetry `toml:"telemetry"`
}

type Telemetry struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

// Default returns the demo configuration: Claude 3 Haiku, 1024 tokens, temperature 0.2
func Default() Config {
	temperature := DefaultTemperature
	return Config{
		KeyFile:     DefaultKeyFile,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: &temperature,
	}
}

// LoadFile reads a TOML file on top of the defaults. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config file '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("unknown keys in config file '%s': %s", path, strings.Join(keys, ", "))
	}
	return config, nil
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	if c.KeyFile == "" {
		return fmt.Errorf("missing required setting: key_file")
	}
	if c.TopP == nil && c.Temperature == nil {
		return fmt.Errorf("one of temperature or top_p must be set")
	}
	return c.Settings().Validate()
}

func (c Config) Settings() ai.Settings {
	return ai.Settings{
		Model:         anthropic.Model(c.Model),
		MaxTokens:     c.MaxTokens,
		TopP:          c.TopP,
		Temperature:   c.Temperature,
		SystemPrompt:  c.SystemPrompt,
		StopSequences: c.StopSequences,
		TopK:          c.TopK,
	}
}

func (c Config) TelemetryConfig() telemetry.TelemetryConfig {
	return telemetry.TelemetryConfig{
		Enabled:  c.Telemetry.Enabled,
		Endpoint: c.Telemetry.Endpoint,
		Insecure: c.Telemetry.Insecure,
	}
}
