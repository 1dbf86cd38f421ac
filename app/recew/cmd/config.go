package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GnDu/RECEW/internal/config"
)

// Flag destinations. Only flags the user actually set override the config file.
var (
	configPath string
	flagValues = config.Default()

	temperature float64
	topP        float64
)

// resolveConfig layers the config file, then environment overrides, then explicitly set flags
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	loadOptionalFromEnv(&cfg.KeyFile, "RECEW_KEY_FILE")
	loadOptionalFromEnv(&cfg.Model, "RECEW_MODEL")
	err := parseOptionalFromEnv(&cfg.MaxTokens, "RECEW_MAX_TOKENS", func(v string) (int64, error) {
		return strconv.ParseInt(v, 10, 64)
	})
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("key-file") {
		cfg.KeyFile = flagValues.KeyFile
	}
	if flags.Changed("model") {
		cfg.Model = flagValues.Model
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = flagValues.MaxTokens
	}
	if flags.Changed("temperature") {
		t := temperature
		cfg.Temperature = &t
	}
	if flags.Changed("top-p") {
		p := topP
		cfg.TopP = &p
	}
	if flags.Changed("top-k") {
		cfg.TopK = flagValues.TopK
	}
	if flags.Changed("system") {
		cfg.SystemPrompt = flagValues.SystemPrompt
	}
	if flags.Changed("stop") {
		cfg.StopSequences = flagValues.StopSequences
	}
	if flags.Changed("debug") {
		cfg.Debug = flagValues.Debug
	}
	if flags.Changed("telemetry") {
		cfg.Telemetry.Enabled = flagValues.Telemetry.Enabled
	}
	if flags.Changed("telemetry-endpoint") {
		cfg.Telemetry.Endpoint = flagValues.Telemetry.Endpoint
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadOptionalFromEnv(dest *string, key string) {
	_ = parseOptionalFromEnv(dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) error {
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}
