package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GnDu/RECEW/internal/config"
	"github.com/GnDu/RECEW/internal/logger"
)

var (
	cfg config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "recew",
	Short: "Minimal conversational client for Claude",
	Long: `recew keeps a turn-by-turn conversation with Claude. Every request replays the whole
transcript and the reply is folded back into it.

The API key is read from a plain text file. A .env file in the working directory is loaded
before the client starts, so variables understood by the Anthropic SDK (ANTHROPIC_BASE_URL)
can be set there.`,
	PersistentPreRunE: loadRootConfig,
	SilenceUsage:      true,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	envErr := godotenv.Load()

	resolved, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg = resolved
	log = logger.NewLogger(cfg.Debug)

	if envErr != nil {
		log.Debug("No .env file found, using environment variables")
	}
	return nil
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to a TOML config file")
	f.StringVar(&flagValues.KeyFile, "key-file", config.DefaultKeyFile, "File containing the Anthropic API key")
	f.StringVar(&flagValues.Model, "model", config.DefaultModel, "Model identifier")
	f.Int64Var(&flagValues.MaxTokens, "max-tokens", config.DefaultMaxTokens, "Maximum number of output tokens per reply")
	f.Float64Var(&temperature, "temperature", config.DefaultTemperature, "Sampling temperature")
	f.Float64Var(&topP, "top-p", 0, "Nucleus sampling; overrides --temperature when set")
	f.Int64Var(&flagValues.TopK, "top-k", 0, "Only sample from the top K options for each token")
	f.StringVar(&flagValues.SystemPrompt, "system", "", "System prompt")
	f.StringSliceVar(&flagValues.StopSequences, "stop", nil, "Stop sequence; may be repeated")
	f.BoolVar(&flagValues.Debug, "debug", false, "Enable debug logging")
	f.BoolVar(&flagValues.Telemetry.Enabled, "telemetry", false, "Export traces over OTLP/HTTP")
	f.StringVar(&flagValues.Telemetry.Endpoint, "telemetry-endpoint", "", "OTLP/HTTP collector host:port")
}
