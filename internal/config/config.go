package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	APIKey          string     // BFL API key, sent as the x-key header
	OutputPath      string     // Default directory for saved images
	BaseURL         string     // BFL API base URL
	LogLevel        slog.Level // Parsed from -log-level
	TimeoutSec      int        // Wall-clock ceiling for a generation task, in seconds
	PollIntervalSec int        // Delay between status polls, in seconds
	logLevelStr     string     // Temporary storage for the flag string
}

// ErrAPIKeyMissing indicates that neither the -api-key flag nor the
// BFL_API_KEY environment variable was provided.
var ErrAPIKeyMissing = errors.New("required flag -api-key (or BFL_API_KEY environment variable) is missing")

// LoadConfig loads configuration from command-line flags with environment
// variable fallbacks for the API key and output directory.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	cfg := &Config{}

	// Use a new FlagSet so parsing does not interfere with other packages'
	// flags or tests running in parallel.
	fs := flag.NewFlagSet("bfl-mcp-server", flag.ContinueOnError)

	fs.StringVar(&cfg.APIKey, "api-key", "", "BFL API key (required; falls back to BFL_API_KEY)")
	fs.StringVar(&cfg.OutputPath, "output-path", "", "Default directory for saved images (falls back to BFL_OUTPUT_DIR, then the OS temp dir)")
	fs.StringVar(&cfg.BaseURL, "base-url", "https://api.bfl.ai", "BFL API base URL")
	fs.StringVar(&cfg.logLevelStr, "log-level", "INFO", "Logging level (DEBUG, INFO, WARN, ERROR)")
	fs.IntVar(&cfg.TimeoutSec, "timeout", 300, "Maximum time to wait for a generation task, in seconds")
	fs.IntVar(&cfg.PollIntervalSec, "poll-interval", 2, "Delay between task status polls, in seconds")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	switch strings.ToUpper(cfg.logLevelStr) {
	case "DEBUG":
		cfg.LogLevel = slog.LevelDebug
	case "INFO":
		cfg.LogLevel = slog.LevelInfo
	case "WARN":
		cfg.LogLevel = slog.LevelWarn
	case "ERROR":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("BFL_API_KEY")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = os.Getenv("BFL_OUTPUT_DIR")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = os.TempDir()
	}

	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return cfg, nil
}
