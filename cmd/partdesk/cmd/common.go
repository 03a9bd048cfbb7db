package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mfalkner/partdesk/internal/assistant"
	"github.com/mfalkner/partdesk/internal/config"
	"github.com/mfalkner/partdesk/internal/logging"
)

// loadConfig loads the merged configuration using the shared viper instance
// so CLI flags and PARTDESK_* env vars take effect.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader.Load()
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// newAssistant builds the assistant HTTP client from config.
func newAssistant(cfg *config.Config, logger *logging.Logger) (*assistant.Client, error) {
	client, err := assistant.New(assistant.Config{
		BaseURL: cfg.Assistant.BaseURL,
		Timeout: cfg.Assistant.Timeout,
	}, assistant.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating assistant client: %w", err)
	}
	return client, nil
}
