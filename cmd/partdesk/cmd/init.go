package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mfalkner/partdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file to .partdesk/config.yaml in the
current directory.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}

// initFileConfig mirrors config.Config with yaml tags and string durations
// so the generated file reads naturally.
type initFileConfig struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Assistant struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"assistant"`
	Serve struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		EnableCORS bool   `yaml:"enable_cors"`
	} `yaml:"serve"`
	Chat struct {
		TranscriptDir string `yaml:"transcript_dir"`
	} `yaml:"chat"`
}

func runInit(_ *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, ".partdesk")
	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration already exists at %s, use --force to overwrite", configPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaults := config.Default()
	var out initFileConfig
	out.Log.Level = defaults.Log.Level
	out.Log.Format = defaults.Log.Format
	out.Assistant.BaseURL = defaults.Assistant.BaseURL
	out.Assistant.Timeout = defaults.Assistant.Timeout.String()
	out.Serve.Host = defaults.Serve.Host
	out.Serve.Port = defaults.Serve.Port
	out.Serve.EnableCORS = defaults.Serve.EnableCORS
	out.Chat.TranscriptDir = defaults.Chat.TranscriptDir

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	header := []byte("# PartDesk configuration\n\n")

	if err := renameio.WriteFile(configPath, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote %s\n", configPath)
	return nil
}
