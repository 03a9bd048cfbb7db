package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "PARTDESK",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance. This
// allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "PARTDESK",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
//  1. CLI flags (set via viper.BindPFlag)
//  2. Environment variables (PARTDESK_*)
//  3. Project config (.partdesk/config.yaml in current directory)
//  4. User config (~/.config/partdesk/config.yaml)
//  5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".partdesk")
		l.v.AddConfigPath("$HOME/.config/partdesk")
	}

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicit --config that does not exist is an error too.
			if l.configFile == "" {
				return nil, fmt.Errorf("reading config: %w", err)
			}
			return nil, fmt.Errorf("reading config file %s: %w", l.configFile, err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.format", DefaultLogFormat)
	l.v.SetDefault("assistant.base_url", DefaultBaseURL)
	l.v.SetDefault("assistant.timeout", DefaultAssistantTimeout)
	l.v.SetDefault("serve.host", DefaultServeHost)
	l.v.SetDefault("serve.port", DefaultServePort)
	l.v.SetDefault("serve.enable_cors", true)
	l.v.SetDefault("chat.transcript_dir", ".")
}
