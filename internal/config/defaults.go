package config

import "time"

// Defaults for every configurable value. The assistant timeout is the hard
// client-side deadline for one chat turn.
const (
	DefaultBaseURL          = "http://localhost:8787"
	DefaultAssistantTimeout = 25 * time.Second
	DefaultServeHost        = "localhost"
	DefaultServePort        = 8080
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "auto"
)

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Assistant: AssistantConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultAssistantTimeout,
		},
		Serve: ServeConfig{
			Host:       DefaultServeHost,
			Port:       DefaultServePort,
			EnableCORS: true,
		},
		Chat: ChatConfig{
			TranscriptDir: ".",
		},
	}
}
