package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server and data paths.
type ServerConfig struct {
	ServerAddr     string `json:"server_addr"`
	LogLevel       string `json:"log_level"`
	DataDir        string `json:"data_dir"`
	CorpusDatabase string `json:"corpus_database_path"`
	ModelPath      string `json:"model_path"`
}

// Config is the top-level configuration struct.
type Config struct {
	Server *ServerConfig `json:"server_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:     ":7433",
		LogLevel:       "info",
		DataDir:        "./data",
		CorpusDatabase: "./data/assistant_corpus.db?_journal_mode=WAL&_busy_timeout=5000",
		ModelPath:      "./data/models/name_generator.json",
	}
}

// loadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func loadConfig(path string) (*Config, error) {
	config := &Config{
		Server: DefaultServerConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		// For other errors (e.g., permission denied), return the error.
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
