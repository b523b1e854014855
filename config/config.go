package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config structure
type Config struct {
	LLMProvider  string `json:"llmProvider"`
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl"`
	ModelName    string `json:"modelName"`
	MaxTokens    int    `json:"maxTokens"`
	DatasetPath  string `json:"datasetPath"`
	DataCacheDir string `json:"dataCacheDir"`
	ListenAddr   string `json:"listenAddr"`
	LogDir       string `json:"logDir"`
	DetailedLog  bool   `json:"detailedLog"`
}

// apiKeyEnvVars lists the environment variables consulted, in order, when the
// config file supplies no API key.
var apiKeyEnvVars = []string{"ODIREPORT_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY"}

// Default returns the configuration used when no config file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LLMProvider:  "OpenAI",
		ModelName:    "gpt-4o-mini",
		MaxTokens:    1024,
		DatasetPath:  "ODI_Match_info.csv",
		DataCacheDir: filepath.Join(home, "odireport"),
		ListenAddr:   ":8173",
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, and applies environment fallbacks for the API key.
func Load(path string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Apply defaults for empty fields
	def := Default()
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = def.LLMProvider
	}
	if cfg.ModelName == "" {
		cfg.ModelName = def.ModelName
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = def.DatasetPath
	}
	if cfg.DataCacheDir == "" {
		cfg.DataCacheDir = def.DataCacheDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}

	if cfg.APIKey == "" {
		for _, name := range apiKeyEnvVars {
			if v := os.Getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}

	return cfg, nil
}

// Save writes the config to path with owner-only permissions since it
// contains the API key.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the fields required before any request can be served.
// A missing API key or dataset file is a fatal startup condition.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key not configured: set apiKey in config.json or one of %v", apiKeyEnvVars)
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("dataset path not configured")
	}
	if _, err := os.Stat(c.DatasetPath); err != nil {
		return fmt.Errorf("dataset file not found: %s", c.DatasetPath)
	}
	return nil
}
