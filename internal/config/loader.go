package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MatchFile is the configuration file name looked up in config directories.
const MatchFile = "match.yaml"

// LoadMatch loads the match configuration.
// Search order: customPath -> ~/.connectplus/configs/match.yaml -> ./configs/match.yaml -> embedded default
// Fields missing from a file keep their default values.
func LoadMatch(customPath string) (MatchConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return MatchConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseMatch(data)
		if err != nil {
			return MatchConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(MatchFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseMatch(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", MatchFile)); err == nil {
		if cfg, err := ParseMatch(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseMatch(defaultMatchYAML)
	if err != nil {
		return DefaultMatchConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseMatch decodes a YAML document on top of the defaults and validates it.
func ParseMatch(data []byte) (MatchConfig, error) {
	cfg := DefaultMatchConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MatchConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return MatchConfig{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c MatchConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".connectplus", "configs", filename)
}
