package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML carry durations as strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func LoadUserConfig() (*UserConfig, error) {
	return LoadUserConfigFromPath(GetConfigFilePath())
}

// LoadUserConfigFromPath decodes the file at configPath on top of the defaults.
// A missing file is created from the commented template.
func LoadUserConfigFromPath(configPath string) (*UserConfig, error) {
	cfg := DefaultUserConfig()

	if !FileExists(configPath) {
		if err := CreateDefaultUserConfig(configPath); err != nil {
			return nil, fmt.Errorf("failed to create user config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return cfg, nil
}

func SaveUserConfig(cfg *UserConfig) error {
	return SaveUserConfigToPath(cfg, GetConfigFilePath())
}

func SaveUserConfigToPath(cfg *UserConfig, configPath string) error {
	if err := EnsureDir(dirOf(configPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create user config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}

	return nil
}

func CreateDefaultUserConfig(configPath string) error {
	if err := EnsureDir(dirOf(configPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(configPath) {
		return nil
	}

	content := GenerateUserConfigTemplate()
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}
