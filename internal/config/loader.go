package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"azdoctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/azdoctl"
	configFileName = "config.yaml"
)

// Config holds the connection defaults read from the config file. There
// is deliberately no field for the client secret: secrets come from flags
// or the environment only.
type Config struct {
	// Organization is the default organization URL, e.g.
	// https://dev.azure.com/acme.
	Organization string `yaml:"organization,omitempty"`

	// TenantID is the default Entra ID tenant GUID.
	TenantID string `yaml:"tenantId,omitempty"`

	// ClientID is the default application GUID.
	ClientID string `yaml:"clientId,omitempty"`

	// Project is the default project scope.
	Project string `yaml:"project,omitempty"`
}

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory. A missing
// config.yaml yields empty defaults, not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)

	var config Config
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("Config", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		// config malformed
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}
