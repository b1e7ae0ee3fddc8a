package ward

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional user configuration, read from ~/.ward.yaml.
type Config struct {
	// Vault is the vault file path. Defaults to ~/.ward/vault.ward.
	Vault string `yaml:"vault"`

	// Watch enables the external-modification warning watcher for
	// interactive sessions.
	Watch bool `yaml:"watch"`
}

// DefaultVaultPath returns the standard vault file location.
func DefaultVaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine home directory, pass a vault path explicitly: %w", err)
	}
	return filepath.Join(home, ".ward", "vault.ward"), nil
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ward.yaml"), nil
}

// LoadConfig reads the yaml config at path. A missing file is not an
// error: defaults are returned.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
