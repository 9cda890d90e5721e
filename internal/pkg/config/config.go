// Package config loads blogctl settings from an optional YAML file and
// BLOGCTL_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultAPIURL = "http://localhost:8080"
	envPrefix     = "BLOGCTL"
)

type Config struct {
	APIURL      string `mapstructure:"api_url"`
	SessionFile string `mapstructure:"session_file"`
}

// Dir returns the per-user configuration directory (~/.blogctl).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".blogctl"), nil
}

// Load reads path (default ~/.blogctl/config.yaml). A missing file yields defaults.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("session_file", filepath.Join(dir, "session.json"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return &c, nil
}
