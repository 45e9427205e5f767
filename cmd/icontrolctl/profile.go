package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/icontrolctl"
	configFileName = "config.yaml"
)

// Profile is one named connection in the config file. Zero-valued fields
// fall back to the client defaults.
type Profile struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Auth     string `yaml:"auth"`
	Domain   string `yaml:"domain"`
	Realm    string `yaml:"realm"`
	Krb5Conf string `yaml:"krb5_conf"`
	CCache   string `yaml:"ccache"`
	SPN      string `yaml:"spn"`
	Verify   bool   `yaml:"verify"`
	Timeout  string `yaml:"timeout"`
	CacheDir string `yaml:"cache_dir"`
}

// configFile is the on-disk layout: named profiles plus the one used
// when --profile is not given.
type configFile struct {
	DefaultProfile string             `yaml:"default_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// defaultConfigPath returns ~/.config/icontrolctl/config.yaml, or ""
// when the home directory cannot be determined.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

// loadConfigFile reads the config file at path. A missing file is not an
// error: it loads as an empty config.
func loadConfigFile(path string) (configFile, error) {
	var cfg configFile

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cfg, nil
}

// activeProfile returns the profile selected by name, falling back to
// the config's default profile, then to a zero profile. Naming a profile
// that does not exist is an error.
func activeProfile(path, name string) (Profile, error) {
	if path == "" {
		path = defaultConfigPath()
	}
	if path == "" {
		if name != "" {
			return Profile{}, fmt.Errorf("unknown profile %q: no config file", name)
		}
		return Profile{}, nil
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return Profile{}, err
	}

	if name == "" {
		name = cfg.DefaultProfile
	}
	if name == "" {
		return Profile{}, nil
	}

	prof, ok := cfg.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q in %s", name, path)
	}
	return prof, nil
}
