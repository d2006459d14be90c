package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in standard locations.
const FileName = "texbake.yaml"

// EnvConfig names an environment variable holding a config file path.
const EnvConfig = "TEXBAKE_CONFIG"

// Load builds the configuration from defaults, then the config file,
// then command-line flags, and validates the result. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	if path := configPath(flags); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath picks the file to load: -config, then $TEXBAKE_CONFIG, then
// the first existing standard location. Explicit paths must exist.
func configPath(flags *Flags) string {
	if p := flags.ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// Path returns the file Load reads for flags. When no config file exists
// yet it names the one in ConfigDir, so a config saved there is the one
// found next time.
func Path(flags *Flags) string {
	if p := configPath(flags); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), FileName)
}

// findConfigFile returns ./texbake.yaml or the one in ConfigDir, if
// either exists.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user configuration directory for texbake.
func ConfigDir() string {
	if runtime.GOOS == "linux" || runtime.GOOS == "freebsd" {
		// os.UserConfigDir also honors XDG_CONFIG_HOME, but fails when
		// HOME is unset; keep a usable fallback.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "texbake")
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "texbake")
	}
	return filepath.Join(os.TempDir(), "texbake")
}

// loadFromFile merges the YAML file at path over cfg. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
