package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the workspace configuration file the resolver and the
// discovery scanner consult. The nearest one up the tree wins.
const ConfigFileName = "graft.toml"

// ManifestFileName is the package manifest that supplies the package name.
const ManifestFileName = "package.json"

// Config is the decoded shape of graft.toml. All fields are optional.
type Config struct {
	// Base is the import root below the package directory. Resource paths
	// are computed relative to it. Defaults to ".".
	Base     string         `toml:"base"`
	Discover DiscoverConfig `toml:"discover"`
}

// DiscoverConfig tunes the extension-module scanner.
type DiscoverConfig struct {
	// Suffix marks extension modules: files named *<Suffix>.{js,jsx,ts,tsx}.
	// Defaults to ".extension".
	Suffix string `toml:"suffix"`
	// Dir is where aggregator modules are written, relative to the
	// workspace root. Defaults to ".graft/agg".
	Dir string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no graft.toml exists.
func DefaultConfig() Config {
	return Config{
		Base: ".",
		Discover: DiscoverConfig{
			Suffix: ".extension",
			Dir:    filepath.Join(".graft", "agg"),
		},
	}
}

// LoadConfig decodes one graft.toml and fills in defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Base == "" {
		cfg.Base = "."
	}
	if cfg.Discover.Suffix == "" {
		cfg.Discover.Suffix = ".extension"
	}
	if cfg.Discover.Dir == "" {
		cfg.Discover.Dir = filepath.Join(".graft", "agg")
	}
	return cfg, nil
}

// FindUp walks from startDir toward the filesystem root looking for a file
// named name. Returns its path and true when found.
func FindUp(startDir, name string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

type packageManifest struct {
	Name string `json:"name"`
}

// loadPackageName reads the "name" field of one package.json.
func loadPackageName(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}
	if m.Name == "" {
		return "", fmt.Errorf("%s: manifest has no \"name\" field", path)
	}
	return m.Name, nil
}
