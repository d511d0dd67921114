package config

import (
	"os"
	"path/filepath"
	"strings"

	lkerrors "github.com/grovetools/lookout/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configFileNames are the recognized configuration file names, in order of
// preference.
var configFileNames = []string{"lookout.yml", "lookout.yaml", "lookout.toml"}

// FindConfigFile walks up from startDir looking for a lookout config file.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", lkerrors.ConfigNotFound(startDir)
		}
		dir = parent
	}
}

// Load reads and parses the configuration file at the given path. Both YAML
// and TOML files are supported, selected by file extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lkerrors.Wrap(err, lkerrors.ErrCodeConfigNotFound, "read config file")
	}

	var cfg Config
	if strings.HasSuffix(path, ".toml") {
		if err := unmarshalTOML(data, &cfg); err != nil {
			return nil, lkerrors.Wrap(err, lkerrors.ErrCodeConfigInvalid, "parse config file")
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, lkerrors.Wrap(err, lkerrors.ErrCodeConfigInvalid, "parse config file")
		}
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// LoadDefault finds and loads the configuration starting from the current
// working directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path, err := FindConfigFile(cwd)
	if err != nil {
		return nil, err
	}

	return Load(path)
}

// LoadFromDir finds and loads the configuration starting from the given
// directory. Returns a defaulted empty config if none is found.
func LoadFromDir(dir string) (*Config, error) {
	path, err := FindConfigFile(dir)
	if err != nil {
		if lkerrors.Is(err, lkerrors.ErrCodeConfigNotFound) {
			cfg := &Config{}
			cfg.SetDefaults()
			return cfg, nil
		}
		return nil, err
	}
	return Load(path)
}

// unmarshalTOML decodes a TOML document into Config. TOML has no equivalent
// of yaml's inline maps, so the document is decoded generically first and
// unknown top-level keys are routed into Extensions.
func unmarshalTOML(data []byte, cfg *Config) error {
	raw := make(map[string]interface{})
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  cfg,
		TagName: "toml",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return err
	}

	known := map[string]bool{
		"version":          true,
		"include_patterns": true,
		"debounce_ms":      true,
		"status_poll_ms":   true,
	}
	for key, value := range raw {
		if known[key] {
			continue
		}
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = value
	}

	return nil
}
