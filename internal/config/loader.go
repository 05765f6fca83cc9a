package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ConfigPaths defines the search locations for config files.
const (
	// GlobalConfigDir is the XDG config directory name
	GlobalConfigDir = "relgraph"
	// GlobalConfigFile is the global config file name
	GlobalConfigFile = "config.yaml"
	// ProjectConfigDir is the project-local config directory
	ProjectConfigDir = ".relgraph"
	// ProjectConfigFile is the project-local config file name
	ProjectConfigFile = "config.yaml"
)

// LoadConfig loads configuration from files and viper settings.
// Precedence (later overrides earlier):
//  1. Default() values
//  2. ~/.config/relgraph/config.yaml (global)
//  3. .relgraph/config.yaml (project)
//  4. the file named by the "config" key (--config flag or RELGRAPH_CONFIG)
//  5. Environment variables (RELGRAPH_*)
//  6. CLI flags (already bound to viper)
//
// Missing global and project files are ignored; a missing explicit file is an
// error. The result is validated before it is returned.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := Default()

	defaults, err := structToMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}

	for _, path := range []string{globalConfigPath(), projectConfigPath()} {
		if path == "" {
			continue
		}
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	if explicit := v.GetString("config"); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := mergeFile(v, explicit); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg, decodeHooks()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// globalConfigPath returns the global config file path if it exists.
func globalConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return existing(filepath.Join(dir, GlobalConfigDir, GlobalConfigFile))
}

// projectConfigPath returns the project config file path if it exists.
func projectConfigPath() string {
	return existing(filepath.Join(ProjectConfigDir, ProjectConfigFile))
}

func existing(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// mergeFile reads a YAML file through a scratch viper and merges its settings
// into v. A file that vanished since the lookup is skipped.
func mergeFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scratch := viper.New()
	scratch.SetConfigType("yaml")
	if err := scratch.ReadConfig(f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return v.MergeConfigMap(scratch.AllSettings())
}

// decodeHooks lets durations ("400ms") and comma-separated commands come in
// as strings from files, env and flags.
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// structToMap flattens cfg into the nested map viper merges, with durations
// rendered as strings.
func structToMap(cfg *Config) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &out,
		DecodeHook: durationToString,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return out, nil
}

func durationToString(from, _ reflect.Type, data interface{}) (interface{}, error) {
	if d, ok := data.(time.Duration); ok && from == reflect.TypeOf(time.Duration(0)) {
		return d.String(), nil
	}
	return data, nil
}
