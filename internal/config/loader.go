// Package config loads, validates and writes the vitals.yaml file.
//
// Discovery order: the --config flag, ./vitals.yaml, then
// ~/.config/vitals/vitals.yaml. The file is decoded strictly: a key the
// schema does not know is a load error, not a silent no-op. Invalid
// alert rules are the one soft spot — they are disabled with a warning
// so one bad rule cannot take the whole dashboard down.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
)

const (
	// FileName is the config file name looked up in the current directory.
	FileName = "vitals.yaml"
	// UserConfigDir is the per-user config directory under $HOME.
	UserConfigDir = ".config/vitals"
)

// Find locates the config file: explicit path first, then ./vitals.yaml,
// then ~/.config/vitals/vitals.yaml. Returns "" when none exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path, or run 'vitals init' to create one")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	local := filepath.Join(cwd, FileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, UserConfigDir, FileName)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// Load reads, decodes and validates the config file at path. Rules that
// fail validation are disabled with a warning on log; every other
// problem is fatal.
func Load(path string, log logger.Logger) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'vitals init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Check the file exists and is valid YAML")
	}

	cfg := DefaultConfig()
	if v.IsSet("alerts") {
		// The file's rule set replaces the built-ins wholesale. Decoding
		// into the defaults would merge file rules into default rules
		// index by index, leaking fields like template and sustain.
		cfg.Alerts = nil
	}
	strict := func(dc *mapstructure.DecoderConfig) { dc.ErrorUnused = true }
	if err := v.Unmarshal(cfg, strict); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Unrecognized or malformed settings in "+path,
			"Every key must be a known setting; compare against the output of 'vitals init'")
	}
	cfg.Path = path

	normalize(cfg)
	if err := Validate(cfg, log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the discovered config file, or returns validated
// defaults when no file exists. explicit comes from the --config flag.
func LoadOrDefault(explicit string, log logger.Logger) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := DefaultConfig()
		normalize(cfg)
		return cfg, nil
	}
	return Load(path, log)
}

// normalize fills values that are indistinguishable from "unset" after
// decoding.
func normalize(cfg *Config) {
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	if cfg.Templates == nil {
		cfg.Templates = map[string]string{}
	}
	cfg.LogFile = ExpandPath(cfg.LogFile)
	cfg.StateDir = ExpandPath(cfg.StateDir)
}
