package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "JURIS"

// ConfigPathEnv names the variable consulted when no --config flag is given.
const ConfigPathEnv = "JURIS_CONFIG"

// Sentinel errors returned by Load. Callers match them with errors.Is.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigParseError   = errors.New("config file could not be parsed")
	ErrConfigValidation   = errors.New("config validation failed")
)

// newViper builds a Viper instance with YAML type, the JURIS_ env prefix and a
// "." → "_" key replacer, so "database.host" resolves to JURIS_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v)
	return v
}

// Load reads the YAML file at configPath, merges JURIS_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config: %q: %w", configPath, ErrConfigFileNotFound)
	}

	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w: %v", configPath, ErrConfigParseError, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from JURIS_* variables and defaults only.
//
//	JURIS_<SECTION>_<FIELD>   e.g.  JURIS_DATABASE_DRIVER=sqlite, JURIS_DATAJUD_API_KEY=...
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadAuto loads configPath when set, falls back to $JURIS_CONFIG, and finally
// to environment variables alone.
func LoadAuto(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(ConfigPathEnv)
	}
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and calls onChange
// with the new Config. Invalid revisions are reported through onError (when
// non-nil) and never reach onChange. Only hot-safe settings such as the log
// level and classifier tables should be applied by the callback.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: watch %q: %w: %v", configPath, ErrConfigParseError, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps LoadAuto and panics on error. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := LoadAuto(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
