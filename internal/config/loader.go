package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "WEALTHDESK"

// Load reads configuration from the file at path, layers WEALTHDESK_*
// environment variables on top, applies defaults and validates the result.
// An empty path loads from environment and defaults only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds configuration from environment variables and
// defaults alone. Useful for containerized deployments where no config
// file is mounted.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// MustLoad is Load but panics on error. Intended for main() wiring only.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Watch re-reads the config file on change and invokes onChange with the
// freshly validated configuration. Invalid updates are dropped and the
// previous configuration stays in effect.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("config: watch requires a file path")
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
