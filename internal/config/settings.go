package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Settings keys
const (
	KeyOutputDir   = "output_dir"
	KeyMaxParallel = "max_parallel"
	KeyLogLevel    = "log_level"
)

// Default values
const (
	DefaultMaxParallel = 3
	DefaultLogLevel    = "info"

	MinParallel = 1
	MaxParallel = 10
)

// Settings holds the user-facing application configuration
type Settings struct {
	OutputDir   string `koanf:"output_dir"`
	MaxParallel int    `koanf:"max_parallel"`
	LogLevel    string `koanf:"log_level"`
}

// Defaults returns the baseline configuration used when no other source
// provides a value.
func Defaults() Settings {
	return Settings{
		OutputDir:   "",
		MaxParallel: DefaultMaxParallel,
		LogLevel:    DefaultLogLevel,
	}
}

func defaultsAsMap() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		KeyOutputDir:   d.OutputDir,
		KeyMaxParallel: d.MaxParallel,
		KeyLogLevel:    d.LogLevel,
	}
}

// Load merges defaults, an optional YAML config file, and flag overrides
// into a Settings value. A missing configFile path is an error; pass ""
// to skip file loading.
func Load(flags *pflag.FlagSet, configFile string) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsAsMap(), "."), nil); err != nil {
		return Settings{}, fmt.Errorf("loading defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Settings{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	var s Settings
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	s.MaxParallel = ClampMaxParallel(s.MaxParallel)
	return s, nil
}

// ClampMaxParallel bounds the concurrency limit to the supported range
func ClampMaxParallel(n int) int {
	if n < MinParallel {
		return MinParallel
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}
