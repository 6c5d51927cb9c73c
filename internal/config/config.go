// Package config provides configuration loading and discovery for berth.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (BERTH_* prefix)
//  3. Config file (closest .berth.toml or berth.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern: starting from the
// input file's directory, walk up the filesystem until a config file is
// found. The closest config wins (no merging).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".berth.toml", "berth.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "BERTH_"

// Config represents the complete berth configuration.
type Config struct {
	// Compose configures the generated document.
	Compose ComposeConfig `koanf:"compose"`

	// Output configures where and how results are written.
	Output OutputConfig `koanf:"output"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `koanf:"-"`
}

// ComposeConfig configures the generated compose document.
//
// Example TOML configuration:
//
//	[compose]
//	version = "3.8"
//	service-name = "api"
//	target = "runtime"
type ComposeConfig struct {
	// Version is the emitted compose format version.
	Version string `koanf:"version"`

	// ServiceName overrides the service name derived from the input's
	// directory.
	ServiceName string `koanf:"service-name"`

	// Image overrides the image tag derived from the service name.
	Image string `koanf:"image"`

	// Target selects a build stage by alias or index instead of the
	// final one.
	Target string `koanf:"target"`
}

// OutputConfig configures output behavior.
type OutputConfig struct {
	// Path is where the document is written. Empty derives a
	// docker-compose.yml next to the input; "-" writes to stdout.
	Path string `koanf:"path"`

	// Quiet suppresses the success summary.
	Quiet bool `koanf:"quiet"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Compose: ComposeConfig{
			Version: "3",
		},
		Output: OutputConfig{
			Path:  "",
			Quiet: false,
		},
	}
}

// Load loads configuration for an input file path. It discovers the
// closest config file, loads it, and applies environment variable
// overrides.
func Load(targetPath string) (*Config, error) {
	return loadLayers(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadLayers(configPath, nil)
}

// LoadWithOverrides loads configuration for an input file path and
// applies an overrides map on top (the CLI flag layer). An explicit
// configPath skips discovery. Overrides use the nested shape of the
// TOML file, for example:
//
//	overrides := map[string]any{
//	  "compose": map[string]any{"target": "runtime"},
//	}
func LoadWithOverrides(targetPath, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	return loadLayers(configPath, overrides)
}

// loadLayers merges defaults, the config file, environment variables,
// and overrides, in that order.
func loadLayers(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// BERTH_COMPOSE_SERVICE_NAME -> compose.service-name
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, ""), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.ConfigFile = configPath
	return &cfg, nil
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated
// equivalents in config keys.
var knownHyphenatedKeys = map[string]string{
	"service.name": "service-name",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"compose": {},
	"output":  {},
}

// envKeyTransform converts environment variable names to config keys.
// BERTH_OUTPUT_QUIET -> output.quiet
// BERTH_COMPOSE_SERVICE_NAME -> compose.service-name
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(absPath)

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
