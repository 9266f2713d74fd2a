// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads gobits settings from defaults, an optional YAML file
// and GOBITS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of environment variables read into the config
	EnvPrefix = "GOBITS_"
	// EnvConfigFile names the config file when --config is not given
	EnvConfigFile = EnvPrefix + "CONFIG"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrConfigTooLarge is returned for config files over the size limit.
var ErrConfigTooLarge = errors.New("config file too large")

const defaultYAML = `
log:
  level: warn
  format: console
io:
  input: cbor
  output: cbor
rotate:
  number_bytes: auto
  signed: false
pipeline:
  workers: 1
  buffer_size: 64
  max_pending: 1024
metrics:
  textfile: ""
`

type Config struct {
	Log      LogConfig      `koanf:"log"`
	IO       IOConfig       `koanf:"io"`
	Rotate   RotateDefaults `koanf:"rotate"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IOConfig selects the framing of stdin and stdout.
type IOConfig struct {
	Input  string `koanf:"input"`
	Output string `koanf:"output"`
}

// RotateDefaults are the option values rotate commands start from. Flags
// given on the command line take precedence.
type RotateDefaults struct {
	NumberBytes string `koanf:"number_bytes"`
	Signed      bool   `koanf:"signed"`
}

type PipelineConfig struct {
	// Workers is the number of mapping workers. 0 means one per CPU.
	Workers    int `koanf:"workers"`
	BufferSize int `koanf:"buffer_size"`
	MaxPending int `koanf:"max_pending"`
}

type MetricsConfig struct {
	// Textfile is where metrics are written in Prometheus text format on exit.
	// Empty disables metrics.
	Textfile string `koanf:"textfile"`
}

// Load builds the configuration. Precedence, highest first:
//  1. GOBITS_* environment variables (GOBITS_PIPELINE_WORKERS -> pipeline.workers)
//  2. the YAML file at path, or at $GOBITS_CONFIG when path is empty
//  3. built-in defaults
//
// A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrConfigTooLarge, path, info.Size())
	}
	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps GOBITS_SECTION_FIELD_NAME to section.field_name. Only the first
// underscore after the prefix separates the section.
func envKey(s string) string {
	if s == EnvConfigFile {
		return ""
	}
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json', got %q", c.Log.Format)
	}
	for name, format := range map[string]string{"io.input": c.IO.Input, "io.output": c.IO.Output} {
		if format != "cbor" && format != "json" {
			return fmt.Errorf("%s must be 'cbor' or 'json', got %q", name, format)
		}
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be >= 0, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.BufferSize <= 0 {
		return fmt.Errorf("pipeline.buffer_size must be > 0, got %d", c.Pipeline.BufferSize)
	}
	if c.Pipeline.MaxPending < 0 {
		return fmt.Errorf("pipeline.max_pending must be >= 0, got %d", c.Pipeline.MaxPending)
	}
	return nil
}
