package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPath = ".paramcheck.toml"

	defaultGeneratorScript = "Tools/autotest/param_metadata/param_parse.py"
	defaultGeneratorOutput = "apm.pdef.json"
)

// Checks selects which check categories run. It is passed by value so that
// no caller can weaken the set another caller is using.
type Checks struct {
	Missing      bool `toml:"missing"`
	Redefinition bool `toml:"redefinition"`
	ReadOnly     bool `toml:"readonly"`
	Bitmask      bool `toml:"bitmask"`
	Range        bool `toml:"range"`
	Values       bool `toml:"values"`
}

// AllChecks enables every category. Suppressed parameters are always
// checked with this set.
func AllChecks() Checks {
	return Checks{
		Missing:      true,
		Redefinition: true,
		ReadOnly:     true,
		Bitmask:      true,
		Range:        true,
		Values:       true,
	}
}

type Generator struct {
	Command []string `toml:"command"`
	Output  string   `toml:"output"`
}

type Config struct {
	Vehicle   string    `toml:"vehicle"`
	Metadata  string    `toml:"metadata"`
	Generator Generator `toml:"generator"`
	Checks    Checks    `toml:"checks"`
}

func Default() *Config {
	return &Config{
		Generator: Generator{
			Command: []string{"python3", defaultGeneratorScript},
			Output:  defaultGeneratorOutput,
		},
		Checks: AllChecks(),
	}
}

// Load reads a TOML config on top of the defaults. A missing file at the
// default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return nil, err
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Metadata == "" {
		if len(c.Generator.Command) == 0 || strings.TrimSpace(c.Generator.Command[0]) == "" {
			return errors.New("generator.command must not be empty")
		}
		if c.Generator.Output == "" {
			return errors.New("generator.output must not be empty")
		}
	}
	return nil
}
