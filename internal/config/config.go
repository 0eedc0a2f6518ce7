package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are searched, in order, by FindConfig.
var ConfigFileNames = []string{"asc.yaml", "asc.yml"}

// OutputFormats lists the accepted values of Config.Format.
var OutputFormats = []string{"json", "yaml", "proto", "text"}

// DefaultListen is the gRPC address used by serve when nothing is configured.
const DefaultListen = "127.0.0.1:7077"

// Config represents the top-level asc.yaml configuration.
type Config struct {
	// Requires is a semver constraint on the compiler version (e.g. ">= 1.0, < 2").
	Requires string `yaml:"requires,omitempty"`

	// Builtins are extra names made available in the root scope, for
	// functions the evaluator provides beyond the standard set.
	Builtins []string `yaml:"builtins,omitempty"`

	// Format is the default output format. Defaults to "json".
	Format string `yaml:"format,omitempty"`

	// Cache is a path to a sqlite database of compiled units. Relative
	// paths are taken from the config file's directory. Empty disables caching.
	Cache string `yaml:"cache,omitempty"`

	// Listen is the address serve binds to.
	Listen string `yaml:"listen,omitempty"`
}

// LoadConfig reads and parses an asc.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if cfg.Cache != "" && !filepath.IsAbs(cfg.Cache) {
		cfg.Cache = filepath.Join(filepath.Dir(path), cfg.Cache)
	}
	return cfg, nil
}

// ParseConfig parses asc.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no asc.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// FindConfig searches for asc.yaml starting from dir and walking up to
// parent directories. It returns "" and a nil error when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			return fmt.Errorf("%s: requires: invalid constraint %q: %w", path, c.Requires, err)
		}
	}

	if c.Format != "" && !isOutputFormat(c.Format) {
		return fmt.Errorf("%s: format: unknown output format %q (want one of %s)",
			path, c.Format, strings.Join(OutputFormats, ", "))
	}

	seen := make(map[string]int)
	for i, name := range c.Builtins {
		if name == "" {
			return fmt.Errorf("%s: builtins[%d]: empty name", path, i)
		}
		if strings.HasPrefix(name, GlobalPrefix) {
			return fmt.Errorf("%s: builtins[%d]: %q already resolves globally, drop the %s prefix",
				path, i, name, GlobalPrefix)
		}
		if j, ok := seen[name]; ok {
			return fmt.Errorf("%s: builtins[%d]: %q is also listed as builtins[%d]", path, i, name, j)
		}
		if IsBuiltin(name) {
			return fmt.Errorf("%s: builtins[%d]: %q is a standard builtin", path, i, name)
		}
		seen[name] = i
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

func isOutputFormat(name string) bool {
	for _, f := range OutputFormats {
		if f == name {
			return true
		}
	}
	return false
}

// CheckRequires reports an error when version does not satisfy c.Requires.
func (c *Config) CheckRequires(version string) error {
	if c.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("invalid constraint: %w", err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid compiler version %q: %w", version, err)
	}
	if ok, errs := constraint.Validate(v); !ok {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("compiler %s does not satisfy %q: %s", version, c.Requires, strings.Join(msgs, "; "))
	}
	return nil
}
