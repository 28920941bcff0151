package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultTailLines is how many trailing log lines the report
	// includes for a failed run.
	DefaultTailLines = 100
)

// Config is the root configuration for clmunch. Every value can be
// overridden on the command line; the file only provides defaults.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	Report ReportConfig `yaml:"report"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// ReportConfig contains report generation settings.
type ReportConfig struct {
	// Output is the report destination. Empty means stdout.
	Output string `yaml:"output"`

	// Gen192 enables the error-aggregation table for the perturbed
	// pipeline configuration naming scheme.
	Gen192 bool `yaml:"gen192"`

	// ErrorCSV, when set, additionally writes the error-aggregation
	// table to this path as CSV.
	ErrorCSV string `yaml:"error_csv"`

	// TailLines is the number of trailing log lines shown for
	// failed runs.
	TailLines int `yaml:"tail_lines"`
}

// Load reads and parses a configuration file from the given path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Report.TailLines == 0 {
		c.Report.TailLines = DefaultTailLines
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Report.TailLines < 0 {
		return fmt.Errorf("tail_lines must not be negative, got %d", c.Report.TailLines)
	}

	if c.Report.Output != "" {
		if err := checkParentDir(c.Report.Output, "output"); err != nil {
			return err
		}
	}

	if c.Report.ErrorCSV != "" {
		if err := checkParentDir(c.Report.ErrorCSV, "error_csv"); err != nil {
			return err
		}
	}

	return nil
}

// checkParentDir verifies that the parent directory of a destination
// path exists.
func checkParentDir(path, field string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == ".." {
		return nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("%s: parent directory %q does not exist", field, dir)
	}

	return nil
}
