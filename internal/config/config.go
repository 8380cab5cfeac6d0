// Package config loads txtgrid settings from defaults, an optional YAML file,
// TXTGRID_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/nconklindev/txtgrid/internal/converter"
	"github.com/nconklindev/txtgrid/internal/logging"
)

const (
	DefaultDelimiter = "|"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// EnvPrefix is stripped from environment variables before they are
	// matched against config keys.
	EnvPrefix = "TXTGRID_"
)

// ConfigFileNames are searched for in the working directory when no config
// file is given explicitly.
var ConfigFileNames = []string{"txtgrid.yaml", "txtgrid.yml"}

type Config struct {
	// Delimiter separates fields in input files. Names such as "tab" or
	// "comma" are accepted and resolved to their literal.
	Delimiter string `koanf:"delimiter"`
	Encoding  string `koanf:"encoding"`

	// OutputDir is where exported workbooks go when no explicit path is given.
	OutputDir string `koanf:"output_dir"`
	SheetName string `koanf:"sheet_name"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	LogFile   string `koanf:"log_file"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Delimiter: DefaultDelimiter,
		Encoding:  converter.DefaultEncoding,
		OutputDir: ".",
		SheetName: converter.DefaultSheet,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

func defaultMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"delimiter":  d.Delimiter,
		"encoding":   d.Encoding,
		"output_dir": d.OutputDir,
		"sheet_name": d.SheetName,
		"log_level":  d.LogLevel,
		"log_format": d.LogFormat,
		"log_file":   d.LogFile,
	}
}

// Validate checks values that would otherwise only fail deep inside an
// import or export.
func (c *Config) Validate() error {
	if !converter.ValidEncoding(c.Encoding) {
		return fmt.Errorf("unsupported encoding %q", c.Encoding)
	}
	if strings.TrimSpace(c.SheetName) == "" {
		return fmt.Errorf("sheet_name must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}
