package logger

import "fmt"

// Config configures a Logger. The zero value yields a console logger
// at info level on stdout.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// Validate checks level and format against the accepted values.
func (c *Config) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not a zerolog level", c.Level)
	}
	switch c.Format {
	case "json", "console", "pretty":
	default:
		return fmt.Errorf("logging.format must be json, console or pretty (got %q)", c.Format)
	}
	return nil
}
