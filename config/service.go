package config

import (
	"fmt"

	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/validation"
)

// ServiceConfig is the base configuration every fixturekit tool or
// service shares. Programs embed it and add their own sections:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Database database.Config `yaml:"database" mapstructure:"database"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" json:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" json:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version" json:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug" json:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging" json:"logging"`
}

// GetServiceConfig returns the embedded base config. Embedding structs
// get this method promoted and so satisfy the Config interface for
// free.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills zero-valued base fields. Embedding structs that
// override it should call this first. Development implies debug, and
// the service name flows into the logging section so log output is
// tagged consistently.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the base fields against their validate tags, then
// the logging section. Embedding structs that override it should call
// this first.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
