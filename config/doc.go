// Package config provides configuration loading and validation for
// fixturekit applications.
//
// It uses Viper to load configuration from config.yml files and
// environment variables, with .env overlays resolved from standard
// search paths.
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("fixturectl", &cfg)
//
// Environment variables override file values; DATABASE_DSN maps to the
// database.dsn key and so on through underscore-to-dot variants.
package config
