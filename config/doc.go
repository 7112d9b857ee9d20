// Package config loads configuration for subprocess components.
//
// It uses Viper to read a YAML file, overlays variables from an optional
// .env file (godotenv) and from the process environment, then unmarshals the
// result into a caller-supplied struct via mapstructure tags.
//
// # Usage
//
//	var cfg process.Config
//	err := config.LoadConfig("spawner", &cfg, config.WithConfigFile("spawner.yml"))
//
// Environment variables override file values when they carry the configured
// prefix (SUBPROCESS_ by default), with underscores mapping to nesting:
// SUBPROCESS_RETRY_MAX_ATTEMPTS sets retry.max_attempts.
package config
