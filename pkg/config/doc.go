// Package config provides YAML-based configuration loading, defaulting,
// validation, and live reload for Saturn.
//
// Configuration flows through a fixed sequence: parse YAML, apply
// defaults, apply SATURN_* environment overrides, validate. Validation
// collects every field error before reporting so operators fix a broken
// file in one pass.
//
// Example:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("saturn.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
package config
