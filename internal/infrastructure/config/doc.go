// Package config handles loading and validating apiconsole configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with APICONSOLE_* environment variables
//   - Validation of required fields
//
// Secrets (MQTT password, InfluxDB token, JWT secret, API keys, console
// token) should be supplied through the environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
