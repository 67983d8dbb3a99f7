// Package config handles loading and validating the scene service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with BROADCAST_* environment variables
//   - Validation of required fields, collected into one error
//   - Default value handling
//
// The camera roster and graphics overlay live here too, so a production's
// config file fully describes the scenes a generation run will build.
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via
//     environment variables or a .env file loaded by the binary
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.OBS.URL, len(cfg.Cameras))
package config
