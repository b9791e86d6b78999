// Package config handles loading and validating chassisd configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Group tokens and IPMI passwords live in the config file; it should
//     have restricted permissions (0600)
//   - Sensitive infrastructure values (MQTT credentials) can be supplied
//     via environment variables instead of the file
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load; topology changes require restart
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
