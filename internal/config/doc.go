// Package config provides configuration management for actcli.
// It loads settings from multiple sources, validates them, and resolves the
// output directory layout used by the commands.
//
// # Configuration Sources
//
// Configuration is built from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. YAML file: $ACT_CONFIG_FILE, else actcli.yaml, else configs/actcli.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables use the ACT_ prefix followed by the section and field:
//
//	ACT_LOGGING_LEVEL=debug
//	ACT_INGEST_WORKERS=8
//	ACT_INGEST_STRICT=true
//	ACT_INGEST_GAS_INTERVAL=1min
//	ACT_OUTPUT_DIR=/srv/act/output
//	ACT_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// The loaded struct is validated with go-playground/validator tags. The
// custom "interval" tag accepts anything domain.ParseInterval accepts.
// Failures are returned as CONFIG typed errors.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	paths, err := config.NewPaths(cfg.Output.Dir)
package config
