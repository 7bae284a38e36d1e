// Package config provides the typed configuration shared by the pipeline and
// report commands. A single Config is loaded at startup and passed explicitly
// to every component.
//
// # Configuration Sources
//
// Values are applied in this order, later sources winning:
//
//	1. Default()
//	2. YAML file given to Load
//	3. Environment variables prefixed AMTK_
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	AMTK_LOGGING_LEVEL=debug
//	AMTK_PATHS_BASE_DIR=/srv/amtk
//	AMTK_PIPELINE_RATIO_POLICY=zero_on_zero_late
//	AMTK_ANALYSIS_FUNCS=sum,mean,median
//
// Map-valued settings (state fixes, per-train metadata, colours) are only
// read from the YAML file.
//
// # Usage
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.Paths.Resolve()
package config
