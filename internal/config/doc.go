// Package config provides configuration loading for CleanViz.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default() values
//	2. YAML file (config.yaml or configs/config.yaml, or an explicit path)
//	3. Environment variables
//
// # Environment Variables
//
// Every variable is namespaced with CLEANVIZ and the section name:
//
//	CLEANVIZ_SERVER_PORT=8080
//	CLEANVIZ_UPLOAD_MAX_BYTES=52428800
//	CLEANVIZ_SESSION_TTL=1h
//	CLEANVIZ_CHARTS_WIDTH=1024
//	CLEANVIZ_LOGGING_LEVEL=debug
//	CLEANVIZ_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://viz.example.org
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
