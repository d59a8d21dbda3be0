package config

import "time"

// Application constants
const (
	AppName = "CleanViz"
	RepoURL = "https://github.com/cleanviz/cleanviz"

	// Server
	DefaultPort           = 8080
	DefaultRequestTimeout = 60 * time.Second

	// Uploads
	DefaultMaxUploadBytes = 50 << 20 // 50MB
	DefaultPreviewRows    = 5

	// Sessions
	DefaultSessionTTL  = time.Hour
	DefaultMaxSessions = 100

	// Charts
	DefaultChartWidth    = 800
	DefaultChartHeight   = 600
	DefaultBundleWorkers = 6

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/cleanviz.log"

	// Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
