package config

import (
	"os"
	"strings"
)

const (
	appNameVar       = "TRIPMATE_APP_NAME"
	apiURLVar        = "TRIPMATE_API_URL"
	dashboardAddrVar = "TRIPMATE_DASHBOARD_ADDR"
	logLevelVar      = "TRIPMATE_LOG_LEVEL"
	configFileVar    = "TRIPMATE_CONFIG"
	envVar           = "ENV"
)

type EnvVars struct {
	src *sources
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Tripmate")
}

// GetAPIBaseURL returns the remote API origin without a trailing slash.
// All endpoints are resolved relative to it.
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.src.get(apiURLVar, "http://localhost:8000"), "/")
}

func (e EnvVars) GetDashboardAddr() string {
	addr := e.src.get(dashboardAddrVar, "8090")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.src.get(logLevelVar, "info"))
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
