package config

import "time"

type Config interface {
	EnvConfig
	FetchConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetDashboardAddr() string
	GetLogLevel() string
	GetEnv() string
}

type FetchConfig interface {
	GetRetries() int
	GetRetryDelay() time.Duration
	GetBackoffFactor() float64
}

type SessionConfig interface {
	GetTokenFile() string
	GetTokenPassphrase() string
}

type mainConfig struct {
	EnvVars
	Fetch
	Session
}

// New builds the configuration. A .env file in the working directory and the
// YAML file named by TRIPMATE_CONFIG are read once here; the environment
// always wins over either.
func New() (Config, error) {
	src, err := loadSources(dotEnvFile, GetEnv(configFileVar, ""))
	if err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: EnvVars{src: src},
		Fetch:   Fetch{src: src},
		Session: Session{src: src},
	}, nil
}
