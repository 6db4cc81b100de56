package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dotEnvFile = ".env"

// fileConfig is the layout of the optional YAML config file.
type fileConfig struct {
	AppName       string `yaml:"app_name"`
	APIURL        string `yaml:"api_url"`
	DashboardAddr string `yaml:"dashboard_addr"`
	LogLevel      string `yaml:"log_level"`
	Env           string `yaml:"env"`
	Fetch         struct {
		Retries      *int     `yaml:"retries"`
		RetryDelayMS *int     `yaml:"retry_delay_ms"`
		Factor       *float64 `yaml:"factor"`
	} `yaml:"fetch"`
	Session struct {
		TokenFile       string `yaml:"token_file"`
		TokenPassphrase string `yaml:"token_passphrase"`
	} `yaml:"session"`
}

// sources resolves a key from the environment, then the .env file, then the
// YAML file.
type sources struct {
	dotEnv map[string]string
	file   map[string]string
}

func (s *sources) get(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if s == nil {
		return defaultValue
	}
	if v := s.dotEnv[key]; v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	return defaultValue
}

func loadSources(dotEnvPath, yamlPath string) (*sources, error) {
	src := &sources{
		dotEnv: map[string]string{},
		file:   map[string]string{},
	}

	if dotEnvPath != "" {
		values, err := godotenv.Read(dotEnvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", dotEnvPath, err)
		}
		if values != nil {
			src.dotEnv = values
		}
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
		}
		src.file = fc.flatten()
	}

	return src, nil
}

func (fc fileConfig) flatten() map[string]string {
	m := map[string]string{
		appNameVar:         fc.AppName,
		apiURLVar:          fc.APIURL,
		dashboardAddrVar:   fc.DashboardAddr,
		logLevelVar:        fc.LogLevel,
		envVar:             fc.Env,
		tokenFileVar:       fc.Session.TokenFile,
		tokenPassphraseVar: fc.Session.TokenPassphrase,
	}
	if fc.Fetch.Retries != nil {
		m[retriesVar] = strconv.Itoa(*fc.Fetch.Retries)
	}
	if fc.Fetch.RetryDelayMS != nil {
		m[retryDelayVar] = strconv.Itoa(*fc.Fetch.RetryDelayMS)
	}
	if fc.Fetch.Factor != nil {
		m[factorVar] = strconv.FormatFloat(*fc.Fetch.Factor, 'f', -1, 64)
	}
	return m
}
