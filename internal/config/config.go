package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	OAuthConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
	GetOpenBrowser() bool
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
}

// New reads the configuration from the environment.
func New() (Config, error) {
	var vars EnvVars
	if err := env.Parse(&vars); err != nil {
		return nil, errors.Wrap(err, "[config.New] parse env")
	}
	return mainConfig{EnvVars: vars, OAuth: OAuth{pollInterval: vars.PollInterval}}, nil
}
