package config

import (
	"fmt"
	"strings"
	"time"
)

// EnvVars holds the raw environment values. Defaults apply when a variable is unset.
type EnvVars struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	AppName      string        `env:"APP_NAME" envDefault:"Go Auth Client"`
	APIBaseURL   string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	DataFolder   string        `env:"FOLDER" envDefault:"./data"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	PollInterval time.Duration `env:"OAUTH_POLL_INTERVAL" envDefault:"1s"`
	OpenBrowser  bool          `env:"OPEN_BROWSER" envDefault:"false"`
	Env          string        `env:"ENV" envDefault:"DEV"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetAPIBaseURL returns the base URL of the remote identity API (e.g., "https://api.example.com")
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.APIBaseURL, "/")
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetHTTPTimeout is the transport timeout for calls to the identity API.
// Zero disables it.
func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.HTTPTimeout
}

func (e EnvVars) GetOpenBrowser() bool {
	return e.OpenBrowser
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}
