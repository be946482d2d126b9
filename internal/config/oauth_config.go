package config

import "time"

type OAuthConfig interface {
	GetPollInterval() time.Duration
	GetNavigationTimeout() time.Duration
	GetCallbackWait() time.Duration
}

type OAuth struct {
	pollInterval time.Duration
}

var _ OAuthConfig = OAuth{}

// GetPollInterval is how often the redirect login checks the current location for a code.
func (o OAuth) GetPollInterval() time.Duration {
	if o.pollInterval <= 0 {
		return time.Second
	}
	return o.pollInterval
}

// GetNavigationTimeout bounds how long the web front waits for the
// identity API to hand back an authorization URL.
func (OAuth) GetNavigationTimeout() time.Duration {
	return 15 * time.Second
}

// GetCallbackWait bounds how long the callback page waits for the code exchange.
func (OAuth) GetCallbackWait() time.Duration {
	return 30 * time.Second
}
