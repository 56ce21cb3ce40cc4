package esi

import "time"

// Config holds configuration for the ESI fetch client.
type Config struct {
	// BaseURL is the root of the ESI API.
	BaseURL string `mapstructure:"base_url" default:"https://esi.evetech.net/latest"`
	// Datasource is the ESI datasource query parameter.
	Datasource string `mapstructure:"datasource" default:"tranquility"`
	// UserAgent identifies this client to the provider.
	UserAgent string `mapstructure:"user_agent" default:"market-sync/1.0"`
	// Region is the default market region to fetch.
	Region int64 `mapstructure:"region" default:"10000003"`
	// Concurrency is the maximum number of in-flight requests.
	Concurrency int `mapstructure:"concurrency" default:"50"`
	// RateRequests is the request budget per rate window.
	RateRequests int `mapstructure:"rate_requests" default:"300"`
	// RateWindowSeconds is the rate window length in seconds.
	RateWindowSeconds int `mapstructure:"rate_window_seconds" default:"60"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxElapsedSeconds bounds the total retry/backoff time per request.
	MaxElapsedSeconds int `mapstructure:"max_elapsed_seconds" default:"180"`
	// MaxPages caps pagination depth. Zero means follow all pages.
	MaxPages int `mapstructure:"max_pages" default:"0"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) maxElapsed() time.Duration {
	if c.MaxElapsedSeconds <= 0 {
		return 180 * time.Second
	}
	return time.Duration(c.MaxElapsedSeconds) * time.Second
}

func (c Config) rateWindow() time.Duration {
	if c.RateWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateWindowSeconds) * time.Second
}
