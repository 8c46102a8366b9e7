package config

import "fmt"

// SentryConfig defines settings for Sentry error monitoring. An empty DSN
// disables reporting.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// SetDefaults tags events with the "pvsim" environment when none is set.
func (s *SentryConfig) SetDefaults() {
	if s.DSN != "" && s.Environment == "" {
		s.Environment = "pvsim"
	}
}

// Validate checks the sample rate.
func (s SentryConfig) Validate() error {
	if s.TracesSampleRate < 0 || s.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1], got %g", s.TracesSampleRate)
	}
	return nil
}
