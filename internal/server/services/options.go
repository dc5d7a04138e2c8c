package services

import (
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
)

const (
	defaultStoreTimeout      = 5 * time.Second
	defaultPasswordMinLength = 8
)

type Option func(*CredentialService)

// WithStoreTimeout bounds every store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *CredentialService) { s.storeTimeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CredentialService) { s.metrics = m }
}

// WithPasswordMinLength sets the minimum password length, in characters,
// accepted by Register, ChangePassword and UpdateProfile.
func WithPasswordMinLength(n int) Option {
	return func(s *CredentialService) { s.passwordMinLength = n }
}
