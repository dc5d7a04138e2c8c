package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// parseEnv overlays values from TASKLIST_* environment variables.
//
// Env surface:
//   - TASKLIST_GRPC_ADDR
//   - TASKLIST_METRICS_ADDR
//   - TASKLIST_DATABASE_DSN
//   - TASKLIST_SECRET_KEY
//   - TASKLIST_SESSION_TTL (Go duration)
//   - TASKLIST_STORE_TIMEOUT (Go duration)
//   - TASKLIST_LOG_LEVEL
//   - TASKLIST_LOG_FORMAT
func parseEnv(config *Config) error {
	lookupString("TASKLIST_GRPC_ADDR", &config.EndpointAddrGRPC)
	lookupString("TASKLIST_METRICS_ADDR", &config.MetricsAddr)
	lookupString("TASKLIST_DATABASE_DSN", &config.DatabaseDSN)
	lookupString("TASKLIST_SECRET_KEY", &config.SecretKey)
	lookupString("TASKLIST_LOG_LEVEL", &config.LogLevel)
	lookupString("TASKLIST_LOG_FORMAT", &config.LogFormat)

	if err := lookupDuration("TASKLIST_SESSION_TTL", &config.SessionTokenTTL); err != nil {
		return err
	}
	if err := lookupDuration("TASKLIST_STORE_TIMEOUT", &config.StoreTimeout); err != nil {
		return err
	}
	return nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
