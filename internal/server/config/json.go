package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("90s", "1h") or an integer
// number of nanoseconds when unmarshalled from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// JsonConfig is the on-disk shape of the configuration file. Only keys that
// are present and non-zero override the current values.
type JsonConfig struct {
	EndpointAddrGRPC  string   `json:"endpoint_addr_grpc"`
	MetricsAddr       string   `json:"metrics_addr"`
	DatabaseDSN       string   `json:"database_dsn"`
	SecretKey         string   `json:"secret_key"`
	TokenIssuer       string   `json:"token_issuer"`
	SessionTokenTTL   Duration `json:"session_token_ttl"`
	StoreTimeout      Duration `json:"store_timeout"`
	LogLevel          string   `json:"log_level"`
	LogFormat         string   `json:"log_format"`
	PasswordMinLength int      `json:"password_min_length"`
	PasswordMaxLength int      `json:"password_max_length"`
	Argon2MemoryKiB   uint32   `json:"argon2_memory_kib"`
	Argon2Iterations  uint32   `json:"argon2_iterations"`
	Argon2Parallelism uint8    `json:"argon2_parallelism"`
}

// parseJson overlays values from the file named by -c / -config.
// Without that flag nothing is loaded.
func parseJson(config *Config) error {
	path := configFilePath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.SessionTokenTTL.Duration != 0 {
		config.SessionTokenTTL = c.SessionTokenTTL.Duration
	}
	if c.StoreTimeout.Duration != 0 {
		config.StoreTimeout = c.StoreTimeout.Duration
	}
	if c.PasswordMinLength != 0 {
		config.PasswordMinLength = c.PasswordMinLength
	}
	if c.PasswordMaxLength != 0 {
		config.PasswordMaxLength = c.PasswordMaxLength
	}
	if c.Argon2MemoryKiB != 0 {
		config.Argon2MemoryKiB = c.Argon2MemoryKiB
	}
	if c.Argon2Iterations != 0 {
		config.Argon2Iterations = c.Argon2Iterations
	}
	if c.Argon2Parallelism != 0 {
		config.Argon2Parallelism = c.Argon2Parallelism
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
