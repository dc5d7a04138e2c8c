package config

import (
	"flag"
	"io"
	"os"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     metrics bind address (empty disables)
//	-d string     PostgreSQL DSN
//	-s string     session token HMAC secret
//	-t duration   session token lifetime (e.g., "1h")
//	-w duration   store operation timeout
//	-l string     log level
func parseFlags(config *Config) error {
	args := FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-s", "-t", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.SessionTokenTTL, "t", config.SessionTokenTTL, "session token validity duration")
	fs.DurationVar(&config.StoreTimeout, "w", config.StoreTimeout, "store operation timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
