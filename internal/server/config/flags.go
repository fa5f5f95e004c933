package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/darktrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-env string  environment name ("development", "production")
//	-a string    gRPC bind address
//	-h string    HTTP bind address
//	-d string    PostgreSQL DSN
//	-s string    JWT HMAC secret key
//	-k string    at-rest encryption key
//	-u -p -b -g -e  S3 user, password, bucket, region, endpoint
//
// Only these flags are considered; everything else in args is ignored.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-env", "-a", "-h", "-d", "-s", "-k", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("darktrack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Environment, "env", config.Environment, "environment name")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "at-rest encryption key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 report bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
