// Package config holds the DarkTrack CLI settings: defaults, then
// DARKTRACK_* environment variables, then command-line flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
	LocalDBPath        string
}

// LoadDefaults populates c with sensible defaults. The timeout leaves room
// for the breach lookup and the narrative on the server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.AccessToken = ""
	c.RequestTimeout = 90 * time.Second
	c.LocalDBPath = "darktrack.db"
}

var envKeys = map[string]string{
	"addr":    "DARKTRACK_ADDR",
	"token":   "DARKTRACK_TOKEN",
	"timeout": "DARKTRACK_TIMEOUT",
	"db":      "DARKTRACK_DB",
}

func parseEnv(c *Config) error {
	v := viper.New()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	if v.IsSet("addr") {
		c.ServerEndpointAddr = v.GetString("addr")
	}
	if v.IsSet("token") {
		c.AccessToken = v.GetString("token")
	}
	if v.IsSet("db") {
		c.LocalDBPath = v.GetString("db")
	}
	if v.IsSet("timeout") {
		d, err := time.ParseDuration(v.GetString("timeout"))
		if err != nil {
			return fmt.Errorf("DARKTRACK_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// parseFlags applies -a, -t, -timeout and -db from args and returns the
// remaining arguments (the command and its operands).
func parseFlags(c *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("darktrack-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.ServerEndpointAddr, "a", c.ServerEndpointAddr, "address and port of the DarkTrack gRPC server")
	fs.StringVar(&c.AccessToken, "t", c.AccessToken, "access token (prompted when empty)")
	fs.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "per-request timeout")
	fs.StringVar(&c.LocalDBPath, "db", c.LocalDBPath, "local database for unsaved lookups")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// Load builds a Config from args (without the program name) and returns the
// command line that follows the flags.
func Load(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
