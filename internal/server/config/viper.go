package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/flagx"
	"github.com/spf13/viper"
)

// keys maps config-file keys to environment variable names. A key with an
// empty variable name can only be set from a file.
var keys = map[string]string{
	"environment":              "APP_ENV",
	"endpoint_addr_grpc":       "GRPC_ADDR",
	"endpoint_addr_http":       "HTTP_ADDR",
	"database_dsn":             "DATABASE_URL",
	"secret_key":               "JWT_SECRET",
	"encryption_key":           "ENCRYPTION_KEY",
	"log_level":                "LOG_LEVEL",
	"hibp_api_key":             "HAVEIBEENPWNED_API_KEY",
	"hibp_base_url":            "HIBP_BASE_URL",
	"hibp_timeout":             "HIBP_TIMEOUT",
	"hibp_requests_per_minute": "HIBP_RPM",
	"openai_api_key":           "OPENAI_API_KEY",
	"openai_base_url":          "OPENAI_BASE_URL",
	"openai_model":             "OPENAI_MODEL",
	"llm_timeout":              "LLM_TIMEOUT",
	"lookup_window":            "LOOKUP_WINDOW",
	"s3_root_user":             "S3_ROOT_USER",
	"s3_root_password":         "S3_ROOT_PASSWORD",
	"s3_bucket":                "S3_BUCKET",
	"s3_region":                "S3_REGION",
	"s3_base_endpoint":         "S3_BASE_ENDPOINT",
	"report_link_validity":     "REPORT_LINK_VALIDITY",
}

func (c *Config) stringFields() map[string]*string {
	return map[string]*string{
		"environment":        &c.Environment,
		"endpoint_addr_grpc": &c.EndpointAddrGRPC,
		"endpoint_addr_http": &c.EndpointAddrHTTP,
		"database_dsn":       &c.DatabaseDSN,
		"secret_key":         &c.SecretKey,
		"encryption_key":     &c.EncryptionKey,
		"log_level":          &c.LogLevel,
		"hibp_api_key":       &c.HIBPAPIKey,
		"hibp_base_url":      &c.HIBPBaseURL,
		"openai_api_key":     &c.OpenAIAPIKey,
		"openai_base_url":    &c.OpenAIBaseURL,
		"openai_model":       &c.OpenAIModel,
		"s3_root_user":       &c.S3RootUser,
		"s3_root_password":   &c.S3RootPassword,
		"s3_bucket":          &c.S3Bucket,
		"s3_region":          &c.S3Region,
		"s3_base_endpoint":   &c.S3BaseEndpoint,
	}
}

func (c *Config) durationFields() map[string]*time.Duration {
	return map[string]*time.Duration{
		"hibp_timeout":         &c.HIBPTimeout,
		"llm_timeout":          &c.LLMTimeout,
		"lookup_window":        &c.LookupWindow,
		"report_link_validity": &c.ReportLinkValidity,
	}
}

func (c *Config) intFields() map[string]*int {
	return map[string]*int{
		"hibp_requests_per_minute": &c.HIBPRequestsPerMinute,
	}
}

// apply copies every key set in v onto c. Durations accept Go duration
// strings ("10s", "24h").
func apply(c *Config, v *viper.Viper) error {
	for key, p := range c.stringFields() {
		if v.IsSet(key) {
			*p = v.GetString(key)
		}
	}
	for key, p := range c.durationFields() {
		if v.IsSet(key) {
			d, err := time.ParseDuration(v.GetString(key))
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*p = d
		}
	}
	for key, p := range c.intFields() {
		if v.IsSet(key) {
			*p = v.GetInt(key)
		}
	}
	return nil
}

// parseFile overlays values from the JSON file named by -c/-config.
// No flag means no file; a missing or malformed file is an error.
func parseFile(c *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	return apply(c, v)
}

// parseEnv overlays values from the environment variables listed in keys.
func parseEnv(c *Config) error {
	v := viper.New()
	for key, env := range keys {
		if env == "" {
			continue
		}
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return apply(c, v)
}
