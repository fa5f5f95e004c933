package cryptox

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/darktrack/internal/logging"
)

// DevelopmentKey is used when no key is configured in development.
const DevelopmentKey = "darktrack-dev-key-change-in-production"

var ErrMissingEncryptionKey = errors.New("ENCRYPTION_KEY must be set outside development")

// IsDevelopment reports whether env names a development-like environment.
func IsDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// ResolveSecret returns the configured secret, or the development key with a
// warning when none is configured in development. Outside development a
// missing secret is ErrMissingEncryptionKey.
func ResolveSecret(ctx context.Context, env, secret string, logger logging.Logger) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if !IsDevelopment(env) {
		return "", ErrMissingEncryptionKey
	}

	logger.Warn(ctx, "Using default encryption key for development, set ENCRYPTION_KEY in production", "env", env)
	return DevelopmentKey, nil
}
