package cryptox

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		want    string
		wantErr error
		warns   bool
	}{
		{name: "configured in production", env: "production", secret: "s3cr3t", want: "s3cr3t"},
		{name: "configured in development", env: "development", secret: "s3cr3t", want: "s3cr3t"},
		{name: "missing in development", env: "development", want: DevelopmentKey, warns: true},
		{name: "missing in test", env: "test", want: DevelopmentKey, warns: true},
		{name: "missing in production", env: "production", wantErr: ErrMissingEncryptionKey},
		{name: "missing in staging", env: "staging", wantErr: ErrMissingEncryptionKey},
		{name: "missing with empty env", env: "", wantErr: ErrMissingEncryptionKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

			got, err := ResolveSecret(context.Background(), tt.env, tt.secret, logger)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warns, bytes.Contains(buf.Bytes(), []byte("level=WARN")))
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, IsDevelopment("Development"))
	assert.True(t, IsDevelopment(" dev "))
	assert.False(t, IsDevelopment("production"))
	assert.False(t, IsDevelopment(""))
}
