package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 90*time.Second, c.RequestTimeout)
	assert.Equal(t, "darktrack.db", c.LocalDBPath)
	assert.Empty(t, c.AccessToken)
}

func TestLoad_Layers(t *testing.T) {
	t.Setenv("DARKTRACK_ADDR", "env-host:1")
	t.Setenv("DARKTRACK_TOKEN", "env-token")
	t.Setenv("DARKTRACK_TIMEOUT", "5s")

	cfg, rest, err := Load([]string{"-a", "flag-host:2", "lookup", "test@example.com"})
	require.NoError(t, err)

	want := &Config{
		ServerEndpointAddr: "flag-host:2",
		AccessToken:        "env-token",
		RequestTimeout:     5 * time.Second,
		LocalDBPath:        "darktrack.db",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
	assert.Equal(t, []string{"lookup", "test@example.com"}, rest)
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load([]string{"-timeout", "abc"})
	assert.Error(t, err)

	t.Setenv("DARKTRACK_TIMEOUT", "soon")
	_, _, err = Load(nil)
	assert.Error(t, err)
}
