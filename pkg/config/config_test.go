package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "burrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/etc/hosts", cfg.HostsFile)
	assert.Equal(t, message.TransportUDP, cfg.TransportValue())
	assert.Equal(t, 6, cfg.Cache.MaxChain)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: true
transport: tcp
data_dir: /var/lib/burrow
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, message.TransportTCP, cfg.TransportValue())
	assert.Equal(t, "/var/lib/burrow", cfg.DataDir)
	assert.Equal(t, "/etc/hosts", cfg.HostsFile, "unset keys keep defaults")
	assert.Equal(t, log.Config{Level: log.DebugLevel, JSONOutput: true}, cfg.LogOptions())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "level", content: "log:\n  level: loud\n", want: "unknown log level"},
		{name: "transport", content: "transport: quic\n", want: "unknown transport: quic"},
		{name: "max chain", content: "cache:\n  max_chain: 8\n", want: "cache.max_chain must be 6"},
		{name: "data dir", content: "data_dir: \"\"\n", want: "data_dir must not be empty"},
		{name: "yaml", content: "log: [\n", want: "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to read config")
	})
}

func TestMaxChainSentinel(t *testing.T) {
	cfg := Default()
	cfg.Cache.MaxChain = 3
	assert.ErrorIs(t, cfg.Validate(), ErrMaxChain)
}
