package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logging:
  format: json
  level: debug
  components:
    ndisc: warn
discovery:
  interfaces:
    - eth0
    - eth1
metrics:
  address: 127.0.0.1:9464
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["ndisc"])
	assert.Equal(t, []string{"eth0", "eth1"}, cfg.Discovery.Interfaces)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Address)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
discovery:
  interfaces:
    - eth0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "discovery: [not: valid")

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no interfaces",
			cfg:     Config{},
			wantErr: "at least one interface",
		},
		{
			name: "empty interface name",
			cfg: Config{
				Discovery: Discovery{Interfaces: []string{"eth0", ""}},
			},
			wantErr: "empty interface name",
		},
		{
			name: "duplicate interface",
			cfg: Config{
				Discovery: Discovery{Interfaces: []string{"eth0", "eth0"}},
			},
			wantErr: "duplicate interface",
		},
		{
			name: "valid",
			cfg: Config{
				Discovery: Discovery{Interfaces: []string{"eth0", "eth1"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
