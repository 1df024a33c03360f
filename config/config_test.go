package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/iface"
)

func TestDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "tcp", cfg.Serve.Network)
	assert.Equal(t, "echo", cfg.Serve.Service)
	assert.Equal(t, 5*time.Second, cfg.DNS.Timeout)
	assert.False(t, cfg.Admin.Enabled)

	opts := cfg.Serve.Options()
	assert.Equal(t, iface.RoundRobinLB, opts.LoadBalancer)
	assert.Equal(t, iface.DefaultReadBuffer, opts.ReadBuffer)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SXNET_SERVE_ADDRESS", "0.0.0.0:7000")
	t.Setenv("SXNET_SERVE_BALANCER", "least-conn")
	t.Setenv("SXNET_DNS_TIMEOUT", "250ms")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.Serve.Address)
	assert.Equal(t, iface.LeastConnLB, cfg.Serve.Options().LoadBalancer)
	assert.Equal(t, 250*time.Millisecond, cfg.DNS.Timeout)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sxnet.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
serve:
  service: file
  root: /srv
  loops: 3
  keep_alive: 30s
admin:
  enabled: true
watch:
  events: [written, deleted]
`), 0o644))

	v, err := NewViper(file)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Serve.Service)
	assert.Equal(t, "/srv", cfg.Serve.Root)
	assert.Equal(t, 3, cfg.Serve.Options().NumOfLoops)
	assert.Equal(t, 30*time.Second, cfg.Serve.KeepAlive)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, []string{"written", "deleted"}, cfg.Watch.Events)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
