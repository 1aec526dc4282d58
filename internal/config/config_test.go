package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Pipeline.MaxIterations)
	assert.Equal(t, 3, cfg.Pipeline.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.QA.NavigationTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"no output dir", func(c *Config) { c.Pipeline.OutputDir = "" }, "output_dir"},
		{"zero iterations", func(c *Config) { c.Pipeline.MaxIterations = 0 }, "max_iterations"},
		{"zero concurrency", func(c *Config) { c.Pipeline.Concurrency = 0 }, "concurrency"},
		{"no nav timeout", func(c *Config) { c.QA.NavigationTimeout = 0 }, "navigation_timeout"},
		{"bad store", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"events without url", func(c *Config) {
			c.Events.Enabled = true
			c.Events.NATSURL = ""
		}, "nats_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecret_NeverLeaks(t *testing.T) {
	s := Secret("sk-live-123")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-live-123", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))

	assert.False(t, Secret("").IsSet())
	assert.Equal(t, "", Secret("").String())
}
