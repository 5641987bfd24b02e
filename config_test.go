package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "tls cert without key", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, errMsg: "--tls-key"},
		{name: "tls key without cert", mutate: func(c *Config) { c.tlsKey = "key.pem" }, errMsg: "--tls-cert"},
		{name: "port zero", mutate: func(c *Config) { c.port = 0 }, errMsg: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.port = 70000 }, errMsg: "invalid port"},
		{name: "zero ttl", mutate: func(c *Config) { c.passwordTTL = 0 }, errMsg: "password ttl"},
		{name: "negative sweep", mutate: func(c *Config) { c.expirySweep = -time.Second }, errMsg: "expiry sweep"},
		{name: "tiny messages", mutate: func(c *Config) { c.maxMessageSize = 10 }, errMsg: "max message size"},
		{name: "no burst", mutate: func(c *Config) { c.rateLimitBurst = 0 }, errMsg: "rate limit burst"},
		{name: "no interval", mutate: func(c *Config) { c.rateLimitInterval = 0 }, errMsg: "rate limit interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 3000, cfg.port)
	assert.Equal(t, 24*time.Hour, cfg.passwordTTL)
	assert.Equal(t, time.Duration(0), cfg.expirySweep)
	assert.False(t, cfg.exclusiveHost)
	assert.Empty(t, cfg.allowedOrigins)
	assert.NoError(t, cfg.validate())
}

func TestNewCmd_Flags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "8080",
		"--exclusive_host",
		"--password-ttl", "2h",
		"--allowed-origins", "http://a.example,http://b.example",
	}))

	assert.Equal(t, 8080, cfg.port)
	assert.True(t, cfg.exclusiveHost)
	assert.Equal(t, 2*time.Hour, cfg.passwordTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.allowedOrigins)
}

func TestNewCmd_Environment(t *testing.T) {
	t.Setenv("PHOLIGHT_PORT", "4242")
	t.Setenv("PHOLIGHT_PASSWORD_TTL", "90m")
	t.Setenv("PHOLIGHT_EXCLUSIVE_HOST", "true")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 4242, cfg.port)
	assert.Equal(t, 90*time.Minute, cfg.passwordTTL)
	assert.True(t, cfg.exclusiveHost)
}
