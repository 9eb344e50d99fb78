package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http": "0.0.0.0:8000",
		"endpoint_addr_grpc": "0.0.0.0:9000",
		"database_dsn":       "postgres://db",
		"secret_key":         "file-secret",
		"base_url":           "https://cdn.example",
		"access_token_ttl":   "25s",
		"refresh_token_ttl":  "30s",
		"otp_ttl":            70000000000,
		"poster_storage":     "s3",
		"s3_bucket":          "covers",
		"mail_host":          "smtp.example",
		"mail_port":          2525,
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", full}))

		assert.Equal(t, "0.0.0.0:8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "0.0.0.0:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "file-secret", cfg.SecretKey)
		assert.Equal(t, "https://cdn.example", cfg.BaseURL)
		assert.Equal(t, 25*time.Second, cfg.AccessTokenTTL)
		assert.Equal(t, 30*time.Second, cfg.RefreshTokenTTL)
		assert.Equal(t, 70*time.Second, cfg.OtpTTL)
		assert.Equal(t, "s3", cfg.PosterStorage)
		assert.Equal(t, "covers", cfg.S3Bucket)
		assert.Equal(t, "smtp.example", cfg.MailHost)
		assert.Equal(t, 2525, cfg.MailPort)
	})

	t.Run("missing keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"s3_region": "eu-north-1"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, "eu-north-1", cfg.S3Region)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 70*time.Second, cfg.OtpTTL)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "keep:1"}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, "keep:1", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJson(&Config{}, []string{"-config", bad})
		require.ErrorContains(t, err, "decode config file")
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")})
		require.ErrorContains(t, err, "read config file")
	})
}
