package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func Test_parseEnv_Variables(t *testing.T) {
	withArgs(t)

	t.Setenv(envPort, "8080")
	t.Setenv(envHealthAddr, ":6000")
	t.Setenv(envDatabaseDriver, "postgres")
	t.Setenv(envDatabaseDSN, "postgres://u:p@db/progress")
	t.Setenv(envSecretKey, "s3cr3t")
	t.Setenv(envTokenValidity, "30m")
	t.Setenv(envBcryptCost, "12")
	t.Setenv(envNodeEnv, "production")
	t.Setenv(envRequireToken, "true")
	t.Setenv(envCORSOrigins, "https://a.example, https://b.example,")
	t.Setenv(envAdminEmail, "root@x.com")
	t.Setenv(envS3Bucket, "reports")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, ":6000", cfg.HealthAddrGRPC)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://u:p@db/progress", cfg.DatabaseDSN)
	assert.Equal(t, "s3cr3t", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.TokenValidityDuration)
	assert.Equal(t, 12, cfg.PasswordHashCost)
	assert.True(t, cfg.Production)
	assert.True(t, cfg.RequireToken)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "root@x.com", cfg.AdminEmail)
	assert.Equal(t, "reports", cfg.S3Bucket)
}

func Test_parseEnv_HTTPAddrOverridesPort(t *testing.T) {
	withArgs(t)
	t.Setenv(envPort, "8080")
	t.Setenv(envHTTPAddr, "127.0.0.1:9999")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "127.0.0.1:9999", cfg.EndpointAddrHTTP)
}

func Test_parseEnv_InvalidValuesPanic(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{envTokenValidity, "forever"},
		{envBcryptCost, "high"},
		{envRequireToken, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			withArgs(t)
			t.Setenv(tt.key, tt.value)

			require.Panics(t, func() { parseEnv(&Config{}) })
		})
	}
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("S3_BUCKET=from-file\nADMIN_USERNAME=root\n"), 0o600))

	// the real environment wins over the file
	t.Setenv(envAdminUsername, "from-env")
	t.Cleanup(func() { _ = os.Unsetenv(envS3Bucket) })

	withArgs(t, "-env-file", path)

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "from-file", cfg.S3Bucket)
	assert.Equal(t, "from-env", cfg.AdminUsername)
}

func Test_parseEnv_MissingExplicitFilePanics(t *testing.T) {
	withArgs(t, "-env-file", filepath.Join(t.TempDir(), "absent.env"))

	require.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_splitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
	assert.Empty(t, splitList(""))
}
