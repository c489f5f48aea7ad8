package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		expected    func() *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-health", ":6000", "-r", "postgres", "-d", "db", "-s", "secret",
				"-t", "15", "-cost", "12", "-prod=true", "-require-token=true", "-cors", "https://a,https://b",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			expected: func() *Config {
				return &Config{
					EndpointAddrHTTP:      "127.0.0.1:9090",
					HealthAddrGRPC:        ":6000",
					DatabaseDriver:        "postgres",
					DatabaseDSN:           "db",
					SecretKey:             "secret",
					TokenValidityDuration: 15 * time.Minute,
					PasswordHashCost:      12,
					Production:            true,
					RequireToken:          true,
					CORSOrigins:           []string{"https://a", "https://b"},
					S3RootUser:            "user",
					S3RootPassword:        "password",
					S3Bucket:              "bucket",
					S3Region:              "us-west-1",
					S3BaseEndpoint:        "http://endpoint",
				}
			},
		},
		{
			name:     "no flags keep values",
			args:     []string{"cmd", "-c", "config.json"},
			expected: base,
		},
		{
			name:        "bad int",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := base()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected(), config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_SubMinuteValidityKeptWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	config := &Config{TokenValidityDuration: 90 * time.Second}
	parseFlags(config)

	assert.Equal(t, 90*time.Second, config.TokenValidityDuration)
}
