// Package config handles configuration for the server component,
// including defaults, .env and environment variables, a JSON overlay,
// and command-line flags.
package config

import "time"

// Config holds runtime settings for the progress server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - HealthAddrGRPC: bind address for the gRPC health service; empty disables it.
//   - DatabaseDriver / DatabaseDSN: "postgres" (pgx DSN) or "sqlite" (file path or file: URI).
//   - SecretKey: HMAC secret for signing tokens (HS256). Empty means a random per-process key.
//   - TokenValidityDuration: lifetime of login tokens.
//   - PasswordHashCost: bcrypt cost factor.
//   - Production: JSON logs at info level and redacted internal errors.
//   - RequireToken: enforce bearer tokens on every non-public route.
//   - CORSOrigins: browser origins allowed to call the API.
//   - AdminEmail / AdminUsername / AdminPassword: bootstrap administrator, seeded when all are set.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     report export target; export is disabled while S3Bucket is empty.
type Config struct {
	EndpointAddrHTTP      string
	HealthAddrGRPC        string
	DatabaseDriver        string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	PasswordHashCost      int
	Production            bool
	RequireToken          bool
	CORSOrigins           []string
	AdminEmail            string
	AdminUsername         string
	AdminPassword         string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.HealthAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "data/progress.db"
	c.SecretKey = ""
	c.TokenValidityDuration = time.Hour
	c.PasswordHashCost = 10
	c.Production = false
	c.RequireToken = false
	c.CORSOrigins = []string{"https://pawm-taupe.vercel.app"}
	c.S3Region = "us-east-1"
}

// ExportEnabled reports whether report export to object storage is configured.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}

// SeedAdminEnabled reports whether a bootstrap administrator is configured.
func (c *Config) SeedAdminEnabled() bool {
	return c.AdminEmail != "" && c.AdminUsername != "" && c.AdminPassword != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (optionally read from a .env file), an optional JSON
// file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
