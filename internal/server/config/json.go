package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/learnprogress/internal/flagx"
	"github.com/dmitrijs2005/learnprogress/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. It is pre-filled from the current Config so keys
// absent from the file keep their earlier value.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	HealthAddrGRPC        string         `json:"health_addr_grpc"`
	DatabaseDriver        string         `json:"database_driver"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	PasswordHashCost      int            `json:"password_hash_cost"`
	Production            bool           `json:"production"`
	RequireToken          bool           `json:"require_token"`
	CORSOrigins           []string       `json:"cors_origins"`
	AdminEmail            string         `json:"admin_email"`
	AdminUsername         string         `json:"admin_username"`
	AdminPassword         string         `json:"admin_password"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag into config. Without the flag nothing is loaded. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP:      config.EndpointAddrHTTP,
		HealthAddrGRPC:        config.HealthAddrGRPC,
		DatabaseDriver:        config.DatabaseDriver,
		DatabaseDSN:           config.DatabaseDSN,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		PasswordHashCost:      config.PasswordHashCost,
		Production:            config.Production,
		RequireToken:          config.RequireToken,
		CORSOrigins:           config.CORSOrigins,
		AdminEmail:            config.AdminEmail,
		AdminUsername:         config.AdminUsername,
		AdminPassword:         config.AdminPassword,
		S3RootUser:            config.S3RootUser,
		S3RootPassword:        config.S3RootPassword,
		S3Bucket:              config.S3Bucket,
		S3Region:              config.S3Region,
		S3BaseEndpoint:        config.S3BaseEndpoint,
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.HealthAddrGRPC = c.HealthAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration
	config.PasswordHashCost = c.PasswordHashCost
	config.Production = c.Production
	config.RequireToken = c.RequireToken
	config.CORSOrigins = c.CORSOrigins
	config.AdminEmail = c.AdminEmail
	config.AdminUsername = c.AdminUsername
	config.AdminPassword = c.AdminPassword
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
