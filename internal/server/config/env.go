package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variables read by parseEnv.
const (
	envPort           = "PORT"
	envHTTPAddr       = "HTTP_ADDR"
	envHealthAddr     = "HEALTH_ADDR_GRPC"
	envDatabaseDriver = "DATABASE_DRIVER"
	envDatabaseDSN    = "DATABASE_DSN"
	envSecretKey      = "JWT_SECRET"
	envTokenValidity  = "TOKEN_VALIDITY"
	envBcryptCost     = "BCRYPT_COST"
	envNodeEnv        = "NODE_ENV"
	envRequireToken   = "REQUIRE_TOKEN"
	envCORSOrigins    = "CORS_ORIGINS"
	envAdminEmail     = "ADMIN_EMAIL"
	envAdminUsername  = "ADMIN_USERNAME"
	envAdminPassword  = "ADMIN_PASSWORD"
	envS3RootUser     = "S3_ROOT_USER"
	envS3RootPassword = "S3_ROOT_PASSWORD"
	envS3Bucket       = "S3_BUCKET"
	envS3Region       = "S3_REGION"
	envS3BaseEndpoint = "S3_BASE_ENDPOINT"
)

// parseEnv loads variables from a dotenv file into the process environment
// and copies the recognised ones into config.
//
// The dotenv file is taken from -env-file/-envfile; without the flag a
// .env file in the working directory is loaded when present. Variables
// already set in the environment are never overwritten by the file.
// Malformed values panic, like the JSON loader does.
func parseEnv(config *Config) {
	loadEnvFile(flagx.EnvFileFlags())

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if port, ok := os.LookupEnv(envPort); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	str(envHTTPAddr, &config.EndpointAddrHTTP)
	str(envHealthAddr, &config.HealthAddrGRPC)
	str(envDatabaseDriver, &config.DatabaseDriver)
	str(envDatabaseDSN, &config.DatabaseDSN)
	str(envSecretKey, &config.SecretKey)
	str(envAdminEmail, &config.AdminEmail)
	str(envAdminUsername, &config.AdminUsername)
	str(envAdminPassword, &config.AdminPassword)
	str(envS3RootUser, &config.S3RootUser)
	str(envS3RootPassword, &config.S3RootPassword)
	str(envS3Bucket, &config.S3Bucket)
	str(envS3Region, &config.S3Region)
	str(envS3BaseEndpoint, &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv(envTokenValidity); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}

	if v, ok := os.LookupEnv(envBcryptCost); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.PasswordHashCost = n
	}

	if v, ok := os.LookupEnv(envNodeEnv); ok {
		config.Production = strings.EqualFold(v, "production")
	}

	if v, ok := os.LookupEnv(envRequireToken); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.RequireToken = b
	}

	if v, ok := os.LookupEnv(envCORSOrigins); ok {
		config.CORSOrigins = splitList(v)
	}
}

func loadEnvFile(path string) {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return
		}
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
