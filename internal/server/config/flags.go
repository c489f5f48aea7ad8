package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/learnprogress/internal/flagx"
)

// serverFlags lists every flag parseFlags owns.
var serverFlags = []string{
	"-a", "-health", "-r", "-d", "-s", "-t", "-cost", "-prod", "-require-token", "-cors",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g., ":3000")
//	-health string     gRPC health bind address (e.g., ":50051")
//	-r string          database driver: postgres | sqlite
//	-d string          database DSN
//	-s string          token HMAC secret key
//	-t int             token validity, minutes
//	-cost int          bcrypt cost
//	-prod              production mode (use -prod=true)
//	-require-token     enforce bearer tokens (use -require-token=true)
//	-cors string       comma-separated allowed origins
//	-u string          S3 root user
//	-p string          S3 root password
//	-b string          S3 bucket name
//	-g string          S3 region
//	-e string          S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c and -env-file loaders.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.HealthAddrGRPC, "health", config.HealthAddrGRPC, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.IntVar(&config.PasswordHashCost, "cost", config.PasswordHashCost, "bcrypt cost")
	fs.BoolVar(&config.Production, "prod", config.Production, "production mode")
	fs.BoolVar(&config.RequireToken, "require-token", config.RequireToken, "require bearer tokens")
	cors := fs.String("cors", strings.Join(config.CORSOrigins, ","), "allowed CORS origins, comma separated")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags override; minutes would truncate sub-minute values
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
		case "cors":
			config.CORSOrigins = splitList(*cors)
		}
	})
}
