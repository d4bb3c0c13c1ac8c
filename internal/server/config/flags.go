package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/donna/internal/flagx"
)

// parseFlags overlays short command-line flags:
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-g string   gRPC health listener address
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      token validity, hours
//	-k string   model provider API key
//	-u string   model endpoint URL
//	-m string   model name
//	-r string   Redis address
//	-l string   log level
//
// Unknown flags are filtered out first so -c/-config and test flags pass
// through untouched. A malformed flag value panics.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-k", "-u", "-m", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenHours := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")
	fs.StringVar(&config.ModelAPIKey, "k", config.ModelAPIKey, "model API key")
	fs.StringVar(&config.ModelAPIURL, "u", config.ModelAPIURL, "model endpoint URL")
	fs.StringVar(&config.ModelName, "m", config.ModelName, "model name")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenHours) * time.Hour
		}
	})
}
