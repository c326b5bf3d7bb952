package config

import (
	"flag"

	"github.com/dmitrijs2005/gophaccount/internal/flagx"
)

// parseFlags overlays the short command-line flags onto config.
//
//	-a string   HTTP bind address (":8080")
//	-g string   gRPC health bind address (":50051")
//	-d string   database DSN, or "memory"
//	-s string   reset token signing secret
//	-r int      reset token validity, minutes
//	-t int      session lifetime, minutes
//	-b string   session backend: postgres, redis or memory
//	-u string   public base URL used in reset links
//	-l string   log level
//
// args are filtered with flagx.FilterArgs first so -c/-config and flags of
// other components do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-r", "-t", "-b", "-u", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP API")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "address and port to run gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Var(flagx.Minutes{D: &config.ResetTokenValidity}, "r", "reset token validity (in minutes)")
	fs.Var(flagx.Minutes{D: &config.SessionTTL}, "t", "session lifetime (in minutes)")
	fs.StringVar(&config.SessionBackend, "b", config.SessionBackend, "session backend")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
