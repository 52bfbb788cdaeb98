package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/docshare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-e string   document engine base URL
//	-t string   document engine API auth token
//	-k string   path to the PEM RSA key signing capability tokens
//	-w bool     enable collaboration tokens (requires a key)
//	-i string   AI assistant URL
//	-x string   example catalog (JSON)
//	-f string   local directory with canonical example files
//	-d string   PostgreSQL DSN for the association store
//	-r string   Redis address for the association store
//	-o int      document engine call timeout, seconds
//	-l string   allowed CORS origin
//	-b string   S3 bucket with canonical example files
//	-g string   S3 region
//	-s string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string   S3 access key
//	-p string   S3 secret key
//
// Key contents are never accepted on the command line; use the environment
// or the JSON file.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-e", "-t", "-k", "-i", "-x", "-f", "-d", "-r", "-o", "-l", "-b", "-g", "-s", "-u", "-p"},
		"-w")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DocumentEngineURL, "e", config.DocumentEngineURL, "document engine URL")
	fs.StringVar(&config.DocumentEngineAuthToken, "t", config.DocumentEngineAuthToken, "document engine auth token")
	fs.StringVar(&config.JWTPrivateKeyFile, "k", config.JWTPrivateKeyFile, "JWT private key file")
	fs.BoolVar(&config.CollaborationEnabled, "w", config.CollaborationEnabled, "enable collaboration")
	fs.StringVar(&config.AssistantURL, "i", config.AssistantURL, "AI assistant URL")
	fs.StringVar(&config.ExamplesCatalog, "x", config.ExamplesCatalog, "example catalog file")
	fs.StringVar(&config.ExamplesDir, "f", config.ExamplesDir, "example files directory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")

	remoteTimeout := fs.Int("o", int(config.RemoteTimeout.Seconds()), "document engine timeout (in seconds)")

	fs.StringVar(&config.ClientURL, "l", config.ClientURL, "allowed CORS origin")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -o applies only when given; an earlier sub-second value is kept.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "o" {
			config.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
		}
	})
}
