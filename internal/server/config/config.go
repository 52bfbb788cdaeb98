// Package config handles configuration for the server component,
// including defaults, environment/.env overlay, JSON overlay, and
// command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// Config holds runtime settings for the docshare server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DocumentEngineURL / DocumentEngineAuthToken: remote document store.
//   - JWTPrivateKey / JWTPrivateKeyFile: RSA key (PEM) signing capability tokens.
//   - CollaborationEnabled: when true a signing key is mandatory at startup.
//   - AssistantURL / AssistantJWTPrivateKey: optional AI assistant companion.
//   - ExamplesCatalog / ExamplesDir: example list and local canonical files.
//   - S3*: when S3Bucket is set, canonical files are read from object storage.
//   - DatabaseDSN / RedisAddr: persistent association store; memory otherwise.
//   - RemoteTimeout: upper bound for each document engine call.
//   - ClientURL: allowed CORS origin.
//   - LogBackend: "slog" or "zap".
type Config struct {
	EndpointAddrHTTP        string
	DocumentEngineURL       string
	DocumentEngineAuthToken string
	JWTPrivateKey           string
	JWTPrivateKeyFile       string
	CollaborationEnabled    bool
	AssistantURL            string
	AssistantJWTPrivateKey  string
	ExamplesCatalog         string
	ExamplesDir             string
	S3Bucket                string
	S3Region                string
	S3BaseEndpoint          string
	S3RootUser              string
	S3RootPassword          string
	DatabaseDSN             string
	RedisAddr               string
	RemoteTimeout           time.Duration
	ClientURL               string
	LogBackend              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the document engine token is insecure and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.DocumentEngineURL = "http://localhost:5000"
	c.DocumentEngineAuthToken = "secret"
	c.CollaborationEnabled = true
	c.ExamplesCatalog = "examples.json"
	c.ExamplesDir = "assets"
	c.S3Region = "us-east-1"
	c.RemoteTimeout = 5 * time.Second
	c.LogBackend = "slog"
}

// Validate reports settings that make an enabled feature unusable.
// Key material itself is checked when the token issuer is built.
func (c *Config) Validate() error {
	if c.DocumentEngineURL == "" {
		return fmt.Errorf("%w: document engine URL is not set", common.ErrConfiguration)
	}
	if c.CollaborationEnabled && c.JWTPrivateKey == "" && c.JWTPrivateKeyFile == "" {
		return fmt.Errorf("%w: collaboration is enabled but no JWT private key is configured", common.ErrConfiguration)
	}
	if c.AssistantURL != "" && c.AssistantJWTPrivateKey == "" {
		return fmt.Errorf("%w: AI assistant URL is set but its JWT private key is missing", common.ErrConfiguration)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("%w: remote timeout must be positive", common.ErrConfiguration)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (and an optional .env file), an optional JSON file
// and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
