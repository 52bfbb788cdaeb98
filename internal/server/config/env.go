package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded if present; existing environment variables win.
var envFile = ".env"

// parseEnv overlays Config with environment variables. PEM keys may be
// given on one line with literal "\n" separators.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	setString(&cfg.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&cfg.DocumentEngineURL, "DOCUMENT_ENGINE_URL")
	setString(&cfg.DocumentEngineAuthToken, "DOCUMENT_ENGINE_AUTH_TOKEN")
	setPEM(&cfg.JWTPrivateKey, "JWT_PRIVATE_KEY")
	setString(&cfg.JWTPrivateKeyFile, "JWT_PRIVATE_KEY_FILE")
	setBool(&cfg.CollaborationEnabled, "COLLABORATION_ENABLED")
	setString(&cfg.AssistantURL, "AI_ASSISTANT_URL")
	setPEM(&cfg.AssistantJWTPrivateKey, "AI_ASSISTANT_JWT_PRIVATE_KEY")
	setString(&cfg.ExamplesCatalog, "EXAMPLES_CATALOG")
	setString(&cfg.ExamplesDir, "EXAMPLES_DIR")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Region, "S3_REGION")
	setString(&cfg.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&cfg.S3RootUser, "S3_ROOT_USER")
	setString(&cfg.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.ClientURL, "CLIENT_URL")
	setString(&cfg.LogBackend, "LOG_BACKEND")

	if v, ok := os.LookupEnv("REMOTE_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RemoteTimeout = d
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setPEM(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.ReplaceAll(v, `\n`, "\n")
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
