package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docshare/internal/flagx"
	"github.com/dmitrijs2005/docshare/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer and
// omitted fields leave the corresponding Config value untouched, so a file
// only needs to mention what it overrides.
type JsonConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http"`
	DocumentEngineURL       string          `json:"document_engine_url"`
	DocumentEngineAuthToken string          `json:"document_engine_auth_token"`
	JWTPrivateKey           string          `json:"jwt_private_key"`
	JWTPrivateKeyFile       string          `json:"jwt_private_key_file"`
	CollaborationEnabled    *bool           `json:"collaboration_enabled"`
	AssistantURL            string          `json:"ai_assistant_url"`
	AssistantJWTPrivateKey  string          `json:"ai_assistant_jwt_private_key"`
	ExamplesCatalog         string          `json:"examples_catalog"`
	ExamplesDir             string          `json:"examples_dir"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3BaseEndpoint          string          `json:"s3_base_endpoint"`
	S3RootUser              string          `json:"s3_root_user"`
	S3RootPassword          string          `json:"s3_root_password"`
	DatabaseDSN             string          `json:"database_dsn"`
	RedisAddr               string          `json:"redis_addr"`
	RemoteTimeout           *timex.Duration `json:"remote_timeout"`
	ClientURL               string          `json:"client_url"`
	LogBackend              string          `json:"log_backend"`
}

// parseJson loads the file named by -c/-config, if any, over config.
// An unreadable or invalid file panics: the process cannot start with a
// configuration it was explicitly pointed at but cannot read.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DocumentEngineURL, c.DocumentEngineURL)
	overlay(&config.DocumentEngineAuthToken, c.DocumentEngineAuthToken)
	overlay(&config.JWTPrivateKey, c.JWTPrivateKey)
	overlay(&config.JWTPrivateKeyFile, c.JWTPrivateKeyFile)
	overlay(&config.AssistantURL, c.AssistantURL)
	overlay(&config.AssistantJWTPrivateKey, c.AssistantJWTPrivateKey)
	overlay(&config.ExamplesCatalog, c.ExamplesCatalog)
	overlay(&config.ExamplesDir, c.ExamplesDir)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.ClientURL, c.ClientURL)
	overlay(&config.LogBackend, c.LogBackend)

	if c.CollaborationEnabled != nil {
		config.CollaborationEnabled = *c.CollaborationEnabled
	}
	if c.RemoteTimeout != nil {
		config.RemoteTimeout = c.RemoteTimeout.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
