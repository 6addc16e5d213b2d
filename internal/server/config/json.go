package config

import (
	"encoding/json"
	"os"
)

// jsonConfig is the intermediate DTO used only for reading JSON config
// files; its values are copied into the runtime Config after unmarshalling.
// Only keys present in the file override anything.
type jsonConfig struct {
	EndpointAddr          *string   `json:"endpoint_addr"`
	DatabaseDSN           *string   `json:"database_dsn"`
	SecretKey             *string   `json:"secret_key"`
	SessionTTL            *Duration `json:"session_ttl"`
	PrivateDefaultInherit *bool     `json:"private_default_inherit"`
	S3RootUser            *string   `json:"s3_root_user"`
	S3RootPassword        *string   `json:"s3_root_password"`
	S3Bucket              *string   `json:"s3_bucket"`
	S3Region              *string   `json:"s3_region"`
	S3BaseEndpoint        *string   `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by the -c/-config flag
// or the CONFIG environment variable. No file, no overlay. An unreadable or
// invalid file panics: a half-applied config is worse than no start.
func parseJson(config *Config) {
	path := jsonConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *jsonConfig) {
	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.PrivateDefaultInherit != nil {
		config.PrivateDefaultInherit = *c.PrivateDefaultInherit
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
}

// jsonConfigPath scans os.Args by hand so the JSON overlay can run before
// the main flag parse (flags must win over the file).
func jsonConfigPath() string {
	args := os.Args[1:]
	for i, arg := range args {
		if (arg == "-c" || arg == "-config" || arg == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("CONFIG")
}
