package console

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by LoadConfig. SIPCHA_API_URL is the
// runtime analogue of the build-time endpoint override (see gateway).
const (
	EnvEndpoint  = "SIPCHA_API_URL"
	EnvTenant    = "SIPCHA_TENANT"
	EnvStorePath = "SIPCHA_STORE_PATH"
)

// FileConfig is the on-disk configuration (sipcha.yaml). Every field is
// optional; environment variables override file values.
type FileConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	Tenant         string        `yaml:"tenant"`
	StorePath      string        `yaml:"store_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoadConfig reads configuration from an optional YAML file and the
// environment. A missing file is not an error; an unreadable or malformed
// one is. Environment variables win over file values.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return cfg, fmt.Errorf("console: read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("console: parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvTenant); v != "" {
		cfg.Tenant = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.StorePath = v
	}
	return cfg, nil
}
