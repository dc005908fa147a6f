package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetCheckoutName() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	API
	Sessions
}

// New loads the configuration from the YAML file named by CONFIG_PATH (if set)
// and overlays the environment. Unset values fall back to their defaults.
func New() (Config, error) {
	return Load(os.Getenv(configPathVar))
}

func Load(path string) (Config, error) {
	var c mainConfig
	if path != "" {
		if err := cleanenv.ReadConfig(path, &c); err != nil {
			return nil, fmt.Errorf("[config Load] failed to read %q: %w", path, err)
		}
		return c, nil
	}
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, fmt.Errorf("[config Load] failed to read env: %w", err)
	}
	return c, nil
}
