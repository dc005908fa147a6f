package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRefreshPath() string
	GetAPITimeout() time.Duration
}

type API struct {
	BaseURL     string        `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8000"`
	RefreshPath string        `yaml:"api_refresh_path" env:"API_REFRESH_PATH" env-default:"/api/token/refresh/"`
	Timeout     time.Duration `yaml:"api_timeout" env:"API_TIMEOUT" env-default:"10s"`
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend REST API origin without a trailing slash.
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.BaseURL, "/")
}

func (a API) GetRefreshPath() string {
	return a.RefreshPath
}

// GetAPITimeout is the fixed overall timeout applied to every backend call.
func (a API) GetAPITimeout() time.Duration {
	if a.Timeout <= 0 {
		return 10 * time.Second
	}
	return a.Timeout
}
