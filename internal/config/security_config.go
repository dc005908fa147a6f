package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSecureCookies() bool
}

type Security struct {
	MaxSessionAge time.Duration `yaml:"session_max_age" env:"SESSION_MAX_AGE" env-default:"168h"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"false"`
}

var _ SecurityConfig = Security{}

// GetMaxSessionAge bounds how long a signed-in browser session is kept, which
// matches the lifetime of the backend refresh token.
func (s Security) GetMaxSessionAge() time.Duration {
	if s.MaxSessionAge <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.MaxSessionAge
}

func (s Security) GetSecureCookies() bool {
	return s.SecureCookies
}
