package config

import "strings"

const configPathVar = "CONFIG_PATH"

type EnvVars struct {
	Port         string `yaml:"port" env:"PORT" env-default:"8080"`
	AppName      string `yaml:"app_name" env:"APP_NAME" env-default:"Rental Storefront"`
	Env          string `yaml:"env" env:"ENV" env-default:"DEV"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	CheckoutName string `yaml:"checkout_name" env:"CHECKOUT_NAME"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetEnv returns the deployment environment; "DEV" enables route listings and
// console logging.
func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetCheckoutName is the merchant name shown in the hosted checkout widget.
func (e EnvVars) GetCheckoutName() string {
	if e.CheckoutName == "" {
		return e.AppName
	}
	return e.CheckoutName
}
