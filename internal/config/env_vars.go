package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	portKey    = "port"
	appNameKey = "app_name"
	envKey     = "env"
	baseURLKey = "base_url"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portKey)
	if port == "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameKey)
}

func (e EnvVars) GetEnv() string {
	return e.v.GetString(envKey)
}

// GetBaseURL returns the externally visible base URL (e.g., "https://portal.example.org")
func (e EnvVars) GetBaseURL() string {
	return e.v.GetString(baseURLKey)
}
