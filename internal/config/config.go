package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
	BridgeConfig
	StoreConfig
	SeedConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Token
	Security
	Bridge
	Store
	Seed
}

// New loads configuration from the environment and, when present, a
// config.yaml in the working directory or ./config.
func New() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config over an existing viper instance. Environment
// variables override file values; "bridge.token_url" reads BRIDGE_TOKEN_URL.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	bridge, err := newBridge(v)
	if err != nil {
		return nil, err
	}

	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{v: v},
		Token:    Token{v: v},
		Security: Security{v: v},
		Bridge:   bridge,
		Store:    Store{v: v},
		Seed:     Seed{v: v},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portKey, "8080")
	v.SetDefault(appNameKey, "Group Parent Auth")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(baseURLKey, "http://localhost:8080")

	v.SetDefault(corsOriginsKey, "")

	v.SetDefault(tokenExpiryKey, "4h")

	v.SetDefault(loginMaxFailuresKey, 0)
	v.SetDefault(loginFailureWindowKey, "15m")

	v.SetDefault(bridgeTimeoutKey, "10s")
	v.SetDefault(bridgeRedirectKey, "/admin")

	v.SetDefault(redisDBKey, 0)
}
