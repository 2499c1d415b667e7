package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	jwtSecretKey          = "jwt_secret"
	tokenExpiryKey        = "token_expiry"
	loginMaxFailuresKey   = "login_max_failures"
	loginFailureWindowKey = "login_failure_window"
)

type TokenConfig interface {
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
}

type Token struct {
	v *viper.Viper
}

var _ TokenConfig = Token{}

// GetJWTSecret returns the operator supplied signing key. It is never logged.
func (t Token) GetJWTSecret() string {
	return t.v.GetString(jwtSecretKey)
}

func (t Token) GetTokenExpiry() time.Duration {
	return t.v.GetDuration(tokenExpiryKey)
}

type SecurityConfig interface {
	GetLoginMaxFailures() int
	GetLoginFailureWindow() time.Duration
	GetEnableRateLimiting() bool
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetLoginMaxFailures is the number of failed PIN attempts per identifier
// allowed inside the failure window. Zero disables limiting.
func (s Security) GetLoginMaxFailures() int {
	return s.v.GetInt(loginMaxFailuresKey)
}

func (s Security) GetLoginFailureWindow() time.Duration {
	return s.v.GetDuration(loginFailureWindowKey)
}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetLoginMaxFailures() > 0
}
