package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/group-parent-auth/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	c, err := config.FromViper(viper.New())
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 4*time.Hour, c.GetTokenExpiry())
	require.Equal(t, 0, c.GetLoginMaxFailures())
	require.False(t, c.GetEnableRateLimiting())
	require.Equal(t, 10*time.Second, c.GetBridgeTimeout())
	require.Equal(t, "/admin", c.GetBridgeRedirect())
	require.Empty(t, c.GetBridgeClientIDs())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOGIN_MAX_FAILURES", "5")
	t.Setenv("BRIDGE_TOKEN_URL", "https://idp.example.org/oauth2/token")
	t.Setenv("BRIDGE_REGIONS", "NSW=client-nsw, vic = client-vic")
	t.Setenv("CORS_ORIGINS", "https://a.example.org, https://b.example.org")

	c, err := config.FromViper(viper.New())
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "s3cret", c.GetJWTSecret())
	require.True(t, c.GetEnableRateLimiting())
	require.Equal(t, "https://idp.example.org/oauth2/token", c.GetBridgeTokenURL())
	require.Equal(t, map[string]string{"nsw": "client-nsw", "vic": "client-vic"}, c.GetBridgeClientIDs())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.org"))
}

func TestFromViper_RegionsFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
bridge:
  regions:
    qld: client-qld
    wa: client-wa
`)))

	c, err := config.FromViper(v)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"qld": "client-qld", "wa": "client-wa"}, c.GetBridgeClientIDs())
}

func TestFromViper_InvalidRegions(t *testing.T) {
	t.Setenv("BRIDGE_REGIONS", "nsw")

	_, err := config.FromViper(viper.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "region=client_id")
}

func TestFromViper_SeedParents(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
seed:
  parents:
    - group_id: g1
      name: Jane Smith
      phone: "0412 345 678"
      pin: "1234"
`)))

	c, err := config.FromViper(v)
	require.NoError(t, err)
	seeds, err := c.GetSeedParents()
	require.NoError(t, err)
	require.Equal(t, []config.SeedParent{{GroupID: "g1", Name: "Jane Smith", Phone: "0412 345 678", PIN: "1234"}}, seeds)

	empty, err := config.FromViper(viper.New())
	require.NoError(t, err)
	none, err := empty.GetSeedParents()
	require.NoError(t, err)
	require.Empty(t, none)
}
