package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	bridgeRegionsKey  = "bridge.regions"
	bridgeTokenURLKey = "bridge.token_url"
	bridgeIssuerKey   = "bridge.issuer"
	bridgeJWKSURLKey  = "bridge.jwks_url"
	bridgeTimeoutKey  = "bridge.timeout"
	bridgeRedirectKey = "bridge.redirect"
)

type BridgeConfig interface {
	// GetBridgeClientIDs maps a membership region (e.g. "nsw") to the
	// identity provider client id registered for it.
	GetBridgeClientIDs() map[string]string
	GetBridgeTokenURL() string
	GetBridgeIssuer() string
	GetBridgeJWKSURL() string
	GetBridgeTimeout() time.Duration
	GetBridgeRedirect() string
}

type Bridge struct {
	v         *viper.Viper
	clientIDs map[string]string
}

var _ BridgeConfig = Bridge{}

// newBridge decodes the region table, which may come from a YAML map or
// from BRIDGE_REGIONS="nsw=abc123,vic=def456".
func newBridge(v *viper.Viper) (Bridge, error) {
	regions := map[string]string{}
	if v.IsSet(bridgeRegionsKey) {
		err := v.UnmarshalKey(bridgeRegionsKey, &regions, func(dc *mapstructure.DecoderConfig) {
			dc.DecodeHook = stringToRegionMapHookFunc()
		})
		if err != nil {
			return Bridge{}, fmt.Errorf("decode %s: %w", bridgeRegionsKey, err)
		}
	}

	clientIDs := make(map[string]string, len(regions))
	for region, clientID := range regions {
		region = strings.ToLower(strings.TrimSpace(region))
		clientID = strings.TrimSpace(clientID)
		if region == "" || clientID == "" {
			continue
		}
		clientIDs[region] = clientID
	}
	return Bridge{v: v, clientIDs: clientIDs}, nil
}

func stringToRegionMapHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Map {
			return data, nil
		}
		out := map[string]string{}
		for _, pair := range strings.Split(data.(string), ",") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			k, val, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid region entry %q, want region=client_id", pair)
			}
			out[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
		return out, nil
	}
}

func (b Bridge) GetBridgeClientIDs() map[string]string {
	out := make(map[string]string, len(b.clientIDs))
	for k, v := range b.clientIDs {
		out[k] = v
	}
	return out
}

func (b Bridge) GetBridgeTokenURL() string {
	return b.v.GetString(bridgeTokenURLKey)
}

func (b Bridge) GetBridgeIssuer() string {
	return b.v.GetString(bridgeIssuerKey)
}

func (b Bridge) GetBridgeJWKSURL() string {
	return b.v.GetString(bridgeJWKSURLKey)
}

func (b Bridge) GetBridgeTimeout() time.Duration {
	return b.v.GetDuration(bridgeTimeoutKey)
}

// GetBridgeRedirect is the admin landing route after a bridge login.
func (b Bridge) GetBridgeRedirect() string {
	return b.v.GetString(bridgeRedirectKey)
}
