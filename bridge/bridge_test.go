package bridge_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/group-parent-auth/bridge"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://members.example.org"
	nswClientID  = "client-nsw"
	testMember   = "12345"
	testPassword = "correct-horse"
)

type fakeBridgeConfig struct {
	tokenURL string
	issuer   string
}

func (f fakeBridgeConfig) GetBridgeClientIDs() map[string]string {
	return map[string]string{"nsw": nswClientID, "vic": "client-vic"}
}
func (f fakeBridgeConfig) GetBridgeTokenURL() string { return f.tokenURL }
func (f fakeBridgeConfig) GetBridgeIssuer() string { return f.issuer }
func (f fakeBridgeConfig) GetBridgeJWKSURL() string { return "" }
func (f fakeBridgeConfig) GetBridgeTimeout() time.Duration { return time.Second }
func (f fakeBridgeConfig) GetBridgeRedirect() string { return "/admin" }

type tokenServer struct {
	*httptest.Server
	calls   atomic.Int32
	idToken func(clientID string) string
}

func newTokenServer(t *testing.T, idToken func(clientID string) string) *tokenServer {
	t.Helper()
	ts := &tokenServer{idToken: idToken}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		if r.PostForm.Get("grant_type") != "password" ||
			r.PostForm.Get("username") != testMember ||
			r.PostForm.Get("password") != testPassword ||
			r.PostForm.Get("client_id") != nswClientID {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     ts.idToken(r.PostForm.Get("client_id")),
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLogin_Success(t *testing.T) {
	ts := newTokenServer(t, func(string) string { return "header.payload.signature" })
	a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL})
	require.NoError(t, err)

	res, err := a.Login(context.Background(), " NSW ", testMember, testPassword)
	require.NoError(t, err)
	require.Equal(t, "header.payload.signature", res.IDToken)
	require.Equal(t, "access-abc", res.AccessToken)
	require.Equal(t, "nsw-"+testMember, res.Username)
	require.False(t, res.Expiry.IsZero())
	require.EqualValues(t, 1, ts.calls.Load(), "a single grant per login")
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		ts := newTokenServer(t, func(string) string { return "x.y.z" })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL})
		require.NoError(t, err)

		_, err = a.Login(ctx, "nsw", testMember, "wrong")
		require.ErrorIs(t, err, bridge.ErrLoginFailed)
		require.EqualValues(t, 1, ts.calls.Load(), "no probing across client ids")
	})

	t.Run("unknown region makes no call", func(t *testing.T) {
		ts := newTokenServer(t, func(string) string { return "x.y.z" })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL})
		require.NoError(t, err)

		_, err = a.Login(ctx, "qld", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrLoginFailed)
		require.Zero(t, ts.calls.Load())
	})

	t.Run("missing id token", func(t *testing.T) {
		ts := newTokenServer(t, func(string) string { return "" })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL})
		require.NoError(t, err)

		_, err = a.Login(ctx, "nsw", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrLoginFailed)
	})

	t.Run("missing fields", func(t *testing.T) {
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: "http://127.0.0.1:1"})
		require.NoError(t, err)

		_, err = a.Login(ctx, "nsw", "", testPassword)
		require.ErrorIs(t, err, bridge.ErrMissingFields)
	})

	t.Run("provider unreachable", func(t *testing.T) {
		ts := newTokenServer(t, func(string) string { return "x.y.z" })
		url := ts.URL
		ts.Close()

		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: url})
		require.NoError(t, err)

		_, err = a.Login(ctx, "nsw", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrUpstream)
	})

	t.Run("provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: srv.URL})
		require.NoError(t, err)

		_, err = a.Login(ctx, "nsw", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrUpstream)
	})
}

func TestLogin_VerifiesIDToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	now := time.Now()

	sign := func(t *testing.T, claims jwt.MapClaims, signingKey *rsa.PrivateKey) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(signingKey)
		require.NoError(t, err)
		return signed
	}
	claimsFor := func(aud string) jwt.MapClaims {
		return jwt.MapClaims{
			"iss": testIssuer,
			"aud": aud,
			"sub": testMember,
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		}
	}

	t.Run("valid token", func(t *testing.T) {
		ts := newTokenServer(t, func(clientID string) string { return sign(t, claimsFor(clientID), key) })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL, issuer: testIssuer}, bridge.WithKeySet(keys))
		require.NoError(t, err)

		res, err := a.Login(context.Background(), "nsw", testMember, testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, res.IDToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		ts := newTokenServer(t, func(string) string { return sign(t, claimsFor("someone-else"), key) })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL, issuer: testIssuer}, bridge.WithKeySet(keys))
		require.NoError(t, err)

		_, err = a.Login(context.Background(), "nsw", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrLoginFailed)
	})

	t.Run("foreign signing key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		ts := newTokenServer(t, func(clientID string) string { return sign(t, claimsFor(clientID), other) })
		a, err := bridge.NewAuthenticator(fakeBridgeConfig{tokenURL: ts.URL, issuer: testIssuer}, bridge.WithKeySet(keys))
		require.NoError(t, err)

		_, err = a.Login(context.Background(), "nsw", testMember, testPassword)
		require.ErrorIs(t, err, bridge.ErrLoginFailed)
	})
}

func TestNewAuthenticator_RequiresTokenURL(t *testing.T) {
	_, err := bridge.NewAuthenticator(fakeBridgeConfig{})
	require.Error(t, err)
}
