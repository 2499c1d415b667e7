package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/group-parent-auth/internal/errors"
	"github.com/jrsteele09/group-parent-auth/token"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(fixedNow))

	raw, expiresAt, err := issuer.Issue("parent-1", "g1")
	require.NoError(t, err)
	require.Equal(t, fixedNow().Add(4*time.Hour), expiresAt)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "parent-1", claims.Subject)
	require.Equal(t, "authenticated", claims.Role)
	require.Equal(t, "parent", claims.AppRole)
	require.Equal(t, "g1", claims.GroupID)
	require.Equal(t, fixedNow().Add(4*time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, fixedNow().Unix(), claims.IssuedAt.Unix())
	require.NotEmpty(t, claims.ID)
}

func TestIssuer_ClaimShape(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(fixedNow))
	raw, _, err := issuer.Issue("parent-1", "g1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithTimeFunc(fixedNow))
	require.NoError(t, err)

	require.Equal(t, "parent-1", claims["sub"])
	require.Equal(t, "authenticated", claims["role"])
	require.Equal(t, "parent", claims["app_role"])
	require.Equal(t, "g1", claims["group_id"])
	require.EqualValues(t, fixedNow().Add(4*time.Hour).Unix(), claims["exp"])
}

func TestIssuer_VerifyRejects(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(fixedNow))
	raw, _, err := issuer.Issue("parent-1", "g1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := token.NewIssuer(token.NewHMACSigner("another-secret"), token.WithNowFunc(fixedNow))
		_, err := other.Verify(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(func() time.Time {
			return fixedNow().Add(4*time.Hour + time.Second)
		}))
		_, err := later.Verify(raw)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("not a parent token", func(t *testing.T) {
		signed, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{
			"sub":      "admin-1",
			"role":     "authenticated",
			"app_role": "admin",
			"group_id": "g1",
			"exp":      fixedNow().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)
		_, err = issuer.Verify(signed)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestIssuer_CustomExpiry(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(fixedNow), token.WithExpiry(time.Hour))
	_, expiresAt, err := issuer.Issue("parent-1", "g1")
	require.NoError(t, err)
	require.Equal(t, fixedNow().Add(time.Hour), expiresAt)
}

func TestIssuer_NoSecret(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(""))
	_, _, err := issuer.Issue("parent-1", "g1")
	require.Error(t, err)
}

func TestParseUnverified(t *testing.T) {
	issuer := token.NewIssuer(token.NewHMACSigner(testSecret), token.WithNowFunc(fixedNow))
	raw, _, err := issuer.Issue("parent-1", "g1")
	require.NoError(t, err)

	claims, err := token.ParseUnverified(raw)
	require.NoError(t, err)
	require.Equal(t, "parent-1", claims.Subject)
	require.Equal(t, fixedNow().Add(4*time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = token.ParseUnverified("garbage")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
