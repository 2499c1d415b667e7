package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/group-parent-auth/internal/errors"
)

const (
	// RoleAuthenticated is the backend role every parent token carries.
	RoleAuthenticated = "authenticated"
	// AppRoleParent marks the token as a parent self-service token.
	AppRoleParent = "parent"

	// DefaultExpiry is fixed at issuance; tokens are never refreshed.
	DefaultExpiry = 4 * time.Hour
)

// ParentClaims is the claim set of a parent bearer token.
type ParentClaims struct {
	Role    string `json:"role"`
	AppRole string `json:"app_role"`
	GroupID string `json:"group_id"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies parent bearer tokens.
type Issuer struct {
	signer  Signer
	expiry  time.Duration
	nowFunc func() time.Time
}

type IssuerOption func(*Issuer)

func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.expiry = expiry
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(signer Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		expiry:  DefaultExpiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	if i.expiry <= 0 {
		i.expiry = DefaultExpiry
	}
	return i
}

// Issue signs a token for the parent in the group and returns it with its expiry.
func (i *Issuer) Issue(subject, groupID string) (string, time.Time, error) {
	now := i.nowFunc()
	expiresAt := now.Add(i.expiry)

	claims := ParentClaims{
		Role:    RoleAuthenticated,
		AppRole: AppRoleParent,
		GroupID: groupID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue parent token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of a parent token.
func (i *Issuer) Verify(raw string) (*ParentClaims, error) {
	claims := &ParentClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(i.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if apperrors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "verify: %v", err)
	}
	if !parsed.Valid || claims.AppRole != AppRoleParent || claims.Subject == "" || claims.GroupID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ParseUnverified reads the claims of a token without checking its
// signature. Only use the result for local decisions such as expiry hints.
func ParseUnverified(raw string) (*ParentClaims, error) {
	claims := &ParentClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "parse: %v", err)
	}
	return claims, nil
}
