package bridge

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/group-parent-auth/internal/config"
	apperrors "github.com/jrsteele09/group-parent-auth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrLoginFailed covers unknown regions, rejected credentials and
	// unusable provider responses.
	ErrLoginFailed = apperrors.ErrLoginFailed
	// ErrUpstream is returned when the provider could not be reached.
	ErrUpstream = apperrors.ErrUpstream
	// ErrMissingFields is returned when region, member id or password is empty.
	ErrMissingFields = apperrors.ErrMissingFields
)

// Result holds the provider tokens for a member.
type Result struct {
	IDToken     string
	AccessToken string
	Username    string // region-memberId
	Expiry      time.Time
}

// Authenticator exchanges membership credentials for provider tokens using
// the OAuth2 password grant. Each region has its own client id.
type Authenticator struct {
	clientIDs  map[string]string
	tokenURL   string
	issuer     string
	keySet     oidc.KeySet
	timeout    time.Duration
	httpClient *http.Client
	nowFunc    func() time.Time
	log        zerolog.Logger
}

type Option func(*Authenticator)

// WithKeySet verifies id tokens against keys, overriding the configured
// JWKS URL.
func WithKeySet(keys oidc.KeySet) Option {
	return func(a *Authenticator) {
		a.keySet = keys
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *Authenticator) {
		a.httpClient = client
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.nowFunc = now
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.log = l
	}
}

func NewAuthenticator(cfg config.BridgeConfig, options ...Option) (*Authenticator, error) {
	if cfg.GetBridgeTokenURL() == "" {
		return nil, errors.New("[NewAuthenticator] bridge token url is required")
	}

	a := &Authenticator{
		clientIDs: cfg.GetBridgeClientIDs(),
		tokenURL:  cfg.GetBridgeTokenURL(),
		issuer:    cfg.GetBridgeIssuer(),
		timeout:   cfg.GetBridgeTimeout(),
		nowFunc:   time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(a)
	}

	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.timeout}
	}
	if a.keySet == nil && a.issuer != "" && cfg.GetBridgeJWKSURL() != "" {
		a.keySet = oidc.NewRemoteKeySet(oidc.ClientContext(context.Background(), a.httpClient), cfg.GetBridgeJWKSURL())
	}
	return a, nil
}

// Regions lists the configured region codes.
func (a *Authenticator) Regions() []string {
	out := make([]string, 0, len(a.clientIDs))
	for region := range a.clientIDs {
		out = append(out, region)
	}
	return out
}

// Login resolves the client id for region and performs a single password
// grant for the member.
func (a *Authenticator) Login(ctx context.Context, region, memberID, password string) (*Result, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	memberID = strings.TrimSpace(memberID)
	if region == "" || memberID == "" || password == "" {
		return nil, ErrMissingFields
	}

	logger := a.log.With().Str("region", region).Logger()

	clientID, ok := a.clientIDs[region]
	if !ok {
		logger.Warn().Msg("bridge login for unconfigured region")
		return nil, ErrLoginFailed
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	conf := &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{oidc.ScopeOpenID},
	}

	tok, err := conf.PasswordCredentialsToken(ctx, memberID, password)
	if err != nil {
		return nil, a.classify(logger, err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		logger.Warn().Msg("bridge token response has no id_token")
		return nil, ErrLoginFailed
	}

	if a.keySet != nil {
		verifier := oidc.NewVerifier(a.issuer, a.keySet, &oidc.Config{ClientID: clientID, Now: a.nowFunc, SkipIssuerCheck: a.issuer == ""})
		if _, err := verifier.Verify(ctx, idToken); err != nil {
			logger.Warn().Err(err).Msg("bridge id_token failed verification")
			return nil, ErrLoginFailed
		}
	}

	return &Result{
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
		Username:    region + "-" + memberID,
		Expiry:      tok.Expiry,
	}, nil
}

func (a *Authenticator) classify(logger zerolog.Logger, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < http.StatusInternalServerError {
		logger.Info().Int("status", retrieveErr.Response.StatusCode).Str("error_code", retrieveErr.ErrorCode).Msg("bridge credentials rejected")
		return ErrLoginFailed
	}
	logger.Error().Err(err).Msg("bridge provider call failed")
	return apperrors.Wrapf(ErrUpstream, "password grant: %v", err)
}
