package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/group-parent-auth/auth/attempts"
	"github.com/jrsteele09/group-parent-auth/parents"
	"github.com/jrsteele09/group-parent-auth/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest is a parent sign-in attempt.
type LoginRequest struct {
	Identifier string // Phone number or name
	EnteredPIN string
	GroupID    string
}

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Parent    parents.Profile
	GroupID   string
}

// Service authenticates parents against the credential store and issues
// bearer tokens.
type Service struct {
	parents parents.Repo
	issuer  *token.Issuer
	limiter attempts.Limiter
	log     zerolog.Logger
	compare func(hash, pin []byte) error
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLimiter sets the failed attempt policy. The default never blocks.
func WithLimiter(l attempts.Limiter) ServiceOption {
	return func(s *Service) {
		s.limiter = l
	}
}

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(repo parents.Repo, issuer *token.Issuer, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] parents repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] token issuer is required")
	}

	s := &Service{
		parents: repo,
		issuer:  issuer,
		limiter: attempts.NoLimit{},
		log:     zerolog.Nop(),
		compare: bcrypt.CompareHashAndPassword,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login matches the identifier within the group, verifies the PIN and issues
// a token. Every authentication failure returns ErrInvalidCredentials; the
// cause is only logged.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.Identifier) == "" || req.EnteredPIN == "" || strings.TrimSpace(req.GroupID) == "" {
		return nil, ErrMissingFields
	}

	key := attempts.Key(req.GroupID, limiterIdentifier(req.Identifier))
	logger := s.log.With().Str("group_id", req.GroupID).Logger()

	allowed, err := s.limiter.Allowed(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Msg("attempt limiter unavailable, continuing")
		allowed = true
	}
	if !allowed {
		logger.Warn().Msg("parent login blocked by attempt policy")
		s.pinMatches(req.EnteredPIN, "")
		return nil, ErrInvalidCredentials
	}

	candidates, err := s.parents.ListByGroup(ctx, req.GroupID)
	if err != nil {
		logger.Error().Err(err).Msg("parent lookup failed")
		s.pinMatches(req.EnteredPIN, "")
		return nil, ErrInvalidCredentials
	}

	parent, ok := parents.Match(candidates, req.Identifier)
	if !ok {
		logger.Debug().Int("candidates", len(candidates)).Msg("no parent matched identifier")
		s.pinMatches(req.EnteredPIN, "")
		return nil, s.fail(ctx, key)
	}

	if !s.pinMatches(req.EnteredPIN, parent.PINHash) {
		logger.Debug().Str("parent_id", parent.ID).Msg("pin mismatch")
		return nil, s.fail(ctx, key)
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("failed to reset attempt counter")
	}

	signed, expiresAt, err := s.issuer.Issue(parent.ID, req.GroupID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] issuer.Issue")
	}

	return &LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		Parent:    parent.Profile(),
		GroupID:   req.GroupID,
	}, nil
}

// Profile returns the public profile of a signed-in parent.
func (s *Service) Profile(ctx context.Context, groupID, parentID string) (*parents.Profile, error) {
	parent, err := s.parents.GetByID(ctx, groupID, parentID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Profile] parents.GetByID")
	}
	profile := parent.Profile()
	return &profile, nil
}

// ChangePIN replaces a parent's PIN after checking the current one.
func (s *Service) ChangePIN(ctx context.Context, groupID, parentID, currentPIN, newPIN string) error {
	if currentPIN == "" || newPIN == "" {
		return ErrMissingFields
	}

	parent, err := s.parents.GetByID(ctx, groupID, parentID)
	if err != nil {
		s.log.Warn().Err(err).Str("parent_id", parentID).Msg("pin change for unknown parent")
		s.pinMatches(currentPIN, "")
		return ErrInvalidCredentials
	}
	if !s.pinMatches(currentPIN, parent.PINHash) {
		return ErrInvalidCredentials
	}
	if err := parents.ValidatePIN(newPIN); err != nil {
		return errors.Wrap(ErrInvalidPIN, err.Error())
	}

	hash, err := parents.HashPIN(newPIN)
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePIN] HashPIN")
	}
	if err := s.parents.SetPINHash(ctx, groupID, parentID, hash); err != nil {
		return errors.Wrap(err, "[Service.ChangePIN] parents.SetPINHash")
	}
	s.log.Info().Str("group_id", groupID).Str("parent_id", parentID).Msg("parent pin changed")
	return nil
}

// pinMatches always does one bcrypt comparison, against the dummy hash when
// there is no stored hash, so every failure path takes about as long.
func (s *Service) pinMatches(pin, hash string) bool {
	if hash == "" {
		_ = s.compare([]byte(parents.DummyPINHash()), []byte(pin))
		return false
	}
	return s.compare([]byte(hash), []byte(pin)) == nil
}

func (s *Service) fail(ctx context.Context, key string) error {
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
	return ErrInvalidCredentials
}

func limiterIdentifier(identifier string) string {
	if parents.IsPhoneLike(identifier) {
		return parents.NormalizePhone(identifier)
	}
	return parents.NormalizeName(identifier)
}
