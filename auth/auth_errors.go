package auth

import apperrors "github.com/jrsteele09/group-parent-auth/internal/errors"

var (
	// ErrMissingFields is returned when identifier, PIN or group is empty.
	ErrMissingFields = apperrors.ErrMissingFields
	// ErrInvalidCredentials covers every sign-in failure: unknown group,
	// unmatched identifier, absent hash, wrong PIN, backend error and
	// attempt limiting all look the same to the caller.
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	// ErrInvalidPIN is returned when a new PIN fails validation.
	ErrInvalidPIN = apperrors.ErrInvalidPIN
)
