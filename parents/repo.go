package parents

import (
	"context"

	apperrors "github.com/jrsteele09/group-parent-auth/internal/errors"
)

// ErrNotFound is returned by repos when a parent record does not exist.
var ErrNotFound = apperrors.ErrNotFound

// Repo is the credential store for parent records. ListByGroup must return
// records in a stable order (created_at, then id) so identifier matching
// picks the same record every time.
type Repo interface {
	ListByGroup(ctx context.Context, groupID string) ([]*Parent, error)
	GetByID(ctx context.Context, groupID, id string) (*Parent, error)
	Upsert(ctx context.Context, parent *Parent) error
	SetPINHash(ctx context.Context, groupID, id, hash string) error
}
