package pgrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/group-parent-auth/parents"
)

var _ parents.Repo = (*ParentRepo)(nil)

// ParentRepo stores parent records in Postgres.
type ParentRepo struct {
	pool *pgxpool.Pool
}

func NewParentRepo(pool *pgxpool.Pool) *ParentRepo {
	return &ParentRepo{pool: pool}
}

// EnsureTable creates the parents table if it does not exist. Production
// schemas are managed by the hosting backend.
func (r *ParentRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS parents (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  pin_hash TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_parents_group_id ON parents(group_id);
`
	_, err := r.pool.Exec(ctx, ddl)
	return err
}

func (r *ParentRepo) ListByGroup(ctx context.Context, groupID string) ([]*parents.Parent, error) {
	const query = `
		SELECT id, group_id, name, phone, COALESCE(pin_hash, ''), created_at, updated_at
		FROM parents WHERE group_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*parents.Parent, 0)
	for rows.Next() {
		var p parents.Parent
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.Phone, &p.PINHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *ParentRepo) GetByID(ctx context.Context, groupID, id string) (*parents.Parent, error) {
	const query = `
		SELECT id, group_id, name, phone, COALESCE(pin_hash, ''), created_at, updated_at
		FROM parents WHERE group_id = $1 AND id = $2
	`
	var p parents.Parent
	err := r.pool.QueryRow(ctx, query, groupID, id).
		Scan(&p.ID, &p.GroupID, &p.Name, &p.Phone, &p.PINHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, parents.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ParentRepo) Upsert(ctx context.Context, parent *parents.Parent) error {
	if parent.ID == "" {
		parent.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO parents (id, group_id, name, phone, pin_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			pin_hash = EXCLUDED.pin_hash,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, parent.ID, parent.GroupID, parent.Name, parent.Phone, parent.PINHash).
		Scan(&parent.CreatedAt, &parent.UpdatedAt)
}

func (r *ParentRepo) SetPINHash(ctx context.Context, groupID, id, hash string) error {
	const query = `
		UPDATE parents SET pin_hash = $3, updated_at = NOW() WHERE group_id = $1 AND id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, groupID, id, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return parents.ErrNotFound
	}
	return nil
}
