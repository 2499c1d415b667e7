package fakeparentrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/group-parent-auth/parents"
	fakeparentrepo "github.com/jrsteele09/group-parent-auth/parents/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeParentRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeparentrepo.NewFakeParentRepo()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &parents.Parent{ID: "b", GroupID: "g1", Name: "B", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Upsert(ctx, &parents.Parent{ID: "a", GroupID: "g1", Name: "A", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Upsert(ctx, &parents.Parent{ID: "c", GroupID: "g1", Name: "C", CreatedAt: base}))
	require.NoError(t, repo.Upsert(ctx, &parents.Parent{ID: "z", GroupID: "g2", Name: "Z"}))

	t.Run("list is scoped and ordered", func(t *testing.T) {
		list, err := repo.ListByGroup(ctx, "g1")
		require.NoError(t, err)
		ids := []string{}
		for _, p := range list {
			ids = append(ids, p.ID)
		}
		require.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("unknown group is empty", func(t *testing.T) {
		list, err := repo.ListByGroup(ctx, "nope")
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("get by id respects group", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "g2", "a")
		require.ErrorIs(t, err, parents.ErrNotFound)

		p, err := repo.GetByID(ctx, "g1", "a")
		require.NoError(t, err)
		require.Equal(t, "A", p.Name)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		p, err := repo.GetByID(ctx, "g1", "a")
		require.NoError(t, err)
		p.Name = "changed"

		again, err := repo.GetByID(ctx, "g1", "a")
		require.NoError(t, err)
		require.Equal(t, "A", again.Name)
	})

	t.Run("set pin hash", func(t *testing.T) {
		require.NoError(t, repo.SetPINHash(ctx, "g1", "a", "hash"))
		p, err := repo.GetByID(ctx, "g1", "a")
		require.NoError(t, err)
		require.Equal(t, "hash", p.PINHash)

		require.ErrorIs(t, repo.SetPINHash(ctx, "g1", "missing", "hash"), parents.ErrNotFound)
	})

	t.Run("upsert assigns an id", func(t *testing.T) {
		p := &parents.Parent{GroupID: "g3", Name: "New"}
		require.NoError(t, repo.Upsert(ctx, p))
		require.NotEmpty(t, p.ID)
	})
}
