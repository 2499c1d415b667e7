package fakeparentrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/group-parent-auth/parents"
)

var _ parents.Repo = (*FakeParentRepo)(nil)

// FakeParentRepo keeps parent records in memory, keyed by group then id.
// Records are copied on the way in and out.
type FakeParentRepo struct {
	groups map[string]map[string]*parents.Parent
	lock   sync.RWMutex

	// ListErr, when set, is returned from ListByGroup.
	ListErr error
}

func NewFakeParentRepo() *FakeParentRepo {
	return &FakeParentRepo{
		groups: make(map[string]map[string]*parents.Parent),
	}
}

func (pr *FakeParentRepo) Upsert(_ context.Context, parent *parents.Parent) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if parent.ID == "" {
		parent.ID = uuid.New().String()
	}
	now := time.Now()
	if parent.CreatedAt.IsZero() {
		parent.CreatedAt = now
	}
	parent.UpdatedAt = now

	if _, ok := pr.groups[parent.GroupID]; !ok {
		pr.groups[parent.GroupID] = make(map[string]*parents.Parent)
	}
	stored := *parent
	pr.groups[parent.GroupID][parent.ID] = &stored
	return nil
}

func (pr *FakeParentRepo) ListByGroup(_ context.Context, groupID string) ([]*parents.Parent, error) {
	if pr.ListErr != nil {
		return nil, pr.ListErr
	}

	pr.lock.RLock()
	defer pr.lock.RUnlock()

	list := make([]*parents.Parent, 0, len(pr.groups[groupID]))
	for _, p := range pr.groups[groupID] {
		c := *p
		list = append(list, &c)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (pr *FakeParentRepo) GetByID(_ context.Context, groupID, id string) (*parents.Parent, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	p, ok := pr.groups[groupID][id]
	if !ok {
		return nil, parents.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (pr *FakeParentRepo) SetPINHash(_ context.Context, groupID, id, hash string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	p, ok := pr.groups[groupID][id]
	if !ok {
		return parents.ErrNotFound
	}
	p.PINHash = hash
	p.UpdatedAt = time.Now()
	return nil
}
