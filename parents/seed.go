package parents

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// SeedRecord describes a parent to create when the group has no parent with
// the same name or phone.
type SeedRecord struct {
	GroupID string
	Name    string
	Phone   string
	PIN     string
}

// Seed creates missing parents and returns how many were added. Existing
// records are left untouched, so repeated start-ups are safe.
func Seed(ctx context.Context, repo Repo, records []SeedRecord) (int, error) {
	created := 0
	for _, rec := range records {
		if strings.TrimSpace(rec.GroupID) == "" || strings.TrimSpace(rec.Name) == "" {
			return created, errors.New("[Seed] seed parent needs group_id and name")
		}
		if err := ValidatePIN(rec.PIN); err != nil {
			return created, errors.Wrapf(err, "[Seed] parent %q", rec.Name)
		}

		existing, err := repo.ListByGroup(ctx, rec.GroupID)
		if err != nil {
			return created, errors.Wrap(err, "[Seed] repo.ListByGroup")
		}
		if _, found := Match(existing, rec.Name); found {
			continue
		}
		if rec.Phone != "" && IsPhoneLike(rec.Phone) {
			if _, found := Match(existing, rec.Phone); found {
				continue
			}
		}

		hash, err := HashPIN(rec.PIN)
		if err != nil {
			return created, errors.Wrap(err, "[Seed] HashPIN")
		}
		err = repo.Upsert(ctx, &Parent{
			GroupID: rec.GroupID,
			Name:    strings.TrimSpace(rec.Name),
			Phone:   strings.TrimSpace(rec.Phone),
			PINHash: hash,
		})
		if err != nil {
			return created, errors.Wrap(err, "[Seed] repo.Upsert")
		}
		created++
	}
	return created, nil
}
