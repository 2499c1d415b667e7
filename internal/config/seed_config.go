package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const seedParentsKey = "seed.parents"

// SeedParent is a parent record created at start-up when missing.
type SeedParent struct {
	GroupID string `mapstructure:"group_id"`
	Name    string `mapstructure:"name"`
	Phone   string `mapstructure:"phone"`
	PIN     string `mapstructure:"pin"`
}

type SeedConfig interface {
	GetSeedParents() ([]SeedParent, error)
}

type Seed struct {
	v *viper.Viper
}

var _ SeedConfig = Seed{}

func (s Seed) GetSeedParents() ([]SeedParent, error) {
	if !s.v.IsSet(seedParentsKey) {
		return nil, nil
	}
	var seeds []SeedParent
	if err := s.v.UnmarshalKey(seedParentsKey, &seeds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", seedParentsKey, err)
	}
	return seeds, nil
}
