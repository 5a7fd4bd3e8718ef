// Package cache provides an in-process read cache for payer policy
// profiles. Profiles change rarely but are read on every calculation.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
)

// PolicyCache wraps a PolicyRepository with an LRU cache keyed by profile
// id. Updates write through to the backing repository and invalidate the
// cached entry so readers never see a stale profile after a policy change.
type PolicyCache struct {
	repo domain.PolicyRepository
	lru  *lru.Cache[string, domain.PolicyProfile]
	log  *logrus.Logger
}

// NewPolicyCache creates a caching wrapper around repo with the given
// maximum entry count.
func NewPolicyCache(repo domain.PolicyRepository, size int, logger *logrus.Logger) (*PolicyCache, error) {
	cache, err := lru.New[string, domain.PolicyProfile](size)
	if err != nil {
		return nil, err
	}
	return &PolicyCache{repo: repo, lru: cache, log: logger}, nil
}

// List always hits the backing repository and refreshes cached entries.
func (c *PolicyCache) List(ctx context.Context) ([]*domain.PolicyProfile, error) {
	profiles, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		c.lru.Add(p.ID, *p)
	}
	return profiles, nil
}

// GetByID serves from cache when possible.
func (c *PolicyCache) GetByID(ctx context.Context, id string) (*domain.PolicyProfile, error) {
	if cached, ok := c.lru.Get(id); ok {
		profile := cached
		return &profile, nil
	}

	profile, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.lru.Add(id, *profile)
	return profile, nil
}

// Update writes through and invalidates the cached entry.
func (c *PolicyCache) Update(ctx context.Context, id string, profile *domain.PolicyProfile) error {
	if err := c.repo.Update(ctx, id, profile); err != nil {
		return err
	}
	c.lru.Remove(id)
	c.log.WithField("profile_id", id).Debug("Policy cache entry invalidated")
	return nil
}
