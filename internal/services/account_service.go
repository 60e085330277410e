// Package services composes the API gateway, local storage and messaging
// into the operations the commands consume.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"roundup/internal/cache"
	"roundup/internal/core"
)

const accountsCacheKey = "accounts"

// AccountLister is the slice of the API gateway this service needs.
type AccountLister interface {
	Accounts(ctx context.Context) ([]core.Account, error)
}

// AccountService serves the account list with a TTL cache in front of the
// API and collapses concurrent fetches into a single upstream call.
type AccountService struct {
	gateway AccountLister
	cache   *cache.LRUCache[[]core.Account]
	group   singleflight.Group
}

func NewAccountService(gateway AccountLister, ttl time.Duration) *AccountService {
	return &AccountService{
		gateway: gateway,
		cache:   cache.NewLRUCache[[]core.Account](1, ttl),
	}
}

// Accounts returns the user's accounts, from cache when fresh.
func (s *AccountService) Accounts(ctx context.Context) ([]core.Account, error) {
	if accounts, ok := s.cache.Get(accountsCacheKey); ok {
		return accounts, nil
	}

	result, err, _ := s.group.Do(accountsCacheKey, func() (any, error) {
		accounts, err := s.gateway.Accounts(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(accountsCacheKey, accounts)
		return accounts, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return result.([]core.Account), nil
}

// Invalidate drops the cached account list so the next call refetches.
func (s *AccountService) Invalidate() {
	s.cache.Delete(accountsCacheKey)
}
