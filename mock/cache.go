package mock

import (
	"context"

	"github.com/fwojciec/artdex"
)

var _ artdex.CacheStore = (*CacheStore)(nil)

// CacheStore is a mock implementation of artdex.CacheStore.
type CacheStore struct {
	FindWorkFn      func(ctx context.Context, url string) (*artdex.Work, error)
	SaveWorkFn      func(ctx context.Context, work *artdex.Work) error
	ListWorksFn     func(ctx context.Context, filter artdex.WorkFilter) ([]*artdex.Work, error)
	DeleteWorkFn    func(ctx context.Context, url string) error
	FindDiscoveryFn func(ctx context.Context, siteURL string) (*artdex.Discovery, error)
	SaveDiscoveryFn func(ctx context.Context, disc *artdex.Discovery) error
	CloseFn         func() error
}

func (s *CacheStore) FindWork(ctx context.Context, url string) (*artdex.Work, error) {
	return s.FindWorkFn(ctx, url)
}

func (s *CacheStore) SaveWork(ctx context.Context, work *artdex.Work) error {
	return s.SaveWorkFn(ctx, work)
}

func (s *CacheStore) ListWorks(ctx context.Context, filter artdex.WorkFilter) ([]*artdex.Work, error) {
	return s.ListWorksFn(ctx, filter)
}

func (s *CacheStore) DeleteWork(ctx context.Context, url string) error {
	return s.DeleteWorkFn(ctx, url)
}

func (s *CacheStore) FindDiscovery(ctx context.Context, siteURL string) (*artdex.Discovery, error) {
	return s.FindDiscoveryFn(ctx, siteURL)
}

func (s *CacheStore) SaveDiscovery(ctx context.Context, disc *artdex.Discovery) error {
	return s.SaveDiscoveryFn(ctx, disc)
}

func (s *CacheStore) Close() error {
	return s.CloseFn()
}
