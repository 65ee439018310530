package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	pkgcache "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/cache"
)

// CachedParameterStore decorates a ParameterStore with a short-lived cache.
// Model parameters change rarely but are read on every forecast run, so even
// a small TTL removes almost all parameter queries from the hot path.
// Values are cached as JSON strings so memory and Redis backends behave the
// same.
type CachedParameterStore struct {
	inner domrepo.ParameterStore
	cache pkgcache.Service
	ttl   time.Duration
}

func NewCachedParameterStore(inner domrepo.ParameterStore, cache pkgcache.Service, ttl time.Duration) domrepo.ParameterStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedParameterStore{inner: inner, cache: cache, ttl: ttl}
}

func (s *CachedParameterStore) Active(ctx context.Context, version string) (models.ModelParameters, error) {
	key := pkgcache.GenerateKeyWithParams("params", "active", version)

	var raw string
	if err := s.cache.Get(ctx, key, &raw); err == nil && raw != "" {
		var p models.ModelParameters
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return p, nil
		}
	}

	p, err := s.inner.Active(ctx, version)
	if err != nil {
		return p, err
	}

	if b, err := json.Marshal(p); err == nil {
		// best-effort; a failed cache write only costs the next lookup
		_ = s.cache.Set(ctx, key, string(b), s.ttl)
	}
	return p, nil
}

var _ domrepo.ParameterStore = (*CachedParameterStore)(nil)
