// AngelaMos | 2026
// service.go

package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/support-gateway/internal/core"
)

// ErrCacheUnavailable means a save could not invalidate cached contexts.
var ErrCacheUnavailable = errors.New("knowledge cache unavailable")

type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires the store with an optional cache; nil disables caching.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ReplaceAll makes entries the tenant's complete knowledge set. Saving the
// same map twice leaves the same state as saving it once.
//
// The cache generation is bumped before the write and again after commit.
// If the first bump fails nothing is written; if the second fails the save
// is reported as failed so the caller retries, since a reader may have
// cached the old set under the new generation.
func (s *Service) ReplaceAll(
	ctx context.Context,
	tenantID string,
	in map[string]EntryValue,
) (int, error) {
	for key := range in {
		if strings.TrimSpace(key) == "" {
			return 0, fmt.Errorf("replace knowledge: blank key: %w", core.ErrInvalidInput)
		}
	}

	if err := s.invalidate(ctx, tenantID); err != nil {
		return 0, fmt.Errorf("replace knowledge: %w", err)
	}

	entries := toEntries(tenantID, in)
	if err := s.repo.ReplaceAll(ctx, tenantID, entries); err != nil {
		return 0, err
	}

	if err := s.invalidate(ctx, tenantID); err != nil {
		slog.ErrorContext(ctx, "knowledge saved but cache invalidation failed",
			"tenant_id", tenantID,
			"error", err,
		)
		return 0, fmt.Errorf("replace knowledge: %w", err)
	}

	return len(entries), nil
}

func (s *Service) invalidate(ctx context.Context, tenantID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return nil
}

// GetEffectiveContext returns the tenant's enabled entries sorted by key. A
// tenant with nothing enabled gets an empty Context and a nil error.
func (s *Service) GetEffectiveContext(
	ctx context.Context,
	tenantID string,
) (Context, error) {
	if s.cache == nil {
		return s.repo.ListEnabled(ctx, tenantID)
	}

	gen, err := s.cache.Generation(ctx, tenantID)
	if err != nil {
		slog.WarnContext(ctx, "knowledge cache unavailable",
			"tenant_id", tenantID,
			"error", err,
		)
		return s.repo.ListEnabled(ctx, tenantID)
	}

	if facts, ok, err := s.cache.Get(ctx, tenantID, gen); err == nil && ok {
		return facts, nil
	}

	facts, err := s.repo.ListEnabled(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, tenantID, gen, facts); err != nil {
		slog.WarnContext(ctx, "knowledge cache fill failed",
			"tenant_id", tenantID,
			"error", err,
		)
	}

	return facts, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]Entry, error) {
	return s.repo.List(ctx, tenantID)
}
