package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
)

type userService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	cacheTTL  time.Duration
	dbTimeout time.Duration
	clock     Clock
	logger    *slog.Logger
}

func NewUserService(deps Dependencies) UserService {
	deps = deps.withDefaults()
	return &userService{
		repo:      deps.Repo,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		dbTimeout: deps.DBTimeout,
		clock:     deps.Clock,
		logger:    deps.Logger,
	}
}

// Sync upserts the caller and stamps their last login at most once per
// cache TTL. Callers without a known role are not stored.
func (s *userService) Sync(ctx context.Context, caller Caller) error {
	if caller.ID == "" {
		return ErrUnauthorized
	}
	if !caller.Role.Valid() {
		return nil
	}

	var synced bool
	if err := s.cache.Get(ctx, cache.UserSyncedKey(caller.ID), &synced); err == nil && synced {
		return nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.repo.User().Upsert(dbCtx, callerUser(caller)); err != nil {
		return fmt.Errorf("failed to sync user: %w", err)
	}
	if err := s.repo.User().UpdateLastLogin(dbCtx, caller.ID, s.clock.Now().UTC()); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", caller.ID, "error", err)
	}

	if err := s.cache.Set(ctx, cache.UserSyncedKey(caller.ID), true, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to mark user synced", "user_id", caller.ID, "error", err)
	}
	if caller.Role == models.RoleDoctor {
		if err := s.cache.Delete(ctx, cache.DoctorsKey()); err != nil {
			s.logger.Warn("Failed to invalidate doctors", "error", err)
		}
	}
	return nil
}
