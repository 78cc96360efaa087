package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/domain"
	"debtkeeper/internal/engine"
	"debtkeeper/internal/repository"
)

const statsTTL = time.Minute

type StatsService struct {
	repo  DebtRepository
	redis *clients.RedisClient
	log   *logrus.Logger
}

func NewStatsService(repo DebtRepository, redis *clients.RedisClient, log *logrus.Logger) *StatsService {
	return &StatsService{repo: repo, redis: redis, log: log}
}

func statsKey(ownerID int64) string {
	return fmt.Sprintf("stats:%d", ownerID)
}

// Portfolio aggregates an owner's debts, serving from the short-lived redis
// cache when possible. The fold itself is pure; the cache only spares the
// repeated schedule projections on hot dashboards.
func (s *StatsService) Portfolio(ctx context.Context, ownerID int64, now time.Time) (domain.DebtStats, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, statsKey(ownerID)); err == nil {
			var cached domain.DebtStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	debts, err := s.repo.List(ctx, repository.DebtsFilter{OwnerID: &ownerID})
	if err != nil {
		return domain.DebtStats{}, fmt.Errorf("list debts: %w", err)
	}

	stats := engine.Aggregate(debts, now)

	if s.redis != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsKey(ownerID), string(raw), statsTTL); err != nil {
				s.log.WithError(err).Debug("stats cache write failed")
			}
		}
	}

	return stats, nil
}

// Invalidate drops the cached stats after any debt mutation.
func (s *StatsService) Invalidate(ctx context.Context, ownerID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsKey(ownerID)); err != nil {
		s.log.WithError(err).Debug("stats cache invalidation failed")
	}
}
