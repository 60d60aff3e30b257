package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra"
	"go.uber.org/zap"
)

// StatsRepository описывает требования сервиса к источнику сводки
type StatsRepository interface {
	GetOrgStats(ctx context.Context, orgID string, w domain.StatsWindows) (*domain.OrgStats, error)
	CountCallerDirectReports(ctx context.Context, orgID, userID string) (int, error)
}

// StatsService отдает сводку дашборда с коротким кэшем в Redis.
// Кэш закрыт предохранителем: мертвый Redis деградирует сервис до прямых
// запросов в Postgres, а не до пятисоток.
type StatsService struct {
	repo    StatsRepository
	rdb     *redis.Client
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
	metrics *infra.Metrics
	cfg     infra.StatsConfig
}

func NewStatsService(repo StatsRepository, rdb *redis.Client, metrics *infra.Metrics, cfg infra.StatsConfig, logger *zap.Logger) *StatsService {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stats-cache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &StatsService{
		repo:    repo,
		rdb:     rdb,
		cb:      cb,
		logger:  logger.Named("stats-service"),
		metrics: metrics,
		cfg:     cfg,
	}
}

// GetOrgStats возвращает сводку организации вызывающего: сперва кэш, при
// промахе — пересчет из Postgres с обратной записью в кэш.
func (s *StatsService) GetOrgStats(ctx context.Context, caller domain.Caller) (*domain.OrgStats, error) {
	key := infra.GetStatsCacheKey(caller.OrganizationID)

	if cached := s.readCache(ctx, key); cached != nil {
		s.metrics.StatsCacheHits.Inc()
		return s.withCallerStats(ctx, caller, cached)
	}
	s.metrics.StatsCacheMisses.Inc()

	stats, err := s.repo.GetOrgStats(ctx, caller.OrganizationID, domain.StatsWindows{
		OneOnOneDays:   s.cfg.OneOnOneWindowDays,
		FeedbackMonths: s.cfg.FeedbackWindowMonths,
		ManagerSpanMax: s.cfg.DefaultManagerSpan,
	})
	if err != nil {
		return nil, err
	}

	// В кэш едут только общие для организации счетчики
	s.writeCache(ctx, key, stats)
	return s.withCallerStats(ctx, caller, stats)
}

// withCallerStats дополняет сводку счетчиком, зависящим от вызывающего:
// прямые подчиненные его привязанного person'а. Кэш сводки общий на
// организацию, поэтому эта часть считается на каждый запрос.
func (s *StatsService) withCallerStats(ctx context.Context, caller domain.Caller, stats *domain.OrgStats) (*domain.OrgStats, error) {
	reports, err := s.repo.CountCallerDirectReports(ctx, caller.OrganizationID, caller.UserID)
	if err != nil {
		return nil, err
	}
	stats.People.CallerDirectReports = reports
	return stats, nil
}

func (s *StatsService) readCache(ctx context.Context, key string) *domain.OrgStats {
	raw, err := s.cb.Execute(func() (interface{}, error) {
		b, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Обычный промах кэша предохранитель питать не должен
			return nil, nil
		}
		return b, err
	})
	if err != nil || raw == nil {
		return nil
	}

	var stats domain.OrgStats
	if err := json.Unmarshal(raw.([]byte), &stats); err != nil {
		s.logger.Warn("corrupted stats cache entry, recomputing", zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatsService) writeCache(ctx context.Context, key string, stats *domain.OrgStats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if _, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.rdb.Set(ctx, key, payload, s.cfg.CacheTTL).Err()
	}); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
