package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/evaluator"
	"github.com/xela07ax/manageros-console/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrTooManyRuns — организация дергает ручную проверку чаще лимита.
var ErrTooManyRuns = errors.New("evaluation triggered too frequently, try again later")

// EvaluationRunner — контракт evaluator'а, нужный сервису.
type EvaluationRunner interface {
	Run(ctx context.Context, orgID string) (evaluator.Result, error)
}

// EvaluationService оборачивает запуск проверки правил: права, rate limit
// на организацию, таймаут, метрики и сигнал об обновлении леджера.
type EvaluationService struct {
	runner  EvaluationRunner
	rdb     *redis.Client
	logger  *zap.Logger
	metrics *infra.Metrics
	cfg     infra.EvaluatorConfig

	// Лимитер на организацию: кнопка "Run check" не должна уметь
	// устраивать базе полный прогон правил в цикле
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewEvaluationService(runner EvaluationRunner, rdb *redis.Client, metrics *infra.Metrics, cfg infra.EvaluatorConfig, logger *zap.Logger) *EvaluationService {
	return &EvaluationService{
		runner:   runner,
		rdb:      rdb,
		logger:   logger.Named("evaluation-service"),
		metrics:  metrics,
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Run выполняет полный прогон правил организации вызывающего. Только admin/owner.
// Ошибки отдельных правил не считаются отказом запуска: они возвращаются
// внутри Result.Errors, и вызывающий их показывает рядом со счетчиком.
func (s *EvaluationService) Run(ctx context.Context, caller domain.Caller) (evaluator.Result, error) {
	if !caller.IsAdmin() {
		return evaluator.Result{}, domain.ErrForbidden
	}

	if !s.limiterFor(caller.OrganizationID).Allow() {
		return evaluator.Result{}, ErrTooManyRuns
	}

	runCtx := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.runner.Run(runCtx, caller.OrganizationID)
	s.metrics.EvaluationDuration.WithLabelValues(caller.OrganizationID).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error("evaluation run failed",
			zap.String("organization_id", caller.OrganizationID),
			zap.Error(err))
		return result, err
	}

	for ruleType, created := range result.CreatedByType {
		s.metrics.ExceptionsCreated.WithLabelValues(string(ruleType)).Add(float64(created))
	}
	for ruleType, failed := range result.ErrorsByType {
		s.metrics.RuleErrors.WithLabelValues(string(ruleType)).Add(float64(failed))
	}

	s.logger.Info("evaluation run finished",
		zap.String("organization_id", caller.OrganizationID),
		zap.Int("exceptions_created", result.ExceptionsCreated),
		zap.Int("rule_errors", len(result.Errors)),
		zap.Duration("took", time.Since(start)))

	if result.ExceptionsCreated > 0 {
		if err := s.rdb.Publish(ctx, infra.RedisChanExceptionsUpdate, "refresh").Err(); err != nil {
			s.logger.Warn("exceptions update signal delivery failed", zap.Error(err))
		}
	}

	return result, nil
}

func (s *EvaluationService) limiterFor(orgID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[orgID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RunsPerMinute/60.0), s.cfg.RunBurst)
		s.limiters[orgID] = l
	}
	return l
}
