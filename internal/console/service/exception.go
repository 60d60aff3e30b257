package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra"
	"go.uber.org/zap"
)

// ExceptionRepository описывает требования сервиса к леджеру исключений
type ExceptionRepository interface {
	GetExceptionByID(ctx context.Context, orgID, id string) (*domain.Exception, error)
	FindExceptions(ctx context.Context, orgID string, filter domain.ExceptionFilter) ([]*domain.Exception, error)
	TransitionStatus(ctx context.Context, orgID, id string, next domain.ExceptionStatus) error
}

type ExceptionService struct {
	repo   ExceptionRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewExceptionService(repo ExceptionRepository, rdb *redis.Client, logger *zap.Logger) *ExceptionService {
	return &ExceptionService{
		repo:   repo,
		rdb:    rdb,
		logger: logger.Named("exception-service"),
	}
}

// Acknowledge фиксирует "видел, занимаюсь". Переход только из active.
func (s *ExceptionService) Acknowledge(ctx context.Context, caller domain.Caller, id string) error {
	return s.transition(ctx, caller, id, domain.ExceptionAcknowledged)
}

// Ignore — осознанное решение не реагировать. Рецидив породит новую запись.
func (s *ExceptionService) Ignore(ctx context.Context, caller domain.Caller, id string) error {
	return s.transition(ctx, caller, id, domain.ExceptionIgnored)
}

// Resolve — нарушение устранено.
func (s *ExceptionService) Resolve(ctx context.Context, caller domain.Caller, id string) error {
	return s.transition(ctx, caller, id, domain.ExceptionResolved)
}

// transition — унифицированный механизм смены статуса. Конечный автомат
// проверяется здесь, до записи; гонку двух одновременных решений закрывает
// репозиторий (UPDATE ... WHERE status = 'active').
func (s *ExceptionService) transition(ctx context.Context, caller domain.Caller, id string, next domain.ExceptionStatus) error {
	exc, err := s.repo.GetExceptionByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	if exc == nil {
		return domain.ErrNotFound
	}
	if err := exc.CanTransitionTo(next); err != nil {
		return err
	}

	if err := s.repo.TransitionStatus(ctx, caller.OrganizationID, id, next); err != nil {
		return fmt.Errorf("exception transition failed: %w", err)
	}

	s.logger.Info("exception status changed",
		zap.String("exception_id", id),
		zap.String("new_status", string(next)),
		zap.String("by", caller.UserID))

	if err := s.rdb.Publish(ctx, infra.RedisChanExceptionsUpdate, "refresh").Err(); err != nil {
		s.logger.Warn("exceptions update signal delivery failed", zap.Error(err))
	}
	return nil
}

// Get возвращает детали исключения в рамках организации вызывающего.
func (s *ExceptionService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Exception, error) {
	return s.repo.GetExceptionByID(ctx, caller.OrganizationID, id)
}

// List — выборка с фильтрами по статусу и severity для админки.
func (s *ExceptionService) List(ctx context.Context, caller domain.Caller, filter domain.ExceptionFilter) ([]*domain.Exception, error) {
	return s.repo.FindExceptions(ctx, caller.OrganizationID, filter)
}
