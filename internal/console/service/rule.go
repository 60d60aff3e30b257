package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra"
	"github.com/xela07ax/manageros-console/internal/ruleset"
	"go.uber.org/zap"
)

// RuleRepository описывает требования сервиса к хранилищу правил
type RuleRepository interface {
	GetRuleByID(ctx context.Context, orgID, id string) (*domain.ToleranceRule, error)
	ListRules(ctx context.Context, orgID string) ([]domain.ToleranceRule, error)
	CreateRule(ctx context.Context, rule *domain.ToleranceRule) error
	UpdateRule(ctx context.Context, rule *domain.ToleranceRule) error
	SetRuleEnabled(ctx context.Context, orgID, id string, enabled bool) error
	DeleteRule(ctx context.Context, orgID, id string) error
}

type RuleService struct {
	repo   RuleRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRuleService(repo RuleRepository, rdb *redis.Client, logger *zap.Logger) *RuleService {
	return &RuleService{
		repo:   repo,
		rdb:    rdb,
		logger: logger.Named("rule-service"),
	}
}

// CreateRuleInput — тело создания. IsEnabled опционален и по умолчанию true.
type CreateRuleInput struct {
	RuleType    domain.RuleType `json:"rule_type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsEnabled   *bool           `json:"is_enabled"`
	Config      json.RawMessage `json:"config"`
}

// UpdateRuleInput — частичное обновление: nil-поля не трогаются.
// RuleType здесь отсутствует сознательно: тип правила иммутабелен.
type UpdateRuleInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	IsEnabled   *bool           `json:"is_enabled"`
	Config      json.RawMessage `json:"config"`
}

// Create валидирует и сохраняет новое правило. Только admin/owner.
func (s *RuleService) Create(ctx context.Context, caller domain.Caller, input CreateRuleInput) (*domain.ToleranceRule, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !ruleset.KnownType(input.RuleType) {
		return nil, fmt.Errorf("%w: unknown rule type %q", domain.ErrValidation, input.RuleType)
	}
	if err := ruleset.ValidateConfig(input.RuleType, input.Config); err != nil {
		return nil, err
	}

	enabled := true
	if input.IsEnabled != nil {
		enabled = *input.IsEnabled
	}

	rule := &domain.ToleranceRule{
		ID:             uuid.New().String(),
		OrganizationID: caller.OrganizationID,
		RuleType:       input.RuleType,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		IsEnabled:      enabled,
		Config:         input.Config,
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("tolerance rule created",
		zap.String("rule_id", rule.ID),
		zap.String("rule_type", string(rule.RuleType)),
		zap.String("created_by", caller.UserID))

	s.notifyUpdate(ctx)
	return rule, nil
}

// Update применяет частичное обновление. Новый конфиг ревалидируется против
// типа СУЩЕСТВУЮЩЕЙ записи — сменить тип через update нельзя.
func (s *RuleService) Update(ctx context.Context, caller domain.Caller, id string, input UpdateRuleInput) (*domain.ToleranceRule, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	rule, err := s.repo.GetRuleByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrNotFound
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		rule.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		rule.Description = *input.Description
	}
	if input.IsEnabled != nil {
		rule.IsEnabled = *input.IsEnabled
	}
	if input.Config != nil {
		if err := ruleset.ValidateConfig(rule.RuleType, input.Config); err != nil {
			return nil, err
		}
		rule.Config = input.Config
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.notifyUpdate(ctx)
	return rule, nil
}

// Toggle переключает is_enabled; выключенные правила evaluator пропускает целиком.
func (s *RuleService) Toggle(ctx context.Context, caller domain.Caller, id string, enabled bool) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.repo.SetRuleEnabled(ctx, caller.OrganizationID, id, enabled); err != nil {
		return err
	}

	s.logger.Info("tolerance rule toggled",
		zap.String("rule_id", id),
		zap.Bool("enabled", enabled))

	s.notifyUpdate(ctx)
	return nil
}

// Delete — жесткое удаление правила. Исторические исключения остаются.
func (s *RuleService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.repo.DeleteRule(ctx, caller.OrganizationID, id); err != nil {
		return err
	}

	s.logger.Info("tolerance rule deleted", zap.String("rule_id", id))

	s.notifyUpdate(ctx)
	return nil
}

// GetAll возвращает все правила организации вызывающего
func (s *RuleService) GetAll(ctx context.Context, caller domain.Caller) ([]domain.ToleranceRule, error) {
	return s.repo.ListRules(ctx, caller.OrganizationID)
}

func (s *RuleService) GetByID(ctx context.Context, caller domain.Caller, id string) (*domain.ToleranceRule, error) {
	return s.repo.GetRuleByID(ctx, caller.OrganizationID, id)
}

// notifyUpdate отправляет широковещательный сигнал в Redis.
// Подписчики (реплики консоли, открытые дашборды) перечитают список правил.
// Недоставка сигнала мутацию не отменяет — только warn в лог.
func (s *RuleService) notifyUpdate(ctx context.Context) {
	if err := s.rdb.Publish(ctx, infra.RedisChanRulesUpdate, "refresh").Err(); err != nil {
		s.logger.Warn("rules update signal delivery failed", zap.Error(err))
	}
}
