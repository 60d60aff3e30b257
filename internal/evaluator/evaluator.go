// Package evaluator прогоняет включенные толеранс-правила организации по
// текущему состоянию сущностей и сверяет результат с леджером исключений.
package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/ruleset"
	"go.uber.org/zap"
)

// RuleSource описывает требования evaluator'а к хранилищу правил.
type RuleSource interface {
	ListEnabledRules(ctx context.Context, orgID string) ([]domain.ToleranceRule, error)
}

// EntitySource — read-only состояние сущностей, по которому считаются нарушения.
type EntitySource interface {
	ListReportPairs(ctx context.Context, orgID string) ([]domain.ReportPair, error)
	ListInitiativeCheckins(ctx context.Context, orgID string) ([]domain.InitiativeCheckinState, error)
	ListFeedbackStates(ctx context.Context, orgID string) ([]domain.FeedbackState, error)
	ListManagerSpans(ctx context.Context, orgID string) ([]domain.ManagerSpanState, error)
}

// ExceptionSink — запись нарушений. Вставка обязана быть идемпотентной
// относительно активных двойников (см. postgres.InsertIfNoActive).
type ExceptionSink interface {
	InsertIfNoActive(ctx context.Context, e *domain.Exception) (bool, error)
}

// violation — кандидат на исключение, найденный проверкой одного правила.
type violation struct {
	EntityType string
	EntityID   string
	Severity   domain.Severity
	Message    string
}

// Result — итог одного прогона. Ошибка отдельного правила не валит прогон:
// она попадает в Errors, остальные правила отрабатывают.
type Result struct {
	ExceptionsCreated int
	Errors            []string

	// Разрезы по типам правил для метрик
	CreatedByType map[domain.RuleType]int
	ErrorsByType  map[domain.RuleType]int
}

type Evaluator struct {
	rules      RuleSource
	entities   EntitySource
	exceptions ExceptionSink
	logger     *zap.Logger

	// Подменяется в тестах для фиксации границ порогов
	now func() time.Time
}

func New(rules RuleSource, entities EntitySource, exceptions ExceptionSink, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		rules:      rules,
		entities:   entities,
		exceptions: exceptions,
		logger:     logger.Named("evaluator"),
		now:        time.Now,
	}
}

// Run выполняет все включенные правила организации и реконсилирует нарушения.
// Возвращает ошибку только при инфраструктурном отказе (не загрузился сам
// список правил); все поломки уровня "одно правило" собираются в Result.Errors.
func (e *Evaluator) Run(ctx context.Context, orgID string) (Result, error) {
	result := Result{
		Errors:        []string{},
		CreatedByType: make(map[domain.RuleType]int),
		ErrorsByType:  make(map[domain.RuleType]int),
	}

	rules, err := e.rules.ListEnabledRules(ctx, orgID)
	if err != nil {
		return result, fmt.Errorf("evaluator: failed to load rules: %w", err)
	}

	for _, rule := range rules {
		violations, err := e.checkRule(ctx, orgID, rule)
		if err != nil {
			// Битый конфиг или упавший запрос одного правила не должен
			// блокировать детект нарушений по остальным
			e.logger.Error("rule evaluation failed",
				zap.String("rule_id", rule.ID),
				zap.String("rule_type", string(rule.RuleType)),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", rule.Name, rule.RuleType, err))
			result.ErrorsByType[rule.RuleType]++
			continue
		}

		for _, v := range violations {
			created, err := e.exceptions.InsertIfNoActive(ctx, &domain.Exception{
				ID:             uuid.New().String(),
				OrganizationID: orgID,
				RuleID:         rule.ID,
				EntityType:     v.EntityType,
				EntityID:       v.EntityID,
				Severity:       v.Severity,
				Message:        v.Message,
				Status:         domain.ExceptionActive,
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", rule.Name, rule.RuleType, err))
				result.ErrorsByType[rule.RuleType]++
				continue
			}
			if created {
				result.ExceptionsCreated++
				result.CreatedByType[rule.RuleType]++
				e.logger.Info("exception created",
					zap.String("rule_id", rule.ID),
					zap.String("rule_type", string(rule.RuleType)),
					zap.String("entity_type", v.EntityType),
					zap.String("entity_id", v.EntityID),
					zap.String("severity", string(v.Severity)),
				)
			}
		}
	}

	return result, nil
}

// checkRule декодирует конфиг через реестр (в базе лежит сырой JSON) и
// запускает проверку своего типа.
func (e *Evaluator) checkRule(ctx context.Context, orgID string, rule domain.ToleranceRule) ([]violation, error) {
	switch rule.RuleType {
	case domain.RuleOneOnOneFrequency:
		cfg, err := ruleset.OneOnOneFrequency(rule.Config)
		if err != nil {
			return nil, err
		}
		pairs, err := e.entities.ListReportPairs(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return checkOneOnOneFrequency(cfg, pairs, e.now()), nil

	case domain.RuleInitiativeCheckin:
		cfg, err := ruleset.InitiativeCheckin(rule.Config)
		if err != nil {
			return nil, err
		}
		states, err := e.entities.ListInitiativeCheckins(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return checkInitiativeCheckin(cfg, states, e.now()), nil

	case domain.RuleFeedback360:
		cfg, err := ruleset.Feedback360(rule.Config)
		if err != nil {
			return nil, err
		}
		states, err := e.entities.ListFeedbackStates(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return checkFeedback360(cfg, states, e.now()), nil

	case domain.RuleManagerSpan:
		cfg, err := ruleset.ManagerSpan(rule.Config)
		if err != nil {
			return nil, err
		}
		spans, err := e.entities.ListManagerSpans(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return checkManagerSpan(cfg.MaxDirectReports, domain.SeverityUrgent, spans), nil

	case domain.RuleMaxReports:
		cfg, err := ruleset.MaxReports(rule.Config)
		if err != nil {
			return nil, err
		}
		spans, err := e.entities.ListManagerSpans(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return checkManagerSpan(cfg.MaxReports, domain.SeverityWarning, spans), nil
	}

	return nil, fmt.Errorf("unknown rule type %q", rule.RuleType)
}
