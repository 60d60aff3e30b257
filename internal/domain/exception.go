package domain

import (
	"errors"
	"time"
)

// Статусы State Machine исключения
type ExceptionStatus string

const (
	ExceptionActive       ExceptionStatus = "active"
	ExceptionAcknowledged ExceptionStatus = "acknowledged"
	ExceptionIgnored      ExceptionStatus = "ignored"
	ExceptionResolved     ExceptionStatus = "resolved"
)

// Severity исключения: warning или urgent (какой порог был пересечен).
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

var (
	ErrInvalidTransition = errors.New("invalid exception status transition")
	ErrAlreadyProcessed  = errors.New("exception already processed")
)

// Exception — зафиксированное нарушение толеранс-правила по конкретной сущности.
// Слабая ссылка на субъект: EntityType + EntityID (для пары менеджер/подчиненный
// EntityID синтезируется как "{managerID}-{reportID}").
type Exception struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	RuleID         string          `json:"rule_id"` // Правило могло быть удалено: читатели обязаны это переживать
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	Severity       Severity        `json:"severity"`
	Message        string          `json:"message"`
	Status         ExceptionStatus `json:"status"`

	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	IgnoredAt      *time.Time `json:"ignored_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// CanTransitionTo проверяет правила конечного автомата:
// единственные допустимые переходы — из active в acknowledged/ignored/resolved.
// Evaluator статусы назад не переводит: рецидив порождает новую запись.
func (e *Exception) CanTransitionTo(next ExceptionStatus) error {
	if e.Status != ExceptionActive {
		return ErrAlreadyProcessed
	}
	if next == ExceptionActive {
		return ErrInvalidTransition
	}
	return nil
}

// ExceptionFilter — параметры выборки для списка в админке.
type ExceptionFilter struct {
	Status   ExceptionStatus
	Severity Severity
}
