package domain

import (
	"encoding/json"
	"time"
)

// RuleType — закрытый набор типов толеранс-правил.
// Тип правила фиксируется при создании и не редактируется.
type RuleType string

const (
	RuleOneOnOneFrequency RuleType = "one_on_one_frequency" // Дни с последнего 1:1
	RuleInitiativeCheckin RuleType = "initiative_checkin"   // Дни с последнего чек-ина инициативы
	RuleFeedback360       RuleType = "feedback_360"         // Месяцы с последней 360-кампании
	RuleManagerSpan       RuleType = "manager_span"         // Потолок прямых подчиненных
	RuleMaxReports        RuleType = "max_reports"          // Легаси-вариант потолка подчиненных
)

// ToleranceRule — политика-порог организации (например, "флаг, если нет 1:1 за 14 дней").
// Config хранится как JSON и валидируется реестром (ruleset) по RuleType.
type ToleranceRule struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	RuleType       RuleType `json:"rule_type"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	IsEnabled      bool     `json:"is_enabled"`

	// Пороговые значения конкретного типа, например {"warning_threshold_days": 14}
	Config json.RawMessage `json:"config"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Варианты конфигурации (tagged union по RuleType).

// OneOnOneFrequencyConfig пороги давности 1:1 для пары менеджер/подчиненный.
type OneOnOneFrequencyConfig struct {
	WarningThresholdDays int `json:"warning_threshold_days"`
	UrgentThresholdDays  int `json:"urgent_threshold_days"`
}

// InitiativeCheckinConfig порог давности чек-ина по активной инициативе.
type InitiativeCheckinConfig struct {
	WarningThresholdDays int `json:"warning_threshold_days"`
}

// Feedback360Config порог давности последней 360-кампании по сотруднику.
type Feedback360Config struct {
	WarningThresholdMonths int `json:"warning_threshold_months"`
}

// ManagerSpanConfig потолок количества прямых подчиненных.
type ManagerSpanConfig struct {
	MaxDirectReports int `json:"max_direct_reports"`
}

// MaxReportsConfig легаси-вариант потолка (отдельный тип ради совместимости со старыми правилами).
type MaxReportsConfig struct {
	MaxReports int `json:"max_reports"`
}
