// Package ruleset — единственный источник истины о формах конфигурации правил.
// Каждому RuleType соответствует строгий декодер своего варианта: конфиг хранится
// в базе как JSON, поэтому evaluator перед использованием прогоняет его через
// реестр повторно (defensive re-validation).
package ruleset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// KnownType сообщает, входит ли тип в закрытый enum.
func KnownType(rt domain.RuleType) bool {
	switch rt {
	case domain.RuleOneOnOneFrequency,
		domain.RuleInitiativeCheckin,
		domain.RuleFeedback360,
		domain.RuleManagerSpan,
		domain.RuleMaxReports:
		return true
	}
	return false
}

// ValidateConfig проверяет конфиг против схемы его типа.
// Вызывается на границе Rule Store до записи в базу.
func ValidateConfig(rt domain.RuleType, raw json.RawMessage) error {
	switch rt {
	case domain.RuleOneOnOneFrequency:
		_, err := OneOnOneFrequency(raw)
		return err
	case domain.RuleInitiativeCheckin:
		_, err := InitiativeCheckin(raw)
		return err
	case domain.RuleFeedback360:
		_, err := Feedback360(raw)
		return err
	case domain.RuleManagerSpan:
		_, err := ManagerSpan(raw)
		return err
	case domain.RuleMaxReports:
		_, err := MaxReports(raw)
		return err
	}
	// Не должно случаться при закрытом enum, но enum приходит из JSON
	return fmt.Errorf("%w: unknown rule type %q", domain.ErrValidation, rt)
}

// OneOnOneFrequency декодирует пороги давности 1:1.
// Инвариант: urgent не раньше warning, оба положительные.
func OneOnOneFrequency(raw json.RawMessage) (domain.OneOnOneFrequencyConfig, error) {
	var cfg domain.OneOnOneFrequencyConfig
	if err := decodeStrict(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.WarningThresholdDays <= 0 {
		return cfg, fmt.Errorf("%w: warning_threshold_days must be positive", domain.ErrValidation)
	}
	if cfg.UrgentThresholdDays <= 0 {
		return cfg, fmt.Errorf("%w: urgent_threshold_days must be positive", domain.ErrValidation)
	}
	if cfg.UrgentThresholdDays < cfg.WarningThresholdDays {
		return cfg, fmt.Errorf("%w: urgent_threshold_days must not be less than warning_threshold_days", domain.ErrValidation)
	}
	return cfg, nil
}

func InitiativeCheckin(raw json.RawMessage) (domain.InitiativeCheckinConfig, error) {
	var cfg domain.InitiativeCheckinConfig
	if err := decodeStrict(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.WarningThresholdDays <= 0 {
		return cfg, fmt.Errorf("%w: warning_threshold_days must be positive", domain.ErrValidation)
	}
	return cfg, nil
}

func Feedback360(raw json.RawMessage) (domain.Feedback360Config, error) {
	var cfg domain.Feedback360Config
	if err := decodeStrict(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.WarningThresholdMonths <= 0 {
		return cfg, fmt.Errorf("%w: warning_threshold_months must be positive", domain.ErrValidation)
	}
	return cfg, nil
}

func ManagerSpan(raw json.RawMessage) (domain.ManagerSpanConfig, error) {
	var cfg domain.ManagerSpanConfig
	if err := decodeStrict(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxDirectReports <= 0 {
		return cfg, fmt.Errorf("%w: max_direct_reports must be positive", domain.ErrValidation)
	}
	return cfg, nil
}

func MaxReports(raw json.RawMessage) (domain.MaxReportsConfig, error) {
	var cfg domain.MaxReportsConfig
	if err := decodeStrict(raw, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxReports <= 0 {
		return cfg, fmt.Errorf("%w: max_reports must be positive", domain.ErrValidation)
	}
	return cfg, nil
}

// decodeStrict не пропускает лишние поля: опечатка в имени порога должна
// падать на создании правила, а не молча давать нулевой порог.
func decodeStrict(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: config is required", domain.ErrValidation)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed config: %v", domain.ErrValidation, err)
	}
	return nil
}
