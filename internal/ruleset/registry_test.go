package ruleset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/manageros-console/internal/domain"
)

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(domain.RuleOneOnOneFrequency))
	assert.True(t, KnownType(domain.RuleMaxReports))
	assert.False(t, KnownType(domain.RuleType("coffee_budget")))
	assert.False(t, KnownType(domain.RuleType("")))
}

func TestValidateConfig_AcceptsValidVariants(t *testing.T) {
	cases := map[domain.RuleType]string{
		domain.RuleOneOnOneFrequency: `{"warning_threshold_days": 14, "urgent_threshold_days": 30}`,
		domain.RuleInitiativeCheckin: `{"warning_threshold_days": 7}`,
		domain.RuleFeedback360:       `{"warning_threshold_months": 6}`,
		domain.RuleManagerSpan:       `{"max_direct_reports": 8}`,
		domain.RuleMaxReports:        `{"max_reports": 8}`,
	}

	for rt, cfg := range cases {
		assert.NoError(t, ValidateConfig(rt, json.RawMessage(cfg)), string(rt))
	}
}

func TestValidateConfig_RejectsUnknownType(t *testing.T) {
	err := ValidateConfig(domain.RuleType("coffee_budget"), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateConfig_RejectsUnknownFields(t *testing.T) {
	// Опечатка в имени порога не должна молча давать нулевой порог
	err := ValidateConfig(domain.RuleManagerSpan, json.RawMessage(`{"max_direct_report": 8}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateConfig_RequiresConfig(t *testing.T) {
	err := ValidateConfig(domain.RuleFeedback360, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOneOnOneFrequency_ThresholdInvariants(t *testing.T) {
	_, err := OneOnOneFrequency(json.RawMessage(`{"warning_threshold_days": 0, "urgent_threshold_days": 30}`))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = OneOnOneFrequency(json.RawMessage(`{"warning_threshold_days": 14, "urgent_threshold_days": -1}`))
	assert.ErrorIs(t, err, domain.ErrValidation)

	// urgent раньше warning означает перепутанные пороги
	_, err = OneOnOneFrequency(json.RawMessage(`{"warning_threshold_days": 30, "urgent_threshold_days": 14}`))
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Равные пороги допустимы: организация хочет сразу urgent
	cfg, err := OneOnOneFrequency(json.RawMessage(`{"warning_threshold_days": 14, "urgent_threshold_days": 14}`))
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.WarningThresholdDays)
	assert.Equal(t, 14, cfg.UrgentThresholdDays)
}

func TestManagerSpan_RejectsNonPositiveCeiling(t *testing.T) {
	_, err := ManagerSpan(json.RawMessage(`{"max_direct_reports": 0}`))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = MaxReports(json.RawMessage(`{"max_reports": -3}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFeedback360_RejectsNonPositiveMonths(t *testing.T) {
	_, err := Feedback360(json.RawMessage(`{"warning_threshold_months": 0}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
