package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra"
	"go.uber.org/zap"
)

// fakeRuleRepo — in-memory реализация RuleRepository для сервисных тестов.
type fakeRuleRepo struct {
	rules   map[string]*domain.ToleranceRule
	created int
	updated int
	deleted int
	toggled int
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]*domain.ToleranceRule)}
}

func (f *fakeRuleRepo) GetRuleByID(ctx context.Context, orgID, id string) (*domain.ToleranceRule, error) {
	rule, ok := f.rules[id]
	if !ok || rule.OrganizationID != orgID {
		return nil, nil
	}
	cp := *rule
	return &cp, nil
}

func (f *fakeRuleRepo) ListRules(ctx context.Context, orgID string) ([]domain.ToleranceRule, error) {
	out := make([]domain.ToleranceRule, 0)
	for _, r := range f.rules {
		if r.OrganizationID == orgID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) CreateRule(ctx context.Context, rule *domain.ToleranceRule) error {
	f.created++
	cp := *rule
	f.rules[rule.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) UpdateRule(ctx context.Context, rule *domain.ToleranceRule) error {
	f.updated++
	existing, ok := f.rules[rule.ID]
	if !ok || existing.OrganizationID != rule.OrganizationID {
		return domain.ErrNotFound
	}
	cp := *rule
	f.rules[rule.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) SetRuleEnabled(ctx context.Context, orgID, id string, enabled bool) error {
	f.toggled++
	rule, ok := f.rules[id]
	if !ok || rule.OrganizationID != orgID {
		return domain.ErrNotFound
	}
	rule.IsEnabled = enabled
	return nil
}

func (f *fakeRuleRepo) DeleteRule(ctx context.Context, orgID, id string) error {
	f.deleted++
	rule, ok := f.rules[id]
	if !ok || rule.OrganizationID != orgID {
		return domain.ErrNotFound
	}
	delete(f.rules, id)
	return nil
}

func testRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func adminCaller() domain.Caller {
	return domain.Caller{UserID: "u-admin", OrganizationID: "org-1", Role: domain.RoleAdmin}
}

func memberCaller() domain.Caller {
	return domain.Caller{UserID: "u-member", OrganizationID: "org-1", Role: domain.RoleMember}
}

func TestRuleCreate_MemberForbidden(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewRuleService(repo, testRedis(t), zap.NewNop())

	_, err := svc.Create(context.Background(), memberCaller(), CreateRuleInput{
		RuleType: domain.RuleManagerSpan,
		Name:     "span ceiling",
		Config:   json.RawMessage(`{"max_direct_reports": 8}`),
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, repo.created) // до репозитория дойти не должны
}

func TestRuleCreate_DefaultsAndPersists(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewRuleService(repo, testRedis(t), zap.NewNop())

	rule, err := svc.Create(context.Background(), adminCaller(), CreateRuleInput{
		RuleType:    domain.RuleOneOnOneFrequency,
		Name:        "  1:1 freshness  ",
		Description: "flag stale 1:1 pairs",
		Config:      json.RawMessage(`{"warning_threshold_days": 14, "urgent_threshold_days": 30}`),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, "org-1", rule.OrganizationID)
	assert.Equal(t, "1:1 freshness", rule.Name) // пробелы по краям срезаются
	assert.True(t, rule.IsEnabled)              // включено по умолчанию
	assert.Equal(t, 1, repo.created)
}

func TestRuleCreate_RejectsInvalidConfig(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewRuleService(repo, testRedis(t), zap.NewNop())

	cases := []CreateRuleInput{
		{RuleType: domain.RuleManagerSpan, Name: "bad ceiling", Config: json.RawMessage(`{"max_direct_reports": 0}`)},
		{RuleType: domain.RuleType("coffee_budget"), Name: "unknown", Config: json.RawMessage(`{}`)},
		{RuleType: domain.RuleManagerSpan, Name: "   ", Config: json.RawMessage(`{"max_direct_reports": 5}`)},
		{RuleType: domain.RuleManagerSpan, Name: "typo", Config: json.RawMessage(`{"max_direct_report": 5}`)},
	}

	for _, input := range cases {
		_, err := svc.Create(context.Background(), adminCaller(), input)
		assert.ErrorIs(t, err, domain.ErrValidation, input.Name)
	}
	assert.Zero(t, repo.created)
}

func TestRuleCreate_PublishesUpdateSignal(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewRuleService(newFakeRuleRepo(), rdb, zap.NewNop())

	sub := rdb.Subscribe(context.Background(), infra.RedisChanRulesUpdate)
	defer sub.Close()
	_, err := sub.Receive(context.Background()) // дожидаемся подтверждения подписки
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), adminCaller(), CreateRuleInput{
		RuleType: domain.RuleManagerSpan,
		Name:     "span ceiling",
		Config:   json.RawMessage(`{"max_direct_reports": 8}`),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh", msg.Payload)
}

func TestRuleUpdate_RevalidatesAgainstExistingType(t *testing.T) {
	repo := newFakeRuleRepo()
	repo.rules["rule-1"] = &domain.ToleranceRule{
		ID:             "rule-1",
		OrganizationID: "org-1",
		RuleType:       domain.RuleManagerSpan,
		Name:           "span ceiling",
		IsEnabled:      true,
		Config:         json.RawMessage(`{"max_direct_reports": 8}`),
	}
	svc := NewRuleService(repo, testRedis(t), zap.NewNop())

	// Конфиг другого типа должен упасть: тип правила иммутабелен
	_, err := svc.Update(context.Background(), adminCaller(), "rule-1", UpdateRuleInput{
		Config: json.RawMessage(`{"warning_threshold_months": 6}`),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Частичное обновление не трогает незаполненные поля
	newName := "tighter ceiling"
	updated, err := svc.Update(context.Background(), adminCaller(), "rule-1", UpdateRuleInput{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "tighter ceiling", updated.Name)
	assert.Equal(t, domain.RuleManagerSpan, updated.RuleType)
	assert.JSONEq(t, `{"max_direct_reports": 8}`, string(updated.Config))
}

func TestRuleUpdate_MissingRule(t *testing.T) {
	svc := NewRuleService(newFakeRuleRepo(), testRedis(t), zap.NewNop())

	_, err := svc.Update(context.Background(), adminCaller(), "rule-404", UpdateRuleInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRuleToggleAndDelete_MemberForbidden(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewRuleService(repo, testRedis(t), zap.NewNop())

	err := svc.Toggle(context.Background(), memberCaller(), "rule-1", false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = svc.Delete(context.Background(), memberCaller(), "rule-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Zero(t, repo.toggled)
	assert.Zero(t, repo.deleted)
}
