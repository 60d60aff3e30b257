package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/manageros-console/internal/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Repo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, New(db)
}

func ruleColumns() []string {
	return []string{"id", "organization_id", "rule_type", "name", "description", "is_enabled", "config", "created_at", "updated_at"}
}

func TestGetRuleByID_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ruleColumns()).AddRow(
		"rule-1", "org-1", "one_on_one_frequency", "1:1 freshness", "check 1:1 cadence",
		true, []byte(`{"warning_threshold_days":14,"urgent_threshold_days":30}`), now, now,
	)

	mock.ExpectQuery(`SELECT (.+) FROM tolerance_rules`).
		WithArgs("rule-1", "org-1").
		WillReturnRows(rows)

	rule, err := repo.GetRuleByID(context.Background(), "org-1", "rule-1")

	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "rule-1", rule.ID)
	assert.Equal(t, domain.RuleOneOnOneFrequency, rule.RuleType)
	assert.Equal(t, "check 1:1 cadence", rule.Description)
	assert.True(t, rule.IsEnabled)
	assert.JSONEq(t, `{"warning_threshold_days":14,"urgent_threshold_days":30}`, string(rule.Config))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRuleByID_NotFoundReturnsNil(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM tolerance_rules`).
		WithArgs("rule-404", "org-1").
		WillReturnError(sql.ErrNoRows)

	rule, err := repo.GetRuleByID(context.Background(), "org-1", "rule-404")

	require.NoError(t, err)
	assert.Nil(t, rule)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEnabledRules_FiltersDisabled(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ruleColumns()).AddRow(
		"rule-1", "org-1", "manager_span", "span ceiling", nil,
		true, []byte(`{"max_direct_reports":8}`), now, now,
	)

	mock.ExpectQuery(`SELECT (.+) FROM tolerance_rules WHERE organization_id = \$1 AND is_enabled = TRUE`).
		WithArgs("org-1").
		WillReturnRows(rows)

	rules, err := repo.ListEnabledRules(context.Background(), "org-1")

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-1", rules[0].ID)
	assert.Empty(t, rules[0].Description) // NULL description в базе

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRules_EmptyResultIsNotNil(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM tolerance_rules`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(ruleColumns()))

	rules, err := repo.ListRules(context.Background(), "org-1")

	require.NoError(t, err)
	assert.NotNil(t, rules) // JSON должен отдать [], а не null
	assert.Len(t, rules, 0)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRule_CrossTenantLooksLikeNotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE tolerance_rules`).
		WithArgs("new name", "", true, []byte(`{"max_direct_reports":5}`), "rule-1", "org-other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRule(context.Background(), &domain.ToleranceRule{
		ID:             "rule-1",
		OrganizationID: "org-other",
		Name:           "new name",
		IsEnabled:      true,
		Config:         json.RawMessage(`{"max_direct_reports":5}`),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRuleEnabled_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE tolerance_rules`).
		WithArgs(false, "rule-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetRuleEnabled(context.Background(), "org-1", "rule-1", false)

	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRule_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM tolerance_rules`).
		WithArgs("rule-404", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteRule(context.Background(), "org-1", "rule-404")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
