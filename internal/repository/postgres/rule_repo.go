package postgres

/*
Файл rule_repo.go отвечает за хранение толеранс-правил (tolerance_rules).
Каждый запрос скоупится по organization_id: чужая организация получает
тот же результат, что и несуществующий ID.
*/

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

func (r *Repo) GetRuleByID(ctx context.Context, orgID, id string) (*domain.ToleranceRule, error) {
	query := `
		SELECT id, organization_id, rule_type, name, description, is_enabled, config, created_at, updated_at
		FROM tolerance_rules
		WHERE id = $1 AND organization_id = $2`

	rule := &domain.ToleranceRule{}
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&rule.ID,
		&rule.OrganizationID,
		&rule.RuleType,
		&rule.Name,
		&description,
		&rule.IsEnabled,
		&rule.Config,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Возвращаем nil для 404 в хендлере
		}
		return nil, fmt.Errorf("postgres: failed to get rule: %w", err)
	}

	if description.Valid {
		rule.Description = description.String
	}
	return rule, nil
}

// ListRules возвращает все правила организации для экрана настроек.
func (r *Repo) ListRules(ctx context.Context, orgID string) ([]domain.ToleranceRule, error) {
	return r.listRules(ctx, orgID, false)
}

// ListEnabledRules — выборка для evaluator: выключенные правила пропускаются целиком.
func (r *Repo) ListEnabledRules(ctx context.Context, orgID string) ([]domain.ToleranceRule, error) {
	return r.listRules(ctx, orgID, true)
}

func (r *Repo) listRules(ctx context.Context, orgID string, enabledOnly bool) ([]domain.ToleranceRule, error) {
	query := `
		SELECT id, organization_id, rule_type, name, description, is_enabled, config, created_at, updated_at
		FROM tolerance_rules
		WHERE organization_id = $1`
	if enabledOnly {
		query += ` AND is_enabled = TRUE`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query rules: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]domain.ToleranceRule, 0)

	for rows.Next() {
		var rule domain.ToleranceRule
		var description sql.NullString
		if err := rows.Scan(
			&rule.ID, &rule.OrganizationID, &rule.RuleType, &rule.Name,
			&description, &rule.IsEnabled, &rule.Config,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan rule: %w", err)
		}
		if description.Valid {
			rule.Description = description.String
		}
		results = append(results, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// CreateRule создает новую запись. ID и валидация конфига — зона ответственности сервиса.
func (r *Repo) CreateRule(ctx context.Context, rule *domain.ToleranceRule) error {
	query := `
		INSERT INTO tolerance_rules (id, organization_id, rule_type, name, description, is_enabled, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.OrganizationID, rule.RuleType, rule.Name,
		rule.Description, rule.IsEnabled, rule.Config,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create rule: %w", err)
	}
	return nil
}

// UpdateRule применяет новые name/description/is_enabled/config.
// rule_type не обновляется — тип правила иммутабелен после создания.
func (r *Repo) UpdateRule(ctx context.Context, rule *domain.ToleranceRule) error {
	query := `
		UPDATE tolerance_rules
		SET name = $1, description = $2, is_enabled = $3, config = $4, updated_at = NOW()
		WHERE id = $5 AND organization_id = $6`

	result, err := r.db.ExecContext(ctx, query,
		rule.Name, rule.Description, rule.IsEnabled, rule.Config,
		rule.ID, rule.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update rule: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetRuleEnabled переключает флаг без пересохранения остальных полей.
func (r *Repo) SetRuleEnabled(ctx context.Context, orgID, id string, enabled bool) error {
	query := `
		UPDATE tolerance_rules
		SET is_enabled = $1, updated_at = NOW()
		WHERE id = $2 AND organization_id = $3`

	result, err := r.db.ExecContext(ctx, query, enabled, id, orgID)
	if err != nil {
		return fmt.Errorf("postgres: failed to toggle rule: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteRule — жесткое удаление. Исторические exceptions сохраняют rule_id,
// читатели обязаны переживать отсутствие правила.
func (r *Repo) DeleteRule(ctx context.Context, orgID, id string) error {
	query := `DELETE FROM tolerance_rules WHERE id = $1 AND organization_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, orgID)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete rule: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
