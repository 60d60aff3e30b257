package postgres

/*
Файл exception_repo.go содержит леджер нарушений (exceptions) и его жизненный цикл.
Ключевой инвариант: не более одного active исключения на (rule_id, entity_type, entity_id).
*/

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// InsertIfNoActive вставляет исключение, только если активного двойника по
// (rule_id, entity_type, entity_id) еще нет. Одно атомарное выражение вместо
// read-then-write: два пересекающихся прогона evaluator не создадут дубль.
// Возвращает true, если запись реально создана.
func (r *Repo) InsertIfNoActive(ctx context.Context, e *domain.Exception) (bool, error) {
	query := `
		INSERT INTO exceptions (id, organization_id, rule_id, entity_type, entity_id, severity, message, status, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, 'active', NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM exceptions
			WHERE rule_id = $3 AND entity_type = $4 AND entity_id = $5 AND status = 'active'
		)`

	result, err := r.db.ExecContext(ctx, query,
		e.ID, e.OrganizationID, e.RuleID, e.EntityType, e.EntityID,
		e.Severity, e.Message,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to insert exception: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetExceptionByID получение деталей исключения в рамках организации.
func (r *Repo) GetExceptionByID(ctx context.Context, orgID, id string) (*domain.Exception, error) {
	query := `
		SELECT id, organization_id, rule_id, entity_type, entity_id, severity, message, status,
		       created_at, acknowledged_at, ignored_at, resolved_at
		FROM exceptions
		WHERE id = $1 AND organization_id = $2`

	var e domain.Exception
	var ackAt, ignAt, resAt sql.NullTime // Используем для обработки NULL из БД

	err := r.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&e.ID, &e.OrganizationID, &e.RuleID, &e.EntityType, &e.EntityID,
		&e.Severity, &e.Message, &e.Status,
		&e.CreatedAt, &ackAt, &ignAt, &resAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to get exception: %w", err)
	}

	if ackAt.Valid {
		val := ackAt.Time
		e.AcknowledgedAt = &val
	}
	if ignAt.Valid {
		val := ignAt.Time
		e.IgnoredAt = &val
	}
	if resAt.Valid {
		val := resAt.Time
		e.ResolvedAt = &val
	}
	return &e, nil
}

// FindExceptions фильтрация списка по статусу и severity для админки.
func (r *Repo) FindExceptions(ctx context.Context, orgID string, filter domain.ExceptionFilter) ([]*domain.Exception, error) {
	query := `
		SELECT id, organization_id, rule_id, entity_type, entity_id, severity, message, status,
		       created_at, acknowledged_at, ignored_at, resolved_at
		FROM exceptions
		WHERE organization_id = $1`

	args := []interface{}{orgID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += fmt.Sprintf(" AND severity = $%d", len(args))
	}

	query += " ORDER BY created_at DESC LIMIT 200"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query exceptions: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]*domain.Exception, 0)

	for rows.Next() {
		var e domain.Exception
		var ackAt, ignAt, resAt sql.NullTime

		err := rows.Scan(
			&e.ID, &e.OrganizationID, &e.RuleID, &e.EntityType, &e.EntityID,
			&e.Severity, &e.Message, &e.Status,
			&e.CreatedAt, &ackAt, &ignAt, &resAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan exception: %w", err)
		}

		if ackAt.Valid {
			val := ackAt.Time
			e.AcknowledgedAt = &val
		}
		if ignAt.Valid {
			val := ignAt.Time
			e.IgnoredAt = &val
		}
		if resAt.Valid {
			val := resAt.Time
			e.ResolvedAt = &val
		}

		results = append(results, &e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// TransitionStatus атомарно переводит исключение из active в целевой статус.
// Условие WHERE status = 'active' предотвращает Double Decision: повторный
// клик в UI не перетрет чужой переход.
func (r *Repo) TransitionStatus(ctx context.Context, orgID, id string, next domain.ExceptionStatus) error {
	var tsColumn string
	switch next {
	case domain.ExceptionAcknowledged:
		tsColumn = "acknowledged_at"
	case domain.ExceptionIgnored:
		tsColumn = "ignored_at"
	case domain.ExceptionResolved:
		tsColumn = "resolved_at"
	default:
		return domain.ErrInvalidTransition
	}

	// Имя колонки берется только из switch выше, в запрос не попадает пользовательский ввод
	query := fmt.Sprintf(`
		UPDATE exceptions
		SET status = $1, %s = NOW()
		WHERE id = $2 AND organization_id = $3 AND status = 'active'`, tsColumn)

	result, err := r.db.ExecContext(ctx, query, next, id, orgID)
	if err != nil {
		return fmt.Errorf("postgres: failed to transition exception: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	// Строк нет: либо ID неверный/чужой, либо решение уже было принято.
	// Разбираемся одним SELECT, чтобы отдать корректный код наверх.
	var status domain.ExceptionStatus
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM exceptions WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("postgres: failed to check exception status: %w", err)
	}
	return domain.ErrAlreadyProcessed
}
