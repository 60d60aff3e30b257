package postgres

import (
	"context"
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// GetOrgStats собирает сводку дашборда одной организации.
func (r *Repo) GetOrgStats(ctx context.Context, orgID string, w domain.StatsWindows) (*domain.OrgStats, error) {
	stats := &domain.OrgStats{
		Exceptions: domain.ExceptionStats{
			ByStatus:   make(map[string]int),
			BySeverity: make(map[string]int),
		},
	}

	// 1. Люди: всего / активных / менеджеров
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(DISTINCT manager_id) FILTER (WHERE manager_id IS NOT NULL AND status = 'active')
		FROM persons
		WHERE organization_id = $1`, orgID).Scan(
		&stats.People.Total,
		&stats.People.Active,
		&stats.People.Managers,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: people stats: %w", err)
	}

	// 2. Покрытие: пары без свежего 1:1, люди без свежей 360, менеджеры сверх потолка
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT p.id
			FROM persons p
			LEFT JOIN one_on_ones o
				ON (o.manager_id = p.manager_id AND o.report_id = p.id)
				OR (o.manager_id = p.id AND o.report_id = p.manager_id)
			WHERE p.organization_id = $1 AND p.status = 'active' AND p.manager_id IS NOT NULL
			GROUP BY p.id
			HAVING MAX(o.scheduled_at) IS NULL
				OR MAX(o.scheduled_at) <= NOW() - make_interval(days => $2)
		) stale`, orgID, w.OneOnOneDays).Scan(&stats.Coverage.ReportsWithoutRecentOneOnOne)
	if err != nil {
		return nil, fmt.Errorf("postgres: one-on-one coverage: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT p.id
			FROM persons p
			LEFT JOIN feedback_campaigns fc ON fc.target_person_id = p.id
			WHERE p.organization_id = $1 AND p.status = 'active'
			GROUP BY p.id
			HAVING MAX(fc.created_at) IS NULL
				OR MAX(fc.created_at) <= NOW() - make_interval(months => $2)
		) stale`, orgID, w.FeedbackMonths).Scan(&stats.Coverage.PeopleWithoutRecentFeedback)
	if err != nil {
		return nil, fmt.Errorf("postgres: feedback coverage: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT m.id
			FROM persons m
			JOIN persons p ON p.manager_id = m.id AND p.status = 'active'
			WHERE m.organization_id = $1 AND m.status = 'active'
			GROUP BY m.id
			HAVING COUNT(p.id) > $2
		) over_span`, orgID, w.ManagerSpanMax).Scan(&stats.Coverage.ManagersOverSpan)
	if err != nil {
		return nil, fmt.Errorf("postgres: span coverage: %w", err)
	}

	// 3. Леджер исключений: разрез по статусу и severity одним проходом
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, severity, COUNT(*)
		FROM exceptions
		WHERE organization_id = $1
		GROUP BY status, severity`, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: exception stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, severity string
		var count int
		if err := rows.Scan(&status, &severity, &count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan exception stats: %w", err)
		}
		stats.Exceptions.ByStatus[status] += count
		stats.Exceptions.BySeverity[severity] += count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	// 4. Категориальные разбивки людей
	if stats.Breakdowns.ByStatus, err = r.breakdown(ctx, orgID, "status"); err != nil {
		return nil, err
	}
	if stats.Breakdowns.ByTeam, err = r.breakdown(ctx, orgID, "team_name"); err != nil {
		return nil, err
	}
	if stats.Breakdowns.ByJobRole, err = r.breakdown(ctx, orgID, "job_role"); err != nil {
		return nil, err
	}

	return stats, nil
}

// CountCallerDirectReports — активные прямые подчиненные person'а, привязанного
// к пользователю консоли через persons.user_id. Пользователь без привязки
// (например, HR-админ без записи в persons) получает 0, а не ошибку.
func (r *Repo) CountCallerDirectReports(ctx context.Context, orgID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM persons p
		WHERE p.organization_id = $1 AND p.status = 'active'
			AND p.manager_id = (
				SELECT id FROM persons
				WHERE organization_id = $1 AND user_id = $2
				LIMIT 1
			)`, orgID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: caller direct reports: %w", err)
	}
	return count, nil
}

// breakdown строит GROUP BY по одной из колонок persons.
// Колонка приходит только из вызовов выше, не из пользовательского ввода.
func (r *Repo) breakdown(ctx context.Context, orgID, column string) ([]domain.BreakdownRow, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(%s, ''), 'unassigned'), COUNT(*)
		FROM persons
		WHERE organization_id = $1
		GROUP BY 1
		ORDER BY 2 DESC`, column)

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: breakdown by %s: %w", column, err)
	}
	defer rows.Close()

	result := make([]domain.BreakdownRow, 0)
	for rows.Next() {
		var row domain.BreakdownRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan breakdown row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return result, nil
}
