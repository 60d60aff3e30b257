package postgres

/*
Файл entity_repo.go — read-only источники evaluator'а. Таблицы persons,
one_on_ones, initiatives, initiative_checkins и feedback_campaigns принадлежат
другим доменам платформы; консоль их только читает. Каждая выборка агрегирует
"последнее событие" сразу для всей организации, чтобы прогон правила стоил
один запрос, а не запрос на пару/сущность.
*/

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// ListReportPairs возвращает все пары менеджер/подчиненный среди активных людей
// с датой последнего 1:1. Встречи учитываются в обе стороны пары: кто кого
// позвал — неважно.
func (r *Repo) ListReportPairs(ctx context.Context, orgID string) ([]domain.ReportPair, error) {
	query := `
		SELECT p.manager_id, p.id, MAX(o.scheduled_at)
		FROM persons p
		LEFT JOIN one_on_ones o
			ON (o.manager_id = p.manager_id AND o.report_id = p.id)
			OR (o.manager_id = p.id AND o.report_id = p.manager_id)
		WHERE p.organization_id = $1 AND p.status = 'active' AND p.manager_id IS NOT NULL
		GROUP BY p.manager_id, p.id`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query report pairs: %w", err)
	}
	defer rows.Close()

	pairs := make([]domain.ReportPair, 0)
	for rows.Next() {
		var p domain.ReportPair
		var last sql.NullTime
		if err := rows.Scan(&p.ManagerID, &p.ReportID, &last); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan report pair: %w", err)
		}
		if last.Valid {
			val := last.Time
			p.LastOneOnOne = &val
		}
		pairs = append(pairs, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return pairs, nil
}

// ListInitiativeCheckins — активные инициативы с датой последнего чек-ина.
func (r *Repo) ListInitiativeCheckins(ctx context.Context, orgID string) ([]domain.InitiativeCheckinState, error) {
	query := `
		SELECT i.id, i.title, MAX(c.created_at)
		FROM initiatives i
		LEFT JOIN initiative_checkins c ON c.initiative_id = i.id
		WHERE i.organization_id = $1 AND i.is_active = TRUE
		GROUP BY i.id, i.title`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query initiative checkins: %w", err)
	}
	defer rows.Close()

	states := make([]domain.InitiativeCheckinState, 0)
	for rows.Next() {
		var s domain.InitiativeCheckinState
		var last sql.NullTime
		if err := rows.Scan(&s.InitiativeID, &s.Title, &last); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan initiative state: %w", err)
		}
		if last.Valid {
			val := last.Time
			s.LastCheckin = &val
		}
		states = append(states, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return states, nil
}

// ListFeedbackStates — активные сотрудники с датой создания последней
// 360-кампании, нацеленной на них.
func (r *Repo) ListFeedbackStates(ctx context.Context, orgID string) ([]domain.FeedbackState, error) {
	query := `
		SELECT p.id, p.name, MAX(fc.created_at)
		FROM persons p
		LEFT JOIN feedback_campaigns fc ON fc.target_person_id = p.id
		WHERE p.organization_id = $1 AND p.status = 'active'
		GROUP BY p.id, p.name`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query feedback states: %w", err)
	}
	defer rows.Close()

	states := make([]domain.FeedbackState, 0)
	for rows.Next() {
		var s domain.FeedbackState
		var last sql.NullTime
		if err := rows.Scan(&s.PersonID, &s.PersonName, &last); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan feedback state: %w", err)
		}
		if last.Valid {
			val := last.Time
			s.LastCampaign = &val
		}
		states = append(states, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return states, nil
}

// ListManagerSpans — менеджеры и количество их активных прямых подчиненных.
// INNER JOIN: человек без подчиненных менеджером не считается.
func (r *Repo) ListManagerSpans(ctx context.Context, orgID string) ([]domain.ManagerSpanState, error) {
	query := `
		SELECT m.id, m.name, COUNT(p.id)
		FROM persons m
		JOIN persons p ON p.manager_id = m.id AND p.status = 'active'
		WHERE m.organization_id = $1 AND m.status = 'active'
		GROUP BY m.id, m.name`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query manager spans: %w", err)
	}
	defer rows.Close()

	spans := make([]domain.ManagerSpanState, 0)
	for rows.Next() {
		var s domain.ManagerSpanState
		if err := rows.Scan(&s.ManagerID, &s.ManagerName, &s.ReportCount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan manager span: %w", err)
		}
		spans = append(spans, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return spans, nil
}
