package domain

import "time"

// Read-модели состояния сущностей платформы. Таблицы persons, one_on_ones,
// initiatives и feedback_campaigns принадлежат другим доменам; консоль читает
// их только агрегатами ниже — по одной выборке на тип проверки.

// ReportPair — пара менеджер/подчиненный с датой последнего 1:1 (если был).
// Выбирается одним запросом, чтобы evaluator не ходил в базу по каждой паре.
type ReportPair struct {
	ManagerID    string
	ReportID     string
	LastOneOnOne *time.Time
}

// InitiativeCheckinState — активная инициатива с датой последнего чек-ина.
type InitiativeCheckinState struct {
	InitiativeID string
	Title        string
	LastCheckin  *time.Time
}

// FeedbackState — активный сотрудник с датой последней 360-кампании по нему.
type FeedbackState struct {
	PersonID     string
	PersonName   string
	LastCampaign *time.Time
}

// ManagerSpanState — менеджер и количество его активных прямых подчиненных.
type ManagerSpanState struct {
	ManagerID   string
	ManagerName string
	ReportCount int
}
