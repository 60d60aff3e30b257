package domain

// OrgStats — сводка для дашборда. Счетчики "без свежего 1:1/360" считаются
// напрямую из состояния сущностей той же пороговой логикой, что и evaluator,
// а не из таблицы exceptions: это point-in-time срез, независимый от того,
// было ли исключение реально записано.
type OrgStats struct {
	People     PeopleStats    `json:"people"`
	Coverage   CoverageStats  `json:"coverage"`
	Exceptions ExceptionStats `json:"exceptions"`
	Breakdowns BreakdownStats `json:"breakdowns"`
}

type PeopleStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Managers int `json:"managers"`

	// Активные прямые подчиненные person'а, привязанного к вызывающему
	// (persons.user_id). Кэш сводки общий на организацию, поэтому это поле
	// считается на каждый запрос и в кэш не пишется.
	CallerDirectReports int `json:"caller_direct_reports"`
}

// CoverageStats — покрытие процессов менеджмента.
type CoverageStats struct {
	ReportsWithoutRecentOneOnOne int `json:"reports_without_recent_one_on_one"`
	PeopleWithoutRecentFeedback  int `json:"people_without_recent_feedback"`
	ManagersOverSpan             int `json:"managers_over_span"`
}

type ExceptionStats struct {
	ByStatus   map[string]int `json:"by_status"`
	BySeverity map[string]int `json:"by_severity"`
}

type BreakdownStats struct {
	ByStatus  []BreakdownRow `json:"by_status"`
	ByTeam    []BreakdownRow `json:"by_team"`
	ByJobRole []BreakdownRow `json:"by_job_role"`
}

// BreakdownRow — именованная строка категориальной разбивки вместо
// динамических структур (ad hoc объекты источника заменены явной моделью).
type BreakdownRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsWindows — окна point-in-time счетчиков покрытия. Пороговая логика та же,
// что у evaluator, но считается прямо по состоянию сущностей, а не по леджеру.
type StatsWindows struct {
	OneOnOneDays   int
	FeedbackMonths int
	ManagerSpanMax int
}
