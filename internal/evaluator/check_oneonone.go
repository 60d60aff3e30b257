package evaluator

import (
	"fmt"
	"time"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// checkOneOnOneFrequency флагует пары менеджер/подчиненный без свежего 1:1.
// Границы включительные: давность ровно в warning_threshold_days уже нарушение.
// Пара без единого 1:1 в истории сразу получает urgent.
func checkOneOnOneFrequency(cfg domain.OneOnOneFrequencyConfig, pairs []domain.ReportPair, now time.Time) []violation {
	var out []violation

	for _, pair := range pairs {
		// Композитный ключ пары: рецидив по той же паре дедуплицируется
		entityID := fmt.Sprintf("%s-%s", pair.ManagerID, pair.ReportID)

		if pair.LastOneOnOne == nil {
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   entityID,
				Severity:   domain.SeverityUrgent,
				Message:    fmt.Sprintf("no 1:1 on record between manager %s and report %s", pair.ManagerID, pair.ReportID),
			})
			continue
		}

		days := daysBetween(*pair.LastOneOnOne, now)
		switch {
		case days >= cfg.UrgentThresholdDays:
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   entityID,
				Severity:   domain.SeverityUrgent,
				Message: fmt.Sprintf("last 1:1 between manager %s and report %s was %d days ago (urgent threshold %d)",
					pair.ManagerID, pair.ReportID, days, cfg.UrgentThresholdDays),
			})
		case days >= cfg.WarningThresholdDays:
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   entityID,
				Severity:   domain.SeverityWarning,
				Message: fmt.Sprintf("last 1:1 between manager %s and report %s was %d days ago (warning threshold %d)",
					pair.ManagerID, pair.ReportID, days, cfg.WarningThresholdDays),
			})
		}
	}

	return out
}

// daysBetween — полные сутки между двумя моментами.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
