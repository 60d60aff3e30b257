package evaluator

import (
	"fmt"
	"time"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// checkFeedback360 флагует сотрудников, по которым давно не запускалась
// 360-кампания. Месяцы считаются календарно (AddDate), граница включительная:
// кампания ровно warning_threshold_months назад — уже нарушение.
func checkFeedback360(cfg domain.Feedback360Config, states []domain.FeedbackState, now time.Time) []violation {
	var out []violation

	for _, s := range states {
		if s.LastCampaign == nil {
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   s.PersonID,
				Severity:   domain.SeverityWarning,
				Message:    fmt.Sprintf("%s has never been the target of a feedback campaign", s.PersonName),
			})
			continue
		}

		deadline := s.LastCampaign.AddDate(0, cfg.WarningThresholdMonths, 0)
		if !deadline.After(now) {
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   s.PersonID,
				Severity:   domain.SeverityWarning,
				Message: fmt.Sprintf("last feedback campaign for %s started more than %d months ago",
					s.PersonName, cfg.WarningThresholdMonths),
			})
		}
	}

	return out
}
