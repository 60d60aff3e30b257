package evaluator

import (
	"fmt"
	"time"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// checkInitiativeCheckin флагует активные инициативы без свежего чек-ина.
// У правила один порог, поэтому severity всегда warning.
func checkInitiativeCheckin(cfg domain.InitiativeCheckinConfig, states []domain.InitiativeCheckinState, now time.Time) []violation {
	var out []violation

	for _, s := range states {
		if s.LastCheckin == nil {
			out = append(out, violation{
				EntityType: "Initiative",
				EntityID:   s.InitiativeID,
				Severity:   domain.SeverityWarning,
				Message:    fmt.Sprintf("initiative %q has no check-ins on record", s.Title),
			})
			continue
		}

		days := daysBetween(*s.LastCheckin, now)
		if days >= cfg.WarningThresholdDays {
			out = append(out, violation{
				EntityType: "Initiative",
				EntityID:   s.InitiativeID,
				Severity:   domain.SeverityWarning,
				Message: fmt.Sprintf("initiative %q last check-in was %d days ago (threshold %d)",
					s.Title, days, cfg.WarningThresholdDays),
			})
		}
	}

	return out
}
