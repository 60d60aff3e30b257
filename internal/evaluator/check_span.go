package evaluator

import (
	"fmt"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// checkManagerSpan флагует менеджеров с числом активных прямых подчиненных
// строго выше потолка: ровно maxReports — это еще норма.
// Обслуживает оба типа правил (manager_span и легаси max_reports),
// различаются они только severity.
func checkManagerSpan(maxReports int, severity domain.Severity, spans []domain.ManagerSpanState) []violation {
	var out []violation

	for _, s := range spans {
		if s.ReportCount > maxReports {
			out = append(out, violation{
				EntityType: "Person",
				EntityID:   s.ManagerID,
				Severity:   severity,
				Message: fmt.Sprintf("%s has %d direct reports (limit %d)",
					s.ManagerName, s.ReportCount, maxReports),
			})
		}
	}

	return out
}
