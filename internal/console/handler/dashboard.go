package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/manageros-console/internal/domain"
)

// DashboardService Описываем, что нам нужно от сервиса
type DashboardService interface {
	GetOrgStats(ctx context.Context, caller domain.Caller) (*domain.OrgStats, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(s DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats — сводка дашборда организации вызывающего
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetOrgStats(r.Context(), caller)
	if err != nil {
		http.Error(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
