package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/evaluator"
)

// EvaluationService Описываем, что нам нужно от сервиса
type EvaluationService interface {
	Run(ctx context.Context, caller domain.Caller) (evaluator.Result, error)
}

type EvaluationHandler struct {
	service EvaluationService
}

func NewEvaluationHandler(s EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: s}
}

// RunResponse — то, что видит админка после прогона: сколько создано и
// какие правила не отработали.
type RunResponse struct {
	ExceptionsCreated int      `json:"exceptions_created"`
	Errors            []string `json:"errors"`
}

// Run — ручной запуск проверки всех включенных правил (только admin/owner).
// Вызов синхронный: админка ждет результат.
// POST /v1/evaluation/run
func (h *EvaluationHandler) Run(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.service.Run(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{
		ExceptionsCreated: result.ExceptionsCreated,
		Errors:            result.Errors,
	})
}
