package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/manageros-console/internal/domain"
)

// ExceptionService Описываем, что нам нужно от сервиса
type ExceptionService interface {
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Exception, error)
	List(ctx context.Context, caller domain.Caller, filter domain.ExceptionFilter) ([]*domain.Exception, error)
	Acknowledge(ctx context.Context, caller domain.Caller, id string) error
	Ignore(ctx context.Context, caller domain.Caller, id string) error
	Resolve(ctx context.Context, caller domain.Caller, id string) error
}

type ExceptionHandler struct {
	service ExceptionService
}

func NewExceptionHandler(s ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{service: s}
}

// List — лента нарушений с фильтрами ?status=...&severity=...
// GET /v1/exceptions
func (h *ExceptionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	filter := domain.ExceptionFilter{
		Status:   domain.ExceptionStatus(r.URL.Query().Get("status")),
		Severity: domain.Severity(r.URL.Query().Get("severity")),
	}

	list, err := h.service.List(r.Context(), caller, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetDetails — карточка исключения
// GET /v1/exceptions/{id}
func (h *ExceptionHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	exc, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if exc == nil {
		http.Error(w, "Exception not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, exc)
}

// Acknowledge / Ignore / Resolve — one-way переходы из active.
// Повторный переход отвечает 409 (запись уже обработана).

// POST /v1/exceptions/{id}/acknowledge
func (h *ExceptionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Acknowledge)
}

// POST /v1/exceptions/{id}/ignore
func (h *ExceptionHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Ignore)
}

// POST /v1/exceptions/{id}/resolve
func (h *ExceptionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Resolve)
}

func (h *ExceptionHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.Caller, string) error) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Exception ID is required", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), caller, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
