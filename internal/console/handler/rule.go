package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/manageros-console/internal/console/service"
)

type RuleHandler struct {
	service *service.RuleService
}

func NewRuleHandler(s *service.RuleService) *RuleHandler {
	return &RuleHandler{service: s}
}

// List возвращает все правила организации для экрана настроек
// GET /v1/rules
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	rules, err := h.service.GetAll(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

// Get возвращает детали конкретного правила по его ID.
// GET /v1/rules/{id}
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Rule ID is required", http.StatusBadRequest)
		return
	}

	rule, err := h.service.GetByID(r.Context(), caller, id)
	if err != nil {
		respondError(w, err)
		return
	}

	// Если правило не найдено (nil), возвращаем 404
	if rule == nil {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

// Create создает новое правило (только admin/owner)
// POST /v1/rules
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	var input service.CreateRuleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rule, err := h.service.Create(r.Context(), caller, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

// Update применяет частичное обновление (rule_type не меняется)
// PUT /v1/rules/{id}
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var input service.UpdateRuleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rule, err := h.service.Update(r.Context(), caller, id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

type ToggleRequest struct {
	IsEnabled bool `json:"is_enabled"`
}

// Toggle включает/выключает правило без пересохранения конфига
// POST /v1/rules/{id}/toggle
func (h *RuleHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Toggle(r.Context(), caller, id, req.IsEnabled); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete — жесткое удаление правила
// DELETE /v1/rules/{id}
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
