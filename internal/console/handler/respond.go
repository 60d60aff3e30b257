package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/manageros-console/internal/console/service"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra/auth"
)

// callerOrAbort достает Caller из контекста. За Middleware он есть всегда;
// его отсутствие означает, что роут собрали мимо защищенного периметра.
func callerOrAbort(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return domain.Caller{}, false
	}
	return caller, true
}

// respondError мапит сентинелы домена в HTTP-коды.
// NotFound и cross-tenant отвечают одинаково — существование чужих записей не раскрываем.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, domain.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyProcessed), errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrTooManyRuns):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Заголовки уже ушли, остается только оборвать тело
		return
	}
}
