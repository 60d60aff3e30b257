package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/manageros-console/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — интерфейс проверки токенов, реализуется AuthService через embedding BaseValidator.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// Типизированный ключ контекста вместо строкового — защищает от коллизий с чужими пакетами.
type ctxKey int

const callerKey ctxKey = iota

// CallerFromContext достает данные авторизованного пользователя, положенные Middleware.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(domain.Caller)
	return c, ok
}

// ContextWithCaller кладет Caller в контекст. Снаружи Middleware нужен
// только тестам хендлеров.
func ContextWithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем данные в контекст явным Caller
			ctx := ContextWithCaller(r.Context(), domain.Caller{
				UserID:         claims.UserID,
				OrganizationID: claims.OrganizationID,
				Role:           claims.Role,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
