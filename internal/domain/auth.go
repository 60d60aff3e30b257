package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли пользователей консоли. Мутации правил и запуск проверки
// доступны только admin/owner, чтение — любому члену организации.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type CustomClaims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// Caller — явный контекст вызова вместо глобальной сессии:
// сервисы получают его аргументом и сами решают вопрос прав.
type Caller struct {
	UserID         string
	OrganizationID string
	Role           string
}

// IsAdmin покрывает и owner: владелец организации не слабее админа.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin || c.Role == RoleOwner
}

// Secure Token Issuing
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // Никогда не отправляем на фронт
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
