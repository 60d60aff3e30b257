package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/manageros-console/internal/domain"
	"github.com/xela07ax/manageros-console/internal/infra/auth"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	user *domain.User
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.user == nil || f.user.Username != username {
		return nil, nil
	}
	return f.user, nil
}

func newAuthService(t *testing.T, user *domain.User) *AuthService {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	validator := auth.NewBaseValidator(&key.PublicKey)
	return NewAuthService(&fakeUserRepo{user: user}, validator, key, time.Hour)
}

func testUser(t *testing.T, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:             "u-1",
		OrganizationID: "org-1",
		Username:       "alice",
		PasswordHash:   string(hash),
		Role:           domain.RoleAdmin,
	}
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	svc := newAuthService(t, testUser(t, "s3cret"))

	resp, err := svc.GenerateToken(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Greater(t, resp.ExpiresIn, int64(0))

	// Выпущенный токен должен проходить проверку того же сервиса:
	// Middleware использует его как TokenValidator
	claims, err := svc.VerifyToken("Bearer " + resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "manageros-console", claims.Issuer)
}

func TestGenerateToken_RejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t, testUser(t, "s3cret"))

	_, err := svc.GenerateToken(context.Background(), "alice", "wrong")
	assert.Error(t, err)

	_, err = svc.GenerateToken(context.Background(), "mallory", "s3cret")
	assert.Error(t, err)
}

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	svc := newAuthService(t, nil)

	_, err := svc.VerifyToken("Bearer not-a-token")
	assert.Error(t, err)
}
