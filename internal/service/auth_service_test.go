package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdeskpro/helpdesk-service/internal/config"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

func newTestAuthService(users *mockUserRepository) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, users)
}

func TestRegisterDefaultsToClientAndLowercasesEmail(t *testing.T) {
	var created *domain.User
	users := &mockUserRepository{
		CreateFunc: func(ctx context.Context, user *domain.User) error {
			user.ID = "user-1"
			created = user
			return nil
		},
	}
	svc := newTestAuthService(users)

	user, token, exp, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.COM ",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	require.NotNil(t, created)
	assert.NotEqual(t, "hunter22", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter22")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	svc := newTestAuthService(users)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw", Role: "superuser",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == "alice@example.com" {
				return &domain.User{
					ID:           "user-1",
					Email:        email,
					PasswordHash: string(hash),
					Role:         domain.RoleClient,
				}, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := newTestAuthService(users)

	_, _, _, wrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, _, _, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "whatever")

	// An attacker probing either case gets the exact same response.
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, wrongPassword))
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginSuccessIssuesParsableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{
				ID:           "user-1",
				Name:         "Alice",
				Email:        email,
				PasswordHash: string(hash),
				Role:         domain.RoleAgent,
			}, nil
		},
	}
	svc := newTestAuthService(users)

	user, token, _, err := svc.Login(context.Background(), "Alice@Example.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestCurrentUserNotFound(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})

	_, err := svc.CurrentUser(context.Background(), "ghost")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
