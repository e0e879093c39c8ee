package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/repository"
	"github.com/yukikurage/task-rest-api/internal/security"
	"github.com/yukikurage/task-rest-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db      *gorm.DB
	service *AuthService
	tokens  *security.TokenService
}

func setupAuthService(t *testing.T) authTestEnv {
	t.Helper()

	db := testutil.NewDB(t)
	tokens, err := security.NewTokenService([]byte("test-secret"), "HS256", 30*time.Minute)
	require.NoError(t, err)

	service := NewAuthService(
		repository.NewUserRepository(db),
		security.NewPasswordHasher(bcrypt.MinCost),
		tokens,
	)

	return authTestEnv{db: db, service: service, tokens: tokens}
}

func TestAuthService_Register(t *testing.T) {
	env := setupAuthService(t)

	user, err := env.service.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "pw1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthService(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = env.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Register_Concurrent(t *testing.T) {
	env := setupAuthService(t)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Register(context.Background(), RegisterInput{Email: "race@x.com", Password: "pw"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	env := setupAuthService(t)

	_, err := env.service.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: strings.Repeat("p", 73)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestAuthService_Login(t *testing.T) {
	env := setupAuthService(t)
	ctx := context.Background()

	registered, err := env.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	result, err := env.service.Login(ctx, LoginInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, result.User.ID)
	require.NotEmpty(t, result.AccessToken)

	principal, err := env.service.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.ID)
}

func TestAuthService_Login_Uniform(t *testing.T) {
	env := setupAuthService(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, wrongPassword := env.service.Login(ctx, LoginInput{Email: "a@x.com", Password: "nope"})
	_, unknownEmail := env.service.Login(ctx, LoginInput{Email: "b@x.com", Password: "pw1"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_Authenticate_Rejections(t *testing.T) {
	env := setupAuthService(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	expired, err := env.tokens.Issue(user.Email, 0)
	require.NoError(t, err)

	unknown, err := env.tokens.Issue("ghost@x.com", time.Minute)
	require.NoError(t, err)

	inactive := testutil.CreateUser(t, env.db, "inactive@x.com")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	inactiveToken, err := env.tokens.Issue(inactive.Email, time.Minute)
	require.NoError(t, err)

	tests := map[string]struct {
		token string
		cause error
	}{
		"missing":  {"", nil},
		"garbage":  {"garbage", security.ErrTokenInvalid},
		"expired":  {expired, security.ErrTokenExpired},
		"unknown":  {unknown, ErrUserNotFound},
		"inactive": {inactiveToken, ErrInactiveUser},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			principal, err := env.service.Authenticate(ctx, tt.token)
			assert.Nil(t, principal)
			assert.ErrorIs(t, err, ErrNotAuthenticated)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}
