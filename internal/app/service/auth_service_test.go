package service

import (
	"testing"
	"time"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminEmail = "admin@mail.com"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
		testAdminEmail,
	)
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Username:  "testuser",
		Password:  "supersecret",
		Phone:     "08123456789",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, tokens, err := authService.Register(registerInput("test@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestAuthService_Register_AdminEmailGetsAdminRole(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register(registerInput(testAdminEmail))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register(registerInput("dup@example.com"))
	require.NoError(t, err)

	user, tokens, err := authService.Register(registerInput("dup@example.com"))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Nil(t, user)
	assert.Nil(t, tokens)
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register(registerInput("login@example.com"))
	require.NoError(t, err)

	user, tokens, err := authService.Login("login@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register(registerInput("login@example.com"))
	require.NoError(t, err)

	_, _, err = authService.Login("login@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("missing@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUserByID_NotFound(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, err := authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, user)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register(registerInput("profile@example.com"))
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "New", "", "newname", "")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "User", updated.LastName)
	assert.Equal(t, "newname", updated.Username)
	assert.Equal(t, "08123456789", updated.Phone)
}
