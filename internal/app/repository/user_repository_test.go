package repository

import (
	"testing"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewUserRepository(testDB)
}

func newTestUser(email, username string) *model.User {
	return &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)

	user := newTestUser("test@example.com", "testuser")

	err := repo.Create(user)
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)

	user := newTestUser("find@example.com", "findme")
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByEmail("find@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindAll(t *testing.T) {
	_, repo := setupUserTest(t)

	require.NoError(t, repo.Create(newTestUser("a@example.com", "a")))
	require.NoError(t, repo.Create(newTestUser("b@example.com", "b")))
	require.NoError(t, repo.Create(newTestUser("c@example.com", "c")))

	users, err := repo.FindAll()
	assert.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUserRepository_AddLoyaltyPoints(t *testing.T) {
	_, repo := setupUserTest(t)

	user := newTestUser("loyal@example.com", "loyal")
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.AddLoyaltyPoints(user.ID, 55))
	require.NoError(t, repo.AddLoyaltyPoints(user.ID, 10))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 65, found.LoyaltyPoint)
}

func TestUserRepository_Delete(t *testing.T) {
	_, repo := setupUserTest(t)

	user := newTestUser("gone@example.com", "gone")
	require.NoError(t, repo.Create(user))

	err := repo.Delete(user.ID)
	assert.NoError(t, err)

	_, err = repo.FindByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
