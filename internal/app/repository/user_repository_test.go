package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/db"
)

func setupUserTest(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return NewUserRepository(testDB)
}

func TestUserRepository_CreateNormalizesEmail(t *testing.T) {
	repo := setupUserTest(t)

	user := &model.User{Name: "Khách", Email: "  Khach@Example.COM ", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, "khach@example.com", user.Email)

	found, err := repo.FindByEmail("KHACH@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	repo := setupUserTest(t)

	first := &model.User{Name: "A", Email: "trung@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(first))

	dup := &model.User{Name: "B", Email: "Trung@Example.com", PasswordHash: "h"}
	err := repo.Create(dup)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}

func TestUserRepository_RoleByID(t *testing.T) {
	repo := setupUserTest(t)

	admin := &model.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "h", Role: model.RoleAdmin}
	require.NoError(t, repo.Create(admin))

	role, err := repo.RoleByID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)
}
