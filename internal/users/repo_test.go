package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
)

func setupUsersDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		avatar_url TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		is_active INTEGER NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := setupUsersDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user, err := repo.Create(ctx, &models.User{
		ID:           uuid.New(),
		Email:        "ava@example.com",
		PasswordHash: "hash",
		FirstName:    "Ava",
		LastName:     "Chen",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	})
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ava@example.com", byID.Email)

	// Email lookup is trimmed and case-folded.
	byEmail, err := repo.FindByEmail(ctx, "  AVA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestRepositoryEmailIsUnique(t *testing.T) {
	conn := setupUsersDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{
		ID: uuid.New(), Email: "ava@example.com", PasswordHash: "hash",
		FirstName: "Ava", LastName: "Chen", Role: enums.UserRoleUser, IsActive: true,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{
		ID: uuid.New(), Email: "ava@example.com", PasswordHash: "hash",
		FirstName: "Ava", LastName: "Chen", Role: enums.UserRoleUser, IsActive: true,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryUpdate(t *testing.T) {
	conn := setupUsersDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user, err := repo.Create(ctx, &models.User{
		ID: uuid.New(), Email: "ava@example.com", PasswordHash: "hash",
		FirstName: "Ava", LastName: "Chen", Role: enums.UserRoleUser, IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, user.ID, map[string]any{"first_name": "Avery", "phone": "+14155550100"}))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Avery", found.FirstName)
	require.NotNil(t, found.Phone)
	assert.Equal(t, "+14155550100", *found.Phone)
}
