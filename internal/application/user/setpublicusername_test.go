package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/infrastructure/persistence/models"
	"github.com/openfun/ashley-sub000/internal/infrastructure/repository"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

func setupSetPublicUsername(t *testing.T) (*SetPublicUsernameUseCase, user.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}))

	userRepo := repository.NewUserRepository(db)
	return NewSetPublicUsernameUseCase(userRepo, logger.NewLogger()), userRepo
}

func createUser(t *testing.T, repo user.Repository, publicName string) *user.User {
	t.Helper()
	u, err := user.NewUser("moodle", "student-1", "student@example.com", publicName)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestSetPublicUsernameUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the name once", func(t *testing.T) {
		uc, repo := setupSetPublicUsername(t)
		u := createUser(t, repo, "")

		updated, err := uc.Execute(ctx, SetPublicUsernameCommand{UserID: u.ID(), Username: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.PublicUsername())

		saved, err := repo.GetByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "Alice", saved.PublicUsername())
	})

	t.Run("markup is stripped before saving", func(t *testing.T) {
		uc, repo := setupSetPublicUsername(t)
		u := createUser(t, repo, "")

		updated, err := uc.Execute(ctx, SetPublicUsernameCommand{UserID: u.ID(), Username: "<b>Alice</b>"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.PublicUsername())
	})

	t.Run("an existing name is final", func(t *testing.T) {
		uc, repo := setupSetPublicUsername(t)
		u := createUser(t, repo, "Alice")

		_, err := uc.Execute(ctx, SetPublicUsernameCommand{UserID: u.ID(), Username: "Eve"})
		require.Error(t, err)
		assert.True(t, errors.IsAppError(err))

		saved, err := repo.GetByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Equal(t, "Alice", saved.PublicUsername())
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		uc, _ := setupSetPublicUsername(t)

		_, err := uc.Execute(ctx, SetPublicUsernameCommand{UserID: 9999, Username: "Alice"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}
