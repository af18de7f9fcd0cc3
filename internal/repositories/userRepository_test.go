package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"chessgame/internal/database"
	"chessgame/internal/models"
	"chessgame/internal/utils"
)

func TestUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	if os.Getenv("SKIP_CONTAINER_TESTS") != "" {
		t.Skip("container tests disabled")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := database.New(uri, "chessgame_test")
	require.NoError(t, err)
	defer db.Close()

	userRepo := NewUserRepository(db)
	require.NoError(t, userRepo.EnsureIndexes(ctx))

	t.Run("Create and find user", func(t *testing.T) {
		user := &models.User{
			Username: "testuser",
			Email:    "test@example.com",
			Password: "hash",
		}

		createdUser, err := userRepo.Create(ctx, user)
		require.NoError(t, err)
		assert.False(t, createdUser.ID.IsZero())

		foundUser, err := userRepo.FindByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, createdUser.ID, foundUser.ID)
		assert.Equal(t, "hash", foundUser.Password)
	})

	t.Run("Duplicate email rejected", func(t *testing.T) {
		_, err := userRepo.Create(ctx, &models.User{Email: "test@example.com"})
		require.Error(t, err)
		assert.True(t, mongo.IsDuplicateKeyError(err))
	})

	t.Run("Unknown email", func(t *testing.T) {
		failures := utils.DBQueryErrorsTotal.WithLabelValues("findByEmail", "user")
		before := testutil.ToFloat64(failures)

		_, err := userRepo.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, before, testutil.ToFloat64(failures), "a missing user is not a query failure")
	})
}
