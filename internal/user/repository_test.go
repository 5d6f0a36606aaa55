package user_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/farmmarket/internal/config"
	"github.com/vasiliy-maslov/farmmarket/internal/db"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	cfg := &config.Config{}
	cfg.Postgres.URL = dsn
	cfg.Postgres.MigrationsPath = "../../migrations"
	if err := db.ApplyMigrations(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate test database")
	}

	var err error
	testDB, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to test database")
	}

	exitCode := m.Run()

	testDB.Close()
	os.Exit(exitCode)
}

func setup(t *testing.T) user.Repository {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	truncate := func() {
		_, err := testDB.Exec(context.Background(),
			"TRUNCATE TABLE order_items, orders, products, users RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate tables")
	}
	truncate()
	t.Cleanup(truncate)

	return user.NewRepository(testDB)
}

func fixtureUser(username string) *user.User {
	return &user.User{
		Username:     username,
		PasswordHash: "hashed_password",
		Email:        username + "@example.com",
		Role:         user.RoleBuyer,
		Active:       true,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo := setup(t)

	u := fixtureUser("alice")
	id, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.False(t, u.CreatedAt.IsZero())

	saved, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, u.Email, saved.Email)
	assert.Equal(t, user.RoleBuyer, saved.Role)
	assert.True(t, saved.Active)
}

func TestUserRepository_Create_UsernameExists(t *testing.T) {
	repo := setup(t)

	_, err := repo.Create(context.Background(), fixtureUser("alice"))
	require.NoError(t, err)

	dup := fixtureUser("alice")
	dup.Email = "other@example.com"
	_, err = repo.Create(context.Background(), dup)
	require.ErrorIs(t, err, user.ErrUsernameExists)
}

func TestUserRepository_Create_EmailExists(t *testing.T) {
	repo := setup(t)

	_, err := repo.Create(context.Background(), fixtureUser("alice"))
	require.NoError(t, err)

	dup := fixtureUser("bob")
	dup.Email = "alice@example.com"
	_, err = repo.Create(context.Background(), dup)
	require.ErrorIs(t, err, user.ErrEmailExists)
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	repo := setup(t)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	repo := setup(t)

	u := fixtureUser("alice")
	id, err := repo.Create(context.Background(), u)
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(context.Background(), id, false))

	saved, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, saved.Active)

	err = repo.SetActive(context.Background(), 9999, false)
	require.ErrorIs(t, err, user.ErrNotFound)
}
