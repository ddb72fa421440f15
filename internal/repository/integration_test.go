//go:build integration

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userboard/userboard-backend/internal/config"
	"github.com/userboard/userboard-backend/internal/log"
	"github.com/userboard/userboard-backend/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const migrationsDir = "../../sql"

// setupIntegration connects to the configured Postgres instance, applies
// migrations, and returns live repositories. Requires a reachable database
// at UB_POSTGRES_DSN.
func setupIntegration(t *testing.T) (*Users, *Posts, *store.Store) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	migrations, err := sql.Open("pgx", cfg.Database.PostgresDSN)
	require.NoError(t, err)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(migrations, migrationsDir))
	require.NoError(t, migrations.Close())

	db, err := store.Open(cfg, log.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping(context.Background()))

	return NewUsers(db, log.NewNop()), NewPosts(db, log.NewNop()), db
}

// createIntegrationUser inserts a user with unique username/email and
// registers a cascading cleanup.
func createIntegrationUser(t *testing.T, users *Users, phone string) *User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	u, err := users.Create(context.Background(), CreateUserParams{
		Name:     "Alice " + suffix,
		Username: "alice-" + suffix,
		Email:    fmt.Sprintf("alice-%s@example.com", suffix),
		Phone:    phone,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		users.Delete(context.Background(), u.ID)
	})
	return u
}

func TestUserRoundTripIntegration(t *testing.T) {
	users, _, _ := setupIntegration(t)
	ctx := context.Background()

	created := createIntegrationUser(t, users, "555-1234")

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Username, got.Username)
	assert.Equal(t, created.Email, got.Email)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "555-1234", *got.Phone)
	assert.Nil(t, got.Addresses)
}

func TestDuplicateUserIntegration(t *testing.T) {
	users, _, _ := setupIntegration(t)
	ctx := context.Background()

	existing := createIntegrationUser(t, users, "")

	_, err := users.Create(ctx, CreateUserParams{
		Name:     "Impostor",
		Username: existing.Username,
		Email:    fmt.Sprintf("other-%s@example.com", uuid.NewString()[:8]),
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = users.Create(ctx, CreateUserParams{
		Name:     "Impostor",
		Username: "other-" + uuid.NewString()[:8],
		Email:    existing.Email,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPostForeignKeyIntegration(t *testing.T) {
	_, posts, db := setupIntegration(t)
	ctx := context.Background()

	missingUser := uuid.NewString()
	_, err := posts.Create(ctx, CreatePostParams{
		UserID: missingUser,
		Title:  "Orphan",
		Body:   "Never stored",
	})
	assert.ErrorIs(t, err, ErrForeignKey)

	// The failed insert must not leave a row behind.
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1`, missingUser).Scan(&count))
	assert.Zero(t, count)
}

func TestUserCascadeDeleteIntegration(t *testing.T) {
	users, posts, db := setupIntegration(t)
	ctx := context.Background()

	owner := createIntegrationUser(t, users, "")

	now := nowRFC3339()
	_, err := db.ExecContext(ctx, `
		INSERT INTO addresses (id, user_id, street, state, city, zipcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), owner.ID, "123 Main St", "CA", "Springfield", "90210", now, now)
	require.NoError(t, err)

	first, err := posts.Create(ctx, CreatePostParams{UserID: owner.ID, Title: "First", Body: "one"})
	require.NoError(t, err)
	second, err := posts.Create(ctx, CreatePostParams{UserID: owner.ID, Title: "Second", Body: "two"})
	require.NoError(t, err)

	deleted, err := users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = users.GetByID(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = posts.ListByUser(ctx, owner.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = posts.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = posts.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var addresses int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM addresses WHERE user_id = $1`, owner.ID).Scan(&addresses))
	assert.Zero(t, addresses)
}
