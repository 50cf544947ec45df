package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/waxlog/waxlog/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// migrationNames lists migrations in apply order.
var migrationNames = []string{
	"000001_extensions",
	"000002_users",
	"000003_albums",
	"000004_reviews",
	"000005_lists",
	"000006_notifications",
}

// ResetSchema drops and recreates the full schema for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(migrationNames) - 1; i >= 0; i-- {
		downPath := filepath.Join(root, "migrations", migrationNames[i]+".down.sql")
		downSQL, err := os.ReadFile(downPath)
		if err != nil {
			return fmt.Errorf("read down migration: %w", err)
		}
		if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
			return fmt.Errorf("apply down migration %s: %w", migrationNames[i], err)
		}
	}

	for _, name := range migrationNames {
		upPath := filepath.Join(root, "migrations", name+".up.sql")
		upSQL, err := os.ReadFile(upPath)
		if err != nil {
			return fmt.Errorf("read up migration: %w", err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			return fmt.Errorf("apply up migration %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("user"),
		Email:        fmt.Sprintf("%s-%d@example.com", username, now.UnixNano()),
		Username:     fmt.Sprintf("%s-%d", username, now.UnixNano()),
		PasswordHash: "$2a$10$0000000000000000000000000000000000000000000000000000",
		AvatarURL:    "https://ui-avatars.com/api/?name=" + username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestAlbum creates a test album with sensible defaults.
func NewTestAlbum(t testing.TB, title string) *model.Album {
	t.Helper()
	now := time.Now().UTC()
	year := 2020
	return &model.Album{
		ID:          UniqueID("album"),
		Title:       title,
		Artist:      "Test Artist",
		ReleaseYear: &year,
		Genres:      []string{"rock"},
		CreatedAt:   now,
	}
}

// NewTestReview creates a review by user for album with sensible defaults.
func NewTestReview(t testing.TB, userID, albumID string) *model.Review {
	t.Helper()
	now := time.Now().UTC()
	return &model.Review{
		ID:          UniqueID("rev"),
		UserID:      userID,
		AlbumID:     albumID,
		Rating:      4,
		Body:        "solid record",
		EntryType:   model.EntryTypeReview,
		Tags:        []string{},
		ShareToFeed: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestDiaryEntry creates a diary entry matching a listen of album.
func NewTestDiaryEntry(t testing.TB, userID, albumID string) *model.DiaryEntry {
	t.Helper()
	now := time.Now().UTC()
	rating := 4.0
	return &model.DiaryEntry{
		ID:        UniqueID("diary"),
		UserID:    userID,
		AlbumID:   albumID,
		Rating:    &rating,
		Tags:      []string{},
		Format:    "digital",
		LoggedAt:  now,
		CreatedAt: now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
