//go:build integration

package seeder

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
	"github.com/waxlog/waxlog/internal/testutil"
)

func newSeederEnv(t *testing.T) (context.Context, *Seeder, *Repository, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	apiRepo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(apiRepo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, apiRepo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, apiRepo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := NewRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctx, New(logger, repo, nil, nil), repo, apiRepo
}

func TestInsertAlbumWithTracksAndKeys(t *testing.T) {
	ctx, _, repo, _ := newSeederEnv(t)

	year := 1971
	album := &model.Album{
		ID:          "11111111-1111-1111-1111-111111111111",
		Title:       "Blue",
		Artist:      "Joni Mitchell",
		ReleaseYear: &year,
		Genres:      []string{"folk"},
		CreatedAt:   time.Now().UTC(),
	}
	tracks := []*model.Track{
		{ID: "22222222-2222-2222-2222-222222222222", AlbumID: album.ID, TrackNumber: 1, Title: "All I Want", Duration: "3:34"},
	}
	if err := repo.InsertAlbumWithTracks(ctx, album, tracks); err != nil {
		t.Fatalf("insert: %v", err)
	}

	keys, err := repo.ExistingAlbumKeys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if _, ok := keys[keyFor("Blue", "Joni Mitchell", &year)]; !ok {
		t.Errorf("inserted album missing from key set: %v", keys)
	}
}

func TestDeduplicateMergesReferences(t *testing.T) {
	ctx, s, repo, apiRepo := newSeederEnv(t)

	user := testutil.NewTestUser(t, "dedupe")
	if err := apiRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	year := 1997
	kept := &model.Album{
		ID: "aaaaaaaa-0000-0000-0000-000000000001", Title: "OK Computer", Artist: "Radiohead",
		ReleaseYear: &year, CoverURL: "https://example.com/ok.jpg", Genres: []string{}, CreatedAt: time.Now().UTC(),
	}
	dup := &model.Album{
		ID: "aaaaaaaa-0000-0000-0000-000000000002", Title: " OK Computer ", Artist: "Radiohead",
		ReleaseYear: &year, Genres: []string{}, CreatedAt: time.Now().UTC().Add(time.Minute),
	}
	for _, a := range []*model.Album{kept, dup} {
		if err := repo.InsertAlbumWithTracks(ctx, a, nil); err != nil {
			t.Fatalf("insert album: %v", err)
		}
	}

	// References point at the duplicate.
	list := &model.List{ID: "bbbbbbbb-0000-0000-0000-000000000001", OwnerID: user.ID, Title: "Favorites"}
	if err := apiRepo.CreateList(ctx, list); err != nil {
		t.Fatalf("create list: %v", err)
	}
	if err := apiRepo.AddListAlbum(ctx, list.ID, dup.ID); err != nil {
		t.Fatalf("add list album: %v", err)
	}

	removed, err := s.Deduplicate(ctx)
	if err != nil {
		t.Fatalf("deduplicate: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	// The covered album survives and inherits the list reference.
	if _, err := apiRepo.GetAlbumByID(ctx, kept.ID); err != nil {
		t.Errorf("kept album gone: %v", err)
	}
	if _, err := apiRepo.GetAlbumByID(ctx, dup.ID); err == nil {
		t.Errorf("duplicate album still present")
	}
	detail, err := apiRepo.GetListDetail(ctx, list.ID, "")
	if err != nil {
		t.Fatalf("list detail: %v", err)
	}
	if len(detail.Albums) != 1 || detail.Albums[0].ID != kept.ID {
		t.Errorf("list reference not migrated: %+v", detail.Albums)
	}
}

func TestBackfillDiaryFromReviews(t *testing.T) {
	ctx, s, repo, apiRepo := newSeederEnv(t)

	user := testutil.NewTestUser(t, "backfill")
	if err := apiRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	album := testutil.NewTestAlbum(t, "Voodoo")
	if err := apiRepo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("create album: %v", err)
	}
	review := testutil.NewTestReview(t, user.ID, album.ID)
	entry := testutil.NewTestDiaryEntry(t, user.ID, album.ID)
	if err := apiRepo.CreateReview(ctx, review, entry); err != nil {
		t.Fatalf("create review: %v", err)
	}

	// Remove the diary entry so the review is orphaned.
	if err := apiRepo.DeleteDiaryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("delete diary entry: %v", err)
	}

	created, total, err := s.BackfillDiary(ctx, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if created != 1 || total != 1 {
		t.Fatalf("dry run = (%d, %d), want (1, 1)", created, total)
	}
	if entries, _ := apiRepo.ListDiaryEntries(ctx, user.ID, repository.DiaryFilter{}, 0, 10); len(entries) != 0 {
		t.Fatalf("dry run wrote entries")
	}

	created, _, err = s.BackfillDiary(ctx, false)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	entries, err := apiRepo.ListDiaryEntries(ctx, user.ID, repository.DiaryFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("list diary: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ReviewID == nil || *entries[0].ReviewID != review.ID {
		t.Errorf("entry not linked to review")
	}

	_ = repo // connection shared with the seeder
}

func TestSeedDemoAndEnsureAdmin(t *testing.T) {
	ctx, s, repo, apiRepo := newSeederEnv(t)

	if err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	demo, err := apiRepo.GetUserByEmail(ctx, "demo@waxlog.io")
	if err != nil {
		t.Fatalf("demo user missing: %v", err)
	}
	if demo.IsAdmin {
		t.Errorf("demo user should not be admin")
	}

	// Second run is a no-op.
	if err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("second seed demo: %v", err)
	}

	if err := s.EnsureAdmin(ctx, "ops@waxlog.io", "sekrit-pass-123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	admin, err := apiRepo.GetUserByEmail(ctx, "ops@waxlog.io")
	if err != nil {
		t.Fatalf("admin missing: %v", err)
	}
	if !admin.IsAdmin {
		t.Errorf("admin flag not set")
	}

	// Promotes instead of duplicating on the second run.
	if err := s.EnsureAdmin(ctx, "ops@waxlog.io", "sekrit-pass-123"); err != nil {
		t.Fatalf("second ensure admin: %v", err)
	}

	has, err := repo.HasUsers(ctx)
	if err != nil || !has {
		t.Errorf("HasUsers = (%v, %v)", has, err)
	}
}
