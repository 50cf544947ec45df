//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/testutil"
)

func TestIntegrationAlbumRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	album := testutil.NewTestAlbum(t, "OK Computer")
	album.Genres = []string{"alternative rock", "art rock"}
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	retrieved, err := repo.GetAlbumByID(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetAlbumByID failed: %v", err)
	}
	if retrieved.Title != "OK Computer" {
		t.Errorf("Title mismatch: got %q", retrieved.Title)
	}
	if len(retrieved.Genres) != 2 {
		t.Errorf("expected 2 genres, got %d", len(retrieved.Genres))
	}
}

func TestIntegrationAlbumRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, err := repo.GetAlbumByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("Expected ErrAlbumNotFound, got: %v", err)
	}
}

func TestIntegrationAlbumRepository_DetailWithTracksAndStats(t *testing.T) {
	ctx, repo := newTestEnv(t)

	album := testutil.NewTestAlbum(t, "In Rainbows")
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	tracks := []*model.Track{
		{ID: testutil.UniqueID("t1"), AlbumID: album.ID, TrackNumber: 1, Title: "15 Step", Duration: "3:57"},
		{ID: testutil.UniqueID("t2"), AlbumID: album.ID, TrackNumber: 2, Title: "Bodysnatchers", Duration: "4:02"},
	}
	if err := repo.CreateTracks(ctx, tracks); err != nil {
		t.Fatalf("CreateTracks failed: %v", err)
	}

	user := testutil.NewTestUser(t, "listener")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	entry := testutil.NewTestDiaryEntry(t, user.ID, album.ID)
	rating := 5.0
	entry.Rating = &rating
	if err := repo.CreateDiaryEntry(ctx, entry); err != nil {
		t.Fatalf("CreateDiaryEntry failed: %v", err)
	}

	detail, err := repo.GetAlbumDetail(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetAlbumDetail failed: %v", err)
	}
	if len(detail.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(detail.Tracks))
	}
	if detail.Tracks[0].TrackNumber != 1 {
		t.Errorf("expected tracks in order, got first track %d", detail.Tracks[0].TrackNumber)
	}
	if detail.TotalLogs != 1 {
		t.Errorf("expected 1 log, got %d", detail.TotalLogs)
	}
	if detail.AvgRating != 5 {
		t.Errorf("expected avg rating 5, got %f", detail.AvgRating)
	}
}

func TestIntegrationAlbumRepository_Search(t *testing.T) {
	ctx, repo := newTestEnv(t)

	album := testutil.NewTestAlbum(t, "Kid A")
	album.Artist = "Radiohead"
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	other := testutil.NewTestAlbum(t, "Blue Train")
	other.Artist = "John Coltrane"
	if err := repo.CreateAlbum(ctx, other); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	results, err := repo.SearchAlbums(ctx, "radiohead", 10)
	if err != nil {
		t.Fatalf("SearchAlbums failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != album.ID {
		t.Errorf("expected %q first, got %q", album.ID, results[0].ID)
	}

	// Fuzzy match tolerates typos
	fuzzy, err := repo.SearchAlbums(ctx, "radiohed", 10)
	if err != nil {
		t.Fatalf("SearchAlbums (fuzzy) failed: %v", err)
	}
	if len(fuzzy) == 0 {
		t.Error("expected fuzzy match to find results")
	}
}

func TestIntegrationAlbumRepository_ByGenreAndGenres(t *testing.T) {
	ctx, repo := newTestEnv(t)

	a1 := testutil.NewTestAlbum(t, "Madvillainy")
	a1.Genres = []string{"Hip Hop", "abstract hip hop"}
	a2 := testutil.NewTestAlbum(t, "Horses")
	a2.Genres = []string{"punk"}
	if err := repo.CreateAlbum(ctx, a1); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if err := repo.CreateAlbum(ctx, a2); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	results, err := repo.ListAlbumsByGenre(ctx, "hip hop", 0, 10)
	if err != nil {
		t.Fatalf("ListAlbumsByGenre failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != a1.ID {
		t.Errorf("expected only the hip hop album, got %d results", len(results))
	}

	genres, err := repo.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres failed: %v", err)
	}
	if len(genres) != 3 {
		t.Errorf("expected 3 distinct genres, got %d: %v", len(genres), genres)
	}
}

func TestIntegrationAlbumRepository_ListWithTotal(t *testing.T) {
	ctx, repo := newTestEnv(t)

	for _, title := range []string{"A", "B", "C"} {
		if err := repo.CreateAlbum(ctx, testutil.NewTestAlbum(t, title)); err != nil {
			t.Fatalf("CreateAlbum failed: %v", err)
		}
	}

	albums, total, err := repo.ListAlbums(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListAlbums failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(albums) != 2 {
		t.Errorf("expected 2 albums on page, got %d", len(albums))
	}
}

func TestIntegrationAlbumRepository_RatingsDistribution(t *testing.T) {
	ctx, repo := newTestEnv(t)

	album := testutil.NewTestAlbum(t, "Loveless")
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	user := testutil.NewTestUser(t, "rater")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for _, rating := range []float64{5, 5, 4.5, 3, 0.5} {
		entry := testutil.NewTestDiaryEntry(t, user.ID, album.ID)
		r := rating
		entry.Rating = &r
		if err := repo.CreateDiaryEntry(ctx, entry); err != nil {
			t.Fatalf("CreateDiaryEntry failed: %v", err)
		}
	}

	dist, err := repo.GetRatingsDistribution(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetRatingsDistribution failed: %v", err)
	}
	if dist.Total != 5 {
		t.Fatalf("expected 5 ratings, got %d", dist.Total)
	}
	// 5, 5 and 4.5 all round to five stars
	if dist.Buckets[4] != 60 {
		t.Errorf("expected 60%% in five-star bucket, got %f", dist.Buckets[4])
	}
	if dist.Buckets[2] != 20 {
		t.Errorf("expected 20%% in three-star bucket, got %f", dist.Buckets[2])
	}
	if dist.Buckets[0] != 20 {
		t.Errorf("expected 20%% in one-star bucket, got %f", dist.Buckets[0])
	}
}

func TestIntegrationAlbumRepository_PopularWithFriends(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := testutil.NewTestUser(t, "alice")
	bob := testutil.NewTestUser(t, "bob")
	if err := repo.CreateUser(ctx, alice); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreateUser(ctx, bob); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	album := testutil.NewTestAlbum(t, "Voodoo")
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	// Bob logs the album; Alice follows Bob
	if err := repo.CreateDiaryEntry(ctx, testutil.NewTestDiaryEntry(t, bob.ID, album.ID)); err != nil {
		t.Fatalf("CreateDiaryEntry failed: %v", err)
	}

	results, err := repo.ListPopularWithFriends(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("ListPopularWithFriends failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results before following, got %d", len(results))
	}

	if err := repo.CreateFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}

	results, err = repo.ListPopularWithFriends(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("ListPopularWithFriends failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != album.ID {
		t.Errorf("expected the friend-logged album, got %d results", len(results))
	}
}
