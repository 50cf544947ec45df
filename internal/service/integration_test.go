//go:build integration

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
	"github.com/waxlog/waxlog/internal/testutil"
)

func newServiceEnv(t *testing.T) (context.Context, *repository.Repository, *metrics.InMemoryRecorder) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo, metrics.NewInMemory()
}

func seedServiceUserAlbum(ctx context.Context, t *testing.T, repo *repository.Repository) (*model.User, *model.Album) {
	t.Helper()
	user := testutil.NewTestUser(t, "svc")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	album := testutil.NewTestAlbum(t, "Spirit of Eden")
	if err := repo.CreateAlbum(ctx, album); err != nil {
		t.Fatalf("create album: %v", err)
	}
	return user, album
}

func TestReviewService_CreateWritesDiaryAndMetrics(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	user, album := seedServiceUserAlbum(ctx, t, repo)

	svc := NewReviewService(repo, rec)

	review, err := svc.Create(ctx, user.ID, CreateReviewInput{
		AlbumID:     album.ID,
		Rating:      4.5,
		Body:        "Slow, patient, perfect.",
		Tags:        []string{"post-rock"},
		ShareToFeed: true,
		Format:      "vinyl",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if review.EntryType != model.EntryTypeReview {
		t.Errorf("entry type = %q, want review", review.EntryType)
	}
	if review.Username != user.Username {
		t.Errorf("expected hydrated username, got %q", review.Username)
	}

	// The listen lands in the diary with the review back-reference.
	entries, err := repo.ListDiaryEntries(ctx, user.ID, repository.DiaryFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("list diary: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 diary entry, got %d", len(entries))
	}
	if entries[0].ReviewID == nil || *entries[0].ReviewID != review.ID {
		t.Errorf("diary entry not linked to review")
	}
	if entries[0].Format != "vinyl" {
		t.Errorf("format = %q", entries[0].Format)
	}
	if entries[0].Content != "Slow, patient, perfect." {
		t.Errorf("diary content = %q, want the review body", entries[0].Content)
	}
	if len(entries[0].Tags) != 1 || entries[0].Tags[0] != "post-rock" {
		t.Errorf("diary tags = %v, want the review tags", entries[0].Tags)
	}

	snap := rec.Snapshot()
	if snap.ReviewsCreated != 1 || snap.DiaryEntriesCreated != 1 {
		t.Errorf("metrics = %+v, want one review and one diary entry", snap)
	}
}

func TestReviewService_BodylessCreateIsLog(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	user, album := seedServiceUserAlbum(ctx, t, repo)

	svc := NewReviewService(repo, rec)
	review, err := svc.Create(ctx, user.ID, CreateReviewInput{
		AlbumID: album.ID,
		Rating:  3,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if review.EntryType != model.EntryTypeLog {
		t.Errorf("entry type = %q, want log", review.EntryType)
	}
}

func TestReviewService_OwnershipChecks(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	owner, album := seedServiceUserAlbum(ctx, t, repo)
	other := testutil.NewTestUser(t, "other")
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := NewReviewService(repo, rec)
	review, err := svc.Create(ctx, owner.ID, CreateReviewInput{AlbumID: album.ID, Rating: 4, Body: "solid"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	body := "hijacked"
	_, err = svc.Update(ctx, review.ID, &model.AuthContext{UserID: other.ID}, UpdateReviewInput{Body: &body})
	if !errors.Is(err, ErrNotReviewOwner) {
		t.Errorf("expected ErrNotReviewOwner, got %v", err)
	}

	// Admins may moderate.
	if err := svc.Delete(ctx, review.ID, &model.AuthContext{UserID: other.ID, IsAdmin: true}); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
}

func TestListService_LikeNotifiesOwnerOnce(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	owner, _ := seedServiceUserAlbum(ctx, t, repo)
	liker := testutil.NewTestUser(t, "liker")
	if err := repo.CreateUser(ctx, liker); err != nil {
		t.Fatalf("create user: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewListService(repo, logger, rec)

	list, err := svc.Create(ctx, owner.ID, "Quiet storms", "")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	actor := &model.AuthContext{UserID: liker.ID, Username: liker.Username}
	for i := 0; i < 2; i++ {
		if err := svc.Like(ctx, list.ID, actor); err != nil {
			t.Fatalf("like %d: %v", i, err)
		}
	}

	// Self-likes never notify.
	self := &model.AuthContext{UserID: owner.ID, Username: owner.Username}
	if err := svc.Like(ctx, list.ID, self); err != nil {
		t.Fatalf("self like: %v", err)
	}

	notifications, err := repo.ListNotifications(ctx, owner.ID, 0, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != model.NotificationListLike || n.RefID != list.ID {
		t.Errorf("unexpected notification: %+v", n)
	}
	if !strings.Contains(n.Body, liker.Username) {
		t.Errorf("body %q does not name the liker", n.Body)
	}
}

func TestListService_CollaboratorFlow(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	owner, album := seedServiceUserAlbum(ctx, t, repo)
	collab := testutil.NewTestUser(t, "collab")
	if err := repo.CreateUser(ctx, collab); err != nil {
		t.Fatalf("create user: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewListService(repo, logger, rec)

	list, err := svc.Create(ctx, owner.ID, "Shared shelf", "")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	// Outsider cannot add albums.
	if err := svc.AddAlbum(ctx, list.ID, collab.ID, album.ID); !errors.Is(err, ErrNotListEditor) {
		t.Errorf("expected ErrNotListEditor, got %v", err)
	}

	// Only the owner can invite.
	if _, err := svc.AddCollaborator(ctx, list.ID, collab.ID, owner.Username); !errors.Is(err, ErrNotListOwner) {
		t.Errorf("expected ErrNotListOwner, got %v", err)
	}

	if _, err := svc.AddCollaborator(ctx, list.ID, owner.ID, collab.Username); err != nil {
		t.Fatalf("add collaborator: %v", err)
	}

	// Collaborator can now edit and gets a notification.
	if err := svc.AddAlbum(ctx, list.ID, collab.ID, album.ID); err != nil {
		t.Errorf("collaborator add album: %v", err)
	}
	notifications, err := repo.ListNotifications(ctx, collab.ID, 0, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != model.NotificationCollaboratorAdded {
		t.Errorf("expected collaborator_added notification, got %+v", notifications)
	}

	// Collaborator removes themselves; owner-only actions stay guarded.
	if err := svc.RemoveCollaborator(ctx, list.ID, collab.ID, collab.ID); err != nil {
		t.Errorf("self removal: %v", err)
	}
	if err := svc.Delete(ctx, list.ID, collab.ID); !errors.Is(err, ErrNotListOwner) {
		t.Errorf("expected ErrNotListOwner on delete, got %v", err)
	}
}

func TestDiaryService_ContentAndTagsRoundTrip(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	user, album := seedServiceUserAlbum(ctx, t, repo)

	svc := NewDiaryService(repo, rec)
	rating := 3.5
	entry, err := svc.Log(ctx, user.ID, LogInput{
		AlbumID: album.ID,
		Rating:  &rating,
		Content: "First spin on the new turntable.",
		Tags:    []string{"vinyl-day"},
		Format:  "vinyl",
	})
	if err != nil {
		t.Fatalf("log listen: %v", err)
	}
	if entry.Content != "First spin on the new turntable." {
		t.Errorf("content = %q", entry.Content)
	}
	if len(entry.Tags) != 1 || entry.Tags[0] != "vinyl-day" {
		t.Errorf("tags = %v", entry.Tags)
	}

	newContent := "Second listen, even better."
	updated, err := svc.Update(ctx, entry.ID, user.ID, UpdateDiaryInput{
		Content: &newContent,
		Tags:    []string{"vinyl-day", "repeat"},
	})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.Content != newContent {
		t.Errorf("updated content = %q", updated.Content)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("updated tags = %v", updated.Tags)
	}

	// Untouched fields survive a partial update.
	if updated.Rating == nil || *updated.Rating != rating {
		t.Errorf("rating changed on partial update: %v", updated.Rating)
	}

	body, _, err := svc.Export(ctx, user.ID, "csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(body), newContent) {
		t.Errorf("export missing diary content")
	}
	if !strings.Contains(string(body), "vinyl-day;repeat") {
		t.Errorf("export missing diary tags")
	}
}

func TestUserService_RecommendedAllowsAnonymousViewer(t *testing.T) {
	ctx, repo, _ := newServiceEnv(t)
	user, _ := seedServiceUserAlbum(ctx, t, repo)

	svc := NewUserService(repo)

	// Anonymous browsing passes an empty viewer ID and sees everyone.
	users, err := svc.Recommended(ctx, "", 10)
	if err != nil {
		t.Fatalf("recommended (anonymous): %v", err)
	}
	found := false
	for _, u := range users {
		if u.ID == user.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("anonymous listing should include every user")
	}

	// An authenticated viewer is excluded from their own suggestions.
	users, err = svc.Recommended(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("recommended (authed): %v", err)
	}
	for _, u := range users {
		if u.ID == user.ID {
			t.Errorf("viewer should not be recommended to themselves")
		}
	}
}

func TestDiaryService_ExportCSV(t *testing.T) {
	ctx, repo, rec := newServiceEnv(t)
	user, album := seedServiceUserAlbum(ctx, t, repo)

	svc := NewDiaryService(repo, rec)
	rating := 4.0
	if _, err := svc.Log(ctx, user.ID, LogInput{AlbumID: album.ID, Rating: &rating, Format: "cd"}); err != nil {
		t.Fatalf("log listen: %v", err)
	}

	body, contentType, err := svc.Export(ctx, user.ID, "csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.Contains(string(body), album.Title) {
		t.Errorf("export missing album title")
	}

	if _, _, err := svc.Export(ctx, user.ID, "xml"); !errors.Is(err, ErrInvalidExportKind) {
		t.Errorf("expected ErrInvalidExportKind, got %v", err)
	}
}
