//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/testutil"
)

func newTestList(t *testing.T, ownerID string) *model.List {
	t.Helper()
	now := time.Now().UTC()
	return &model.List{
		ID:        testutil.UniqueID("list"),
		OwnerID:   ownerID,
		Title:     "Best of 2025",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIntegrationListRepository_CreateAndDetail(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, album := seedUserAndAlbum(t, ctx, repo)

	list := newTestList(t, user.ID)
	if err := repo.CreateList(ctx, list); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if err := repo.AddListAlbum(ctx, list.ID, album.ID); err != nil {
		t.Fatalf("AddListAlbum failed: %v", err)
	}

	detail, err := repo.GetListDetail(ctx, list.ID, user.ID)
	if err != nil {
		t.Fatalf("GetListDetail failed: %v", err)
	}
	if detail.OwnerUsername != user.Username {
		t.Errorf("expected hydrated owner, got %q", detail.OwnerUsername)
	}
	if len(detail.Albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(detail.Albums))
	}
	if detail.Albums[0].Position != 1 {
		t.Errorf("expected position 1, got %d", detail.Albums[0].Position)
	}
	if detail.Albums[0].Album == nil || detail.Albums[0].Album.Title != album.Title {
		t.Error("expected embedded album")
	}
}

func TestIntegrationListRepository_PositionsAppend(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, album := seedUserAndAlbum(t, ctx, repo)

	second := testutil.NewTestAlbum(t, "Second")
	if err := repo.CreateAlbum(ctx, second); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}

	list := newTestList(t, user.ID)
	if err := repo.CreateList(ctx, list); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if err := repo.AddListAlbum(ctx, list.ID, album.ID); err != nil {
		t.Fatalf("AddListAlbum failed: %v", err)
	}
	if err := repo.AddListAlbum(ctx, list.ID, second.ID); err != nil {
		t.Fatalf("AddListAlbum failed: %v", err)
	}

	// Duplicate add is rejected
	if err := repo.AddListAlbum(ctx, list.ID, album.ID); !errors.Is(err, ErrAlbumAlreadyInList) {
		t.Errorf("Expected ErrAlbumAlreadyInList, got: %v", err)
	}

	detail, err := repo.GetListDetail(ctx, list.ID, "")
	if err != nil {
		t.Fatalf("GetListDetail failed: %v", err)
	}
	if len(detail.Albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(detail.Albums))
	}
	if detail.Albums[1].Position != 2 {
		t.Errorf("expected second album at position 2, got %d", detail.Albums[1].Position)
	}

	if err := repo.RemoveListAlbum(ctx, list.ID, album.ID); err != nil {
		t.Fatalf("RemoveListAlbum failed: %v", err)
	}
	detail, err = repo.GetListDetail(ctx, list.ID, "")
	if err != nil {
		t.Fatalf("GetListDetail failed: %v", err)
	}
	if len(detail.Albums) != 1 {
		t.Errorf("expected 1 album after removal, got %d", len(detail.Albums))
	}
}

func TestIntegrationListRepository_LikesAndCollaborators(t *testing.T) {
	ctx, repo := newTestEnv(t)

	owner := testutil.NewTestUser(t, "owner")
	friend := testutil.NewTestUser(t, "friend")
	for _, u := range []*model.User{owner, friend} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	list := newTestList(t, owner.ID)
	if err := repo.CreateList(ctx, list); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	created, err := repo.LikeList(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("LikeList failed: %v", err)
	}
	if !created {
		t.Error("expected first like to be new")
	}
	created, err = repo.LikeList(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("LikeList (repeat) failed: %v", err)
	}
	if created {
		t.Error("expected repeat like to be a no-op")
	}

	liked, err := repo.ListLikedLists(ctx, friend.ID)
	if err != nil {
		t.Fatalf("ListLikedLists failed: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != list.ID {
		t.Errorf("expected the liked list, got %d", len(liked))
	}

	if err := repo.AddCollaborator(ctx, list.ID, friend.ID); err != nil {
		t.Fatalf("AddCollaborator failed: %v", err)
	}
	if err := repo.AddCollaborator(ctx, list.ID, friend.ID); !errors.Is(err, ErrCollaboratorExists) {
		t.Errorf("Expected ErrCollaboratorExists, got: %v", err)
	}

	ok, err := repo.IsCollaborator(ctx, list.ID, friend.ID)
	if err != nil {
		t.Fatalf("IsCollaborator failed: %v", err)
	}
	if !ok {
		t.Error("expected friend to be a collaborator")
	}

	// Collaborations show up in the friend's list overview
	lists, err := repo.ListUserLists(ctx, friend.ID, true)
	if err != nil {
		t.Fatalf("ListUserLists failed: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != list.ID {
		t.Errorf("expected collaboration in overview, got %d", len(lists))
	}

	// But not in the public owned-only view
	lists, err = repo.ListUserLists(ctx, friend.ID, false)
	if err != nil {
		t.Fatalf("ListUserLists (owned) failed: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("expected no owned lists, got %d", len(lists))
	}

	if err := repo.RemoveCollaborator(ctx, list.ID, friend.ID); err != nil {
		t.Fatalf("RemoveCollaborator failed: %v", err)
	}
	if err := repo.RemoveCollaborator(ctx, list.ID, friend.ID); !errors.Is(err, ErrCollaboratorNotFound) {
		t.Errorf("Expected ErrCollaboratorNotFound, got: %v", err)
	}
}

func TestIntegrationListRepository_DeleteCascades(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, album := seedUserAndAlbum(t, ctx, repo)

	list := newTestList(t, user.ID)
	if err := repo.CreateList(ctx, list); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if err := repo.AddListAlbum(ctx, list.ID, album.ID); err != nil {
		t.Fatalf("AddListAlbum failed: %v", err)
	}
	if _, err := repo.LikeList(ctx, list.ID, user.ID); err != nil {
		t.Fatalf("LikeList failed: %v", err)
	}

	if err := repo.DeleteList(ctx, list.ID); err != nil {
		t.Fatalf("DeleteList failed: %v", err)
	}
	if _, err := repo.GetListByID(ctx, list.ID); !errors.Is(err, ErrListNotFound) {
		t.Errorf("Expected ErrListNotFound, got: %v", err)
	}

	liked, err := repo.ListLikedLists(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListLikedLists failed: %v", err)
	}
	if len(liked) != 0 {
		t.Errorf("expected likes to cascade away, got %d", len(liked))
	}
}
