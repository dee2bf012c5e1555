package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"realones/internal/domain"
	"realones/internal/models"
	"realones/internal/testutil"

	"github.com/google/uuid"
)

func TestPostRepository_DeleteOwnedDropsReactions(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author, fan := uuid.New(), uuid.New()

	p := &models.Post{UserID: author, Content: "hi", PostType: domain.PostText, Visibility: domain.VisibilityCircle}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertReaction(ctx, &models.Reaction{PostID: p.ID, UserID: fan, Type: domain.ReactionHug}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertReaction(ctx, &models.Reaction{PostID: p.ID, UserID: fan, Type: domain.ReactionSad}); err != nil {
		t.Fatalf("second reaction by the same user: %v", err)
	}
	mine, err := repo.UserReactions(ctx, fan, []uuid.UUID{p.ID})
	if err != nil || mine[p.ID] != domain.ReactionSad {
		t.Fatalf("UserReactions = %v, %v", mine, err)
	}

	if err := repo.DeleteOwned(ctx, fan, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete by non-author err = %v", err)
	}
	if err := repo.DeleteOwned(ctx, author, p.ID); err != nil {
		t.Fatal(err)
	}
	var n int64
	db.Model(&models.Reaction{}).Count(&n)
	if n != 0 {
		t.Errorf("%d reactions left behind", n)
	}
	if _, err := repo.Get(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestPostRepository_ListByAuthors(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	base := testutil.Now()
	for i, author := range []uuid.UUID{a, b, c, a} {
		p := &models.Post{UserID: author, Content: "x", PostType: domain.PostText, Visibility: domain.VisibilityCircle,
			CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	list, err := repo.ListByAuthors(ctx, []uuid.UUID{a, b}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].UserID != a || !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Errorf("list = %+v", list)
	}
	if list, err := repo.ListByAuthors(ctx, nil, 10, 0); err != nil || len(list) != 0 {
		t.Errorf("no authors = %v, %v", list, err)
	}
}
