package repository

import (
	"context"
	"errors"
	"testing"

	"realones/internal/domain"
	"realones/internal/models"
	"realones/internal/testutil"

	"github.com/google/uuid"
)

func TestCreditRepository_DedupIndex(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()
	user := uuid.New()

	src := "friend-1"
	first := &models.Credit{UserID: user, CreditType: domain.CreditFriendJoined, SourceID: &src, SourceKey: src}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &models.Credit{UserID: user, CreditType: domain.CreditFriendJoined, SourceID: &src, SourceKey: src}
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrUniquenessViolation) {
		t.Fatalf("duplicate Create err = %v, want ErrUniquenessViolation", err)
	}

	other := "friend-2"
	if err := repo.Create(ctx, &models.Credit{UserID: user, CreditType: domain.CreditFriendJoined, SourceID: &other, SourceKey: other}); err != nil {
		t.Fatalf("second source: %v", err)
	}

	if err := repo.Create(ctx, &models.Credit{UserID: user, CreditType: domain.CreditProfileComplete}); err != nil {
		t.Fatalf("profile_complete: %v", err)
	}
	if err := repo.Create(ctx, &models.Credit{UserID: user, CreditType: domain.CreditProfileComplete}); !errors.Is(err, domain.ErrUniquenessViolation) {
		t.Fatalf("second profile_complete err = %v", err)
	}

	n, err := repo.CountByUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountByUser = %d, want 3", n)
	}
}

func TestCreditRepository_ListAndExists(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()
	user, stranger := uuid.New(), uuid.New()

	if err := repo.Create(ctx, &models.Credit{UserID: user, CreditType: domain.CreditContactsImport}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, &models.Credit{UserID: stranger, CreditType: domain.CreditContactsImport}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserID != user {
		t.Errorf("ListByUser = %+v", list)
	}

	ok, err := repo.Exists(ctx, user, domain.CreditContactsImport, "")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = repo.Exists(ctx, user, domain.CreditFacebookImport, "")
	if err != nil || ok {
		t.Errorf("Exists(facebook) = %v, %v", ok, err)
	}
}

func TestPioneerStatusRepository_RaiseOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPioneerStatusRepository(db)
	ctx := context.Background()
	user := uuid.New()

	st, err := repo.Find(ctx, user)
	if err != nil || st != nil {
		t.Fatalf("Find on empty = %+v, %v", st, err)
	}

	now := testutil.Now()
	if newly, err := repo.Raise(ctx, user, 3, false, now); err != nil || newly {
		t.Fatalf("Raise(3) = %v, %v", newly, err)
	}
	if _, err := repo.Raise(ctx, user, 1, false, now); err != nil {
		t.Fatal(err)
	}
	st, _ = repo.Find(ctx, user)
	if st == nil || st.Credits != 3 {
		t.Fatalf("credits should stay at 3, got %+v", st)
	}

	newly, err := repo.Raise(ctx, user, 5, true, now)
	if err != nil || !newly {
		t.Fatalf("Raise(5, activated) = %v, %v", newly, err)
	}
	newly, err = repo.Raise(ctx, user, 6, true, now)
	if err != nil || newly {
		t.Fatalf("second activation should not be new: %v, %v", newly, err)
	}

	st, _ = repo.Find(ctx, user)
	if !st.IsActivated || st.ActivatedAt == nil || st.Credits != 6 {
		t.Errorf("status = %+v", st)
	}
}
