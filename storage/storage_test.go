package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testListing(college string) *Listing {
	return &Listing{
		CollegeID:       college,
		SellerName:      "Priya",
		SellerAvatarURL: "https://cdn.example.com/avatars/priya.png",
		HostelName:      "Block C",
		Title:           "Engineering mathematics textbook",
		Description:     "Third edition, light highlighting in chapters 2-4",
		Price:           450,
		Category:        "books",
		Condition:       "good",
		Images:          []string{"img1.jpg", "img2.jpg"},
		CreatedAt:       time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		ViewCount:       12,
	}
}

func TestCreateAndGetListing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l := testListing("iit-d")
	if err := db.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}
	if l.ID == "" {
		t.Fatal("CreateListing did not mint an ID")
	}
	if l.Status != "active" {
		t.Errorf("Status = %q, want active", l.Status)
	}

	got, err := db.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Title != l.Title {
		t.Errorf("Title = %q, want %q", got.Title, l.Title)
	}
	if got.Price != 450 {
		t.Errorf("Price = %f, want 450", got.Price)
	}
	if len(got.Images) != 2 || got.Images[0] != "img1.jpg" {
		t.Errorf("Images = %v, want round-tripped list", got.Images)
	}
	if got.ViewCount != 12 {
		t.Errorf("ViewCount = %d, want 12", got.ViewCount)
	}
	if !got.CreatedAt.Equal(l.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, l.CreatedAt)
	}
}

func TestGetListingNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetListing(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveListingUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l := testListing("iit-d")
	if err := db.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}

	l.Price = 350
	l.Images = []string{"new.jpg"}
	if err := db.SaveListing(ctx, l); err != nil {
		t.Fatalf("SaveListing update failed: %v", err)
	}

	got, err := db.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 350 {
		t.Errorf("Price = %f, want 350 after update", got.Price)
	}
	if len(got.Images) != 1 || got.Images[0] != "new.jpg" {
		t.Errorf("Images = %v, want [new.jpg]", got.Images)
	}
}

func TestListActiveByCollegeScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mine := testListing("iit-d")
	other := testListing("nit-k")
	sold := testListing("iit-d")
	sold.Status = "sold"

	for _, l := range []*Listing{mine, other, sold} {
		if err := db.CreateListing(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListActiveByCollege(ctx, "iit-d")
	if err != nil {
		t.Fatalf("ListActiveByCollege failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1 (college + status scoped)", len(got))
	}
	if got[0].ID != mine.ID {
		t.Errorf("got listing %q, want %q", got[0].ID, mine.ID)
	}
}

func TestListActiveByCollegeEmpty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.ListActiveByCollege(context.Background(), "empty-college")
	if err != nil {
		t.Fatalf("ListActiveByCollege failed: %v", err)
	}
	if got == nil {
		t.Fatal("got nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("got %d listings, want 0", len(got))
	}
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l := testListing("iit-d")
	if err := db.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := db.IncrementViews(ctx, l.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}

	got, err := db.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 15 {
		t.Errorf("ViewCount = %d, want 15", got.ViewCount)
	}

	if err := db.IncrementViews(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementViews(missing) = %v, want ErrNotFound", err)
	}
}

func TestSetStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l := testListing("iit-d")
	if err := db.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}

	if err := db.SetStatus(ctx, l.ID, "sold"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	got, err := db.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "sold" {
		t.Errorf("Status = %q, want sold", got.Status)
	}

	if err := db.SetStatus(ctx, "missing", "sold"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus(missing) = %v, want ErrNotFound", err)
	}
}

func TestExpireOlderThan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stale := testListing("iit-d")
	stale.CreatedAt = cutoff.Add(-48 * time.Hour)
	fresh := testListing("iit-d")
	fresh.CreatedAt = cutoff.Add(48 * time.Hour)
	staleSold := testListing("iit-d")
	staleSold.CreatedAt = cutoff.Add(-48 * time.Hour)
	staleSold.Status = "sold"

	for _, l := range []*Listing{stale, fresh, staleSold} {
		if err := db.CreateListing(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("ExpireOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d listings, want 1", n)
	}

	got, err := db.GetListing(ctx, stale.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "expired" {
		t.Errorf("stale listing status = %q, want expired", got.Status)
	}

	got, err = db.GetListing(ctx, staleSold.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "sold" {
		t.Errorf("sold listing status = %q, sweep must not touch sold listings", got.Status)
	}
}

func TestDeleteListing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l := testListing("iit-d")
	if err := db.CreateListing(ctx, l); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteListing(ctx, l.ID); err != nil {
		t.Fatalf("DeleteListing failed: %v", err)
	}
	if _, err := db.GetListing(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete, err = %v, want ErrNotFound", err)
	}

	if err := db.DeleteListing(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}
