package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newFileTestDB is like newTestDB but backed by a file, so the pool can hold
// several connections at once.
func newFileTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("failed to create file test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func upsertTestUser(t *testing.T, db *DB, id, username string) {
	t.Helper()
	if _, err := db.UpsertUser(context.Background(), id, "Name", "Surname", username); err != nil {
		t.Fatalf("failed to upsert test user: %v", err)
	}
}

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUpsertUser_NewUser(t *testing.T) {
	db := newTestDB(t)

	res, err := db.UpsertUser(context.Background(), "u1", "Ann", "Lee", "annlee")
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res != model.UpsertInserted {
		t.Errorf("UpsertUser() = %v, want %v", res, model.UpsertInserted)
	}

	u, err := db.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Name != "Ann" || u.Surname != "Lee" || u.Username != "annlee" {
		t.Errorf("GetUser() = %+v, want Ann/Lee/annlee", u)
	}
	if u.RegistrationDate.IsZero() {
		t.Error("registration_date was not set")
	}
	if u.Deals != 0 || u.Positive != 0 || u.Negative != 0 || !u.Volume.IsZero() {
		t.Errorf("counters = %d/%d/%d/%s, want all zero", u.Deals, u.Positive, u.Negative, u.Volume)
	}
	if u.Wallet != "" {
		t.Errorf("Wallet = %q, want empty", u.Wallet)
	}
}

func TestUpsertUser_SameUsernameIsNoop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	upsertTestUser(t, db, "u1", "annlee")
	before, err := db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}

	res, err := db.UpsertUser(ctx, "u1", "Other", "Name", "annlee")
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res != model.UpsertUnchanged {
		t.Errorf("UpsertUser() = %v, want %v", res, model.UpsertUnchanged)
	}

	after, err := db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if after.Name != before.Name || after.Surname != before.Surname || after.Username != before.Username {
		t.Errorf("profile changed: before %+v, after %+v", before, after)
	}
	if !after.RegistrationDate.Equal(before.RegistrationDate) {
		t.Errorf("RegistrationDate changed: %v -> %v", before.RegistrationDate, after.RegistrationDate)
	}
}

func TestUpsertUser_NewUsernameUpdatesOnlyUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	upsertTestUser(t, db, "u1", "old_name")
	before, _ := db.GetUser(ctx, "u1")

	res, err := db.UpsertUser(ctx, "u1", "Changed", "Changed", "new_name")
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res != model.UpsertUsernameUpdated {
		t.Errorf("UpsertUser() = %v, want %v", res, model.UpsertUsernameUpdated)
	}

	after, _ := db.GetUser(ctx, "u1")
	if after.Username != "new_name" {
		t.Errorf("Username = %q, want %q", after.Username, "new_name")
	}
	if after.Name != before.Name || after.Surname != before.Surname {
		t.Errorf("name/surname changed: %q %q", after.Name, after.Surname)
	}
	if !after.RegistrationDate.Equal(before.RegistrationDate) {
		t.Errorf("RegistrationDate changed: %v -> %v", before.RegistrationDate, after.RegistrationDate)
	}
}

func TestUpsertUser_EmptyUsernameClearsStoredOne(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	upsertTestUser(t, db, "u1", "annlee")

	res, err := db.UpsertUser(ctx, "u1", "", "", "")
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res != model.UpsertUsernameUpdated {
		t.Errorf("UpsertUser() = %v, want %v", res, model.UpsertUsernameUpdated)
	}

	u, _ := db.GetUser(ctx, "u1")
	if u.Username != "" {
		t.Errorf("Username = %q, want empty", u.Username)
	}
}

// =========================================================================
// GET / WALLET TESTS
// =========================================================================

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUser(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateWallet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	upsertTestUser(t, db, "u1", "annlee")

	if err := db.UpdateWallet(ctx, "u1", "UQBwallet"); err != nil {
		t.Fatalf("UpdateWallet() error = %v", err)
	}
	if err := db.UpdateWallet(ctx, "u1", "UQBsecond"); err != nil {
		t.Fatalf("UpdateWallet() second error = %v", err)
	}

	u, _ := db.GetUser(ctx, "u1")
	if u.Wallet != "UQBsecond" {
		t.Errorf("Wallet = %q, want %q", u.Wallet, "UQBsecond")
	}
}

func TestUpdateWallet_UnknownUserIsNotAnError(t *testing.T) {
	db := newTestDB(t)

	if err := db.UpdateWallet(context.Background(), "ghost", "UQBwallet"); err != nil {
		t.Fatalf("UpdateWallet() error = %v, want nil", err)
	}

	if _, err := db.GetUser(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateWallet() must not create users, GetUser() error = %v", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	upsertTestUser(t, db, "u1", "annlee")
	db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer db.Close()

	u, err := db.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser() after reopen error = %v", err)
	}
	if u.Username != "annlee" {
		t.Errorf("Username = %q, want %q", u.Username, "annlee")
	}
}

func TestPing(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping() on a closed database should fail")
	}
}
