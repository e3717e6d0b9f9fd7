package sync_test

import (
	"testing"

	"github.com/dalemusser/cartsync/internal/app/identity"
	accountstore "github.com/dalemusser/cartsync/internal/app/store/accounts"
	itemstore "github.com/dalemusser/cartsync/internal/app/store/items"
	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/indexes"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"github.com/dalemusser/cartsync/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) (*sync.Repository, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	repo := sync.New(
		itemstore.New(db),
		accountstore.New(db, logger),
		identity.NewMongoProvider(db, logger),
		logger,
	)
	return repo, db
}

func counters(t *testing.T, db *mongo.Database, uid string) (int64, int64) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var acct models.Account
	if err := db.Collection("accounts").FindOne(ctx, bson.M{"_id": uid}).Decode(&acct); err != nil {
		t.Fatalf("failed to load account %s: %v", uid, err)
	}
	return acct.ProductsAdded, acct.ProductsCompleted
}

func TestRegister_CreatesAccountWithZeroCounters(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.UID == "" {
		t.Fatal("expected a minted uid")
	}

	if got, ok := repo.CurrentPrincipal(); !ok || got.UID != p.UID {
		t.Error("expected the new principal to be signed in")
	}

	added, completed := counters(t, db, p.UID)
	if added != 0 || completed != 0 {
		t.Errorf("fresh counters = {%d,%d}, want {0,0}", added, completed)
	}
}

func TestRegister_DuplicateEmailIsAuthError(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The unique index is what detects the duplicate.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := repo.Register(ctx, "ana@example.com", "secret2", "Other Ana")
	if !sync.IsAuth(err) {
		t.Errorf("duplicate register returned %v, want an AuthError", err)
	}
}

func TestLogin_WrongPasswordIsAuthError(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	repo.SignOut()

	if _, err := repo.Login(ctx, "ana@example.com", "wrong-pass"); !sync.IsAuth(err) {
		t.Errorf("bad login returned %v, want an AuthError", err)
	}
	if _, ok := repo.CurrentPrincipal(); ok {
		t.Error("failed login must not sign anyone in")
	}
}

func TestSignOut_IsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	repo.SignOut()
	repo.SignOut()
	if _, ok := repo.CurrentPrincipal(); ok {
		t.Error("expected no principal after sign-out")
	}
}

func TestAddItem_RequiresPrincipal(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := repo.AddItem(ctx, models.Item{Name: "Milk"})
	if !sync.IsAuth(err) {
		t.Errorf("AddItem without a principal returned %v, want an AuthError", err)
	}

	n, err := db.Collection("items").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no item documents, found %d", n)
	}
}

func TestAddItem_ForcesPendingAndIncrementsCounter(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// A caller-supplied completion state must be discarded.
	created, err := repo.AddItem(ctx, models.Item{Name: "Milk", Completed: true, CompletedBy: "someone"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected a store-assigned id on the created item")
	}
	if created.Completed {
		t.Error("new item must be pending regardless of caller input")
	}
	if created.CreatedBy != p.UID || created.CreatedByEmail != p.Email {
		t.Error("item missing creator attribution")
	}

	for _, name := range []string{"Eggs", "Bread"} {
		if _, err := repo.AddItem(ctx, models.Item{Name: name}); err != nil {
			t.Fatalf("AddItem(%s) failed: %v", name, err)
		}
	}

	added, completed := counters(t, db, p.UID)
	if added != 3 || completed != 0 {
		t.Errorf("counters after 3 adds = {%d,%d}, want {3,0}", added, completed)
	}
}

func TestUpdateItem_MissingIDIsValidationError(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := repo.UpdateItem(ctx, models.Item{Name: "Milk"}); !sync.IsValidation(err) {
		t.Errorf("UpdateItem without id returned %v, want a ValidationError", err)
	}
}

func TestUpdateItem_ToggleLifecycle(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	created, err := repo.AddItem(ctx, models.Item{Name: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// false → true: completion fields attached, completed counter bumped.
	created.Completed = true
	if err := repo.UpdateItem(ctx, created); err != nil {
		t.Fatalf("UpdateItem(complete) failed: %v", err)
	}

	var raw bson.M
	if err := db.Collection("items").FindOne(ctx, bson.M{"_id": created.ID}).Decode(&raw); err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if raw["completed"] != true {
		t.Error("expected completed=true")
	}
	if raw["completed_by"] != p.UID {
		t.Errorf("completed_by = %v, want %s", raw["completed_by"], p.UID)
	}
	if _, present := raw["completed_at"]; !present {
		t.Error("expected completed_at to be present on a completed item")
	}

	if _, completed := counters(t, db, p.UID); completed != 1 {
		t.Errorf("completed counter = %d, want 1", completed)
	}

	// Same value again: silent success, counters untouched.
	if err := repo.UpdateItem(ctx, created); err != nil {
		t.Fatalf("no-op UpdateItem failed: %v", err)
	}
	if _, completed := counters(t, db, p.UID); completed != 1 {
		t.Errorf("completed counter after no-op toggle = %d, want 1", completed)
	}

	// true → false: completion fields removed, not nulled; no decrement.
	created.Completed = false
	if err := repo.UpdateItem(ctx, created); err != nil {
		t.Fatalf("UpdateItem(uncomplete) failed: %v", err)
	}

	raw = bson.M{}
	if err := db.Collection("items").FindOne(ctx, bson.M{"_id": created.ID}).Decode(&raw); err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if _, present := raw["completed_by"]; present {
		t.Error("completed_by must be absent after un-completing, not null")
	}
	if _, present := raw["completed_at"]; present {
		t.Error("completed_at must be absent after un-completing, not null")
	}
	if _, completed := counters(t, db, p.UID); completed != 1 {
		t.Errorf("completed counter after un-toggle = %d, want 1 (decrements only on clear)", completed)
	}
}

func TestDeleteItem_MissingIDIsValidationError(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := repo.AddItem(ctx, models.Item{Name: "Milk"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if err := repo.DeleteItem(ctx, models.Item{Name: "Milk"}); !sync.IsValidation(err) {
		t.Errorf("DeleteItem without id returned %v, want a ValidationError", err)
	}

	n, err := db.Collection("items").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the list untouched (1 item), found %d", n)
	}
}

func TestClearCompleted_SharedListScenario(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Principal A registers, adds "Milk", completes it.
	a, err := repo.Register(ctx, "a@example.com", "secret1", "A")
	if err != nil {
		t.Fatalf("Register(A) failed: %v", err)
	}
	milk, err := repo.AddItem(ctx, models.Item{Name: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	milk.Completed = true
	if err := repo.UpdateItem(ctx, milk); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if added, completed := counters(t, db, a.UID); added != 1 || completed != 1 {
		t.Fatalf("A's counters = {%d,%d}, want {1,1}", added, completed)
	}

	// Principal B, on a separate session, clears the completed list.
	repoB, _ := sharedSessionRepo(t, db)
	b, err := repoB.Register(ctx, "b@example.com", "secret1", "B")
	if err != nil {
		t.Fatalf("Register(B) failed: %v", err)
	}
	if err := repoB.ClearCompleted(ctx); err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}

	n, err := db.Collection("items").CountDocuments(ctx, bson.M{"completed": true})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("completed list should be empty, found %d items", n)
	}

	// A's completed counter returns to 0; B, who completed nothing, is
	// unchanged.
	if _, completed := counters(t, db, a.UID); completed != 0 {
		t.Errorf("A's completed counter = %d, want 0", completed)
	}
	if added, completed := counters(t, db, b.UID); added != 0 || completed != 0 {
		t.Errorf("B's counters = {%d,%d}, want {0,0}", added, completed)
	}
}

func TestClearCompleted_CounterFlooredAtZero(t *testing.T) {
	repo, db := newTestRepo(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// An account whose completed counter already drifted to zero while a
	// completed item still carries their attribution.
	stale := fixtures.Principal("stale@example.com", "Stale")
	fixtures.CreateAccount(ctx, stale, 0, 0)
	fixtures.CreateCompletedItem(ctx, stale, stale, "Old cheese")

	if _, err := repo.Register(ctx, "caller@example.com", "secret1", "Caller"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := repo.ClearCompleted(ctx); err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}

	if _, completed := counters(t, db, stale.UID); completed != 0 {
		t.Errorf("completed counter = %d, want 0 (never negative)", completed)
	}
}

func TestObserveItems_RequiresPrincipal(t *testing.T) {
	repo, _ := newTestRepo(t)

	sub := repo.ObserveItems(t.Context(), false)
	if _, ok := <-sub.Updates(); ok {
		t.Error("unauthenticated subscription delivered a value")
	}
	if err := sub.Err(); err != nil {
		t.Errorf("unauthenticated subscription Err = %v, want nil", err)
	}
}

func TestObserveItems_EmitsSnapshots(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sub := repo.ObserveItems(ctx, false)
	defer sub.Cancel()

	first, ok := <-sub.Updates()
	if !ok {
		testutil.RequireChangeStreams(t, sub.Err())
		t.Fatal("stream closed before the initial snapshot")
	}
	if len(first) != 0 {
		t.Errorf("initial pending snapshot has %d items, want 0", len(first))
	}

	if _, err := repo.AddItem(ctx, models.Item{Name: "Milk"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	snap, ok := <-sub.Updates()
	if !ok {
		t.Fatalf("stream closed unexpectedly: %v", sub.Err())
	}
	if len(snap) != 1 || snap[0].Name != "Milk" {
		t.Errorf("snapshot after add = %+v, want one item named Milk", snap)
	}
	if snap[0].ID.IsZero() {
		t.Error("emitted item is missing the store-assigned id")
	}
}

// sharedSessionRepo builds a second Repository over the same database,
// standing in for another client session on the shared list.
func sharedSessionRepo(t *testing.T, db *mongo.Database) (*sync.Repository, *mongo.Database) {
	t.Helper()
	logger := zap.NewNop()
	repo := sync.New(
		itemstore.New(db),
		accountstore.New(db, logger),
		identity.NewMongoProvider(db, logger),
		logger,
	)
	return repo, db
}
