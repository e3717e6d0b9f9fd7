package identity_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/cartsync/internal/app/identity"
	"github.com/dalemusser/cartsync/internal/app/system/indexes"
	"github.com/dalemusser/cartsync/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestRegister_MintsUIDAndNormalizesEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := provider.Register(ctx, "  Ana@Example.COM ", "secret1", "  Ana   García ")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.UID == "" {
		t.Error("expected a minted uid")
	}
	if p.Email != "ana@example.com" {
		t.Errorf("email = %q, want normalized form", p.Email)
	}
	if p.DisplayName != "Ana García" {
		t.Errorf("display name = %q, want collapsed form", p.DisplayName)
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := provider.Register(ctx, "not-an-email", "secret1", "Ana"); !errors.Is(err, identity.ErrInvalidEmail) {
		t.Errorf("bad email returned %v, want ErrInvalidEmail", err)
	}
	if _, err := provider.Register(ctx, "ana@example.com", "123", "Ana"); !errors.Is(err, identity.ErrWeakPassword) {
		t.Errorf("short password returned %v, want ErrWeakPassword", err)
	}

	// Neither attempt may leave a credential behind.
	n, err := db.Collection("credentials").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("found %d credentials after rejected registrations, want 0", n)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("index setup failed: %v", err)
	}

	if _, err := provider.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	// Same address with different case still collides.
	if _, err := provider.Register(ctx, "ANA@example.com", "secret2", "Ana Two"); !errors.Is(err, identity.ErrEmailTaken) {
		t.Errorf("duplicate register returned %v, want ErrEmailTaken", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	registered, err := provider.Register(ctx, "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	loggedIn, err := provider.Login(ctx, "Ana@Example.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.UID != registered.UID {
		t.Errorf("login uid = %s, want the registered uid %s", loggedIn.UID, registered.UID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := provider.Register(ctx, "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown address must be indistinguishable.
	_, wrongPass := provider.Login(ctx, "ana@example.com", "nope-nope")
	_, unknown := provider.Login(ctx, "ghost@example.com", "secret1")

	if !errors.Is(wrongPass, identity.ErrInvalidCredentials) {
		t.Errorf("wrong password returned %v, want ErrInvalidCredentials", wrongPass)
	}
	if !errors.Is(unknown, identity.ErrInvalidCredentials) {
		t.Errorf("unknown account returned %v, want ErrInvalidCredentials", unknown)
	}
}
