// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/cartsync/internal/app/identity"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for seeding test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// Principal returns a principal with a fresh uid. Nothing is persisted.
func (f *Fixtures) Principal(email, displayName string) identity.Principal {
	f.t.Helper()
	return identity.Principal{
		UID:         uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
	}
}

// CreateAccount inserts an account aggregate for p with the given counters.
func (f *Fixtures) CreateAccount(ctx context.Context, p identity.Principal, added, completed int64) models.Account {
	f.t.Helper()

	acct := models.Account{
		UID:               p.UID,
		Email:             p.Email,
		DisplayName:       p.DisplayName,
		CreatedAt:         time.Now().UTC(),
		ProductsAdded:     added,
		ProductsCompleted: completed,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return acct
}

// CreateItem inserts a pending item created by p.
func (f *Fixtures) CreateItem(ctx context.Context, p identity.Principal, name string) models.Item {
	f.t.Helper()

	it := models.Item{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Completed:      false,
		Timestamp:      time.Now().UTC(),
		CreatedBy:      p.UID,
		CreatedByEmail: p.Email,
	}
	if _, err := f.db.Collection("items").InsertOne(ctx, it); err != nil {
		f.t.Fatalf("failed to create test item: %v", err)
	}
	return it
}

// CreateCompletedItem inserts an item already completed by completer.
func (f *Fixtures) CreateCompletedItem(ctx context.Context, creator, completer identity.Principal, name string) models.Item {
	f.t.Helper()

	now := time.Now().UTC()
	it := models.Item{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Completed:      true,
		Timestamp:      now,
		CreatedBy:      creator.UID,
		CreatedByEmail: creator.Email,
		CompletedBy:    completer.UID,
		CompletedAt:    &now,
	}
	if _, err := f.db.Collection("items").InsertOne(ctx, it); err != nil {
		f.t.Fatalf("failed to create completed test item: %v", err)
	}
	return it
}
