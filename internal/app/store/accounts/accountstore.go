// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"time"

	"github.com/dalemusser/cartsync/internal/app/system/txn"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store wraps the "accounts" collection: one aggregate document per uid
// holding the profile and the two running counters. The single account
// document is the only contended resource in the system, so every counter
// mutation goes through AdjustCounters.
type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("accounts"), log: logger}
}

// Create inserts the account aggregate with counters at zero. Called once,
// at registration.
func (s *Store) Create(ctx context.Context, uid, email, displayName string) (models.Account, error) {
	acct := models.Account{
		UID:               uid,
		Email:             email,
		DisplayName:       displayName,
		CreatedAt:         time.Now().UTC(),
		ProductsAdded:     0,
		ProductsCompleted: 0,
	}
	if _, err := s.c.InsertOne(ctx, acct); err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

// Get loads an account by uid. Returns mongo.ErrNoDocuments if missing.
func (s *Store) Get(ctx context.Context, uid string) (*models.Account, error) {
	var acct models.Account
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// AdjustCounters applies (addedDelta, completedDelta) to one account's
// counters as a single atomic read-modify-write. Results are clamped at
// zero, and only the fields that changed are written back.
//
// Preferred path is a session transaction; on deployments without
// transaction support (standalone mongod) it falls back to an
// aggregation-pipeline update, which is still atomic for a single document.
//
// Isolation here guarantees concurrent adjustments on the same account
// never lose an update. It does NOT make the adjustment atomic with the
// item write that triggered it; callers treat it as best-effort.
func (s *Store) AdjustCounters(ctx context.Context, uid string, addedDelta, completedDelta int64) error {
	if addedDelta == 0 && completedDelta == 0 {
		return nil
	}

	client := s.c.Database().Client()
	err := txn.WithTransaction(ctx, client, func(sc mongo.SessionContext) error {
		return s.adjustInSession(sc, uid, addedDelta, completedDelta)
	})
	if err == nil {
		return nil
	}
	if !txn.IsNotSupported(err) {
		return err
	}

	s.log.Debug("transactions unsupported; using single-document counter update",
		zap.String("uid", uid))
	return s.adjustPipeline(ctx, uid, addedDelta, completedDelta)
}

func (s *Store) adjustInSession(sc mongo.SessionContext, uid string, addedDelta, completedDelta int64) error {
	var acct models.Account
	if err := s.c.FindOne(sc, bson.M{"_id": uid}).Decode(&acct); err != nil {
		return err
	}

	set := bson.M{}
	if addedDelta != 0 {
		set["products_added"] = clamp(acct.ProductsAdded + addedDelta)
	}
	if completedDelta != 0 {
		set["products_completed"] = clamp(acct.ProductsCompleted + completedDelta)
	}

	_, err := s.c.UpdateOne(sc, bson.M{"_id": uid}, bson.M{"$set": set})
	return err
}

// adjustPipeline is the no-transaction fallback: a pipeline update computes
// the clamped values server-side in one atomic document operation.
func (s *Store) adjustPipeline(ctx context.Context, uid string, addedDelta, completedDelta int64) error {
	set := bson.M{}
	if addedDelta != 0 {
		set["products_added"] = bson.M{"$max": bson.A{int64(0), bson.M{"$add": bson.A{"$products_added", addedDelta}}}}
	}
	if completedDelta != 0 {
		set["products_completed"] = bson.M{"$max": bson.A{int64(0), bson.M{"$add": bson.A{"$products_completed", completedDelta}}}}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, mongo.Pipeline{{{Key: "$set", Value: set}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Watch opens a change stream restricted to one account document.
func (s *Store) Watch(ctx context.Context, uid string) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": uid}}},
	}
	return s.c.Watch(ctx, pipeline)
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
