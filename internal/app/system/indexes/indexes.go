// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Index creation is idempotent; errors are
aggregated so every problem is visible at once and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureCredentials(ctx, db); err != nil {
		problems = append(problems, "credentials: "+err.Error())
	}
	if err := ensureItems(ctx, db); err != nil {
		problems = append(problems, "items: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureCredentials enforces one account per email address. The identity
// provider relies on this index to turn a duplicate insert into
// ErrEmailTaken.
func ensureCredentials(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("credentials").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetName("by_uid"),
		},
	})
	return err
}

// ensureItems backs the two hot item queries: the live list (completion
// flag + newest first) and the case-insensitive name search.
func ensureItems(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("items").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "completed", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_completion_newest"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("by_name_ci"),
		},
	})
	return err
}
