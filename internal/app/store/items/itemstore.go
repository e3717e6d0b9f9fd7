// internal/app/store/items/itemstore.go
package itemstore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/cartsync/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the shared "items" collection. The list is shared by every
// account: any authenticated principal may read or mutate any item, with
// attribution kept on the document.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("items")}
}

// Insert writes a new item and returns it with the store-assigned ID.
// NameCI is derived here so every writer produces the same folded form.
func (s *Store) Insert(ctx context.Context, it models.Item) (models.Item, error) {
	it.ID = primitive.NewObjectID()
	it.NameCI = text.Fold(it.Name)
	if it.Timestamp.IsZero() {
		it.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// Get loads a single item by ID. Returns mongo.ErrNoDocuments if missing.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var it models.Item
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

// SetCompletion flips the completion flag. On false→true the completer
// attribution fields are set; on true→false they are removed with $unset so
// no stale completed_by/completed_at fields survive on pending items.
func (s *Store) SetCompletion(ctx context.Context, id primitive.ObjectID, completed bool, completedBy string, completedAt time.Time) error {
	var update bson.M
	if completed {
		update = bson.M{"$set": bson.M{
			"completed":    true,
			"completed_by": completedBy,
			"completed_at": completedAt,
		}}
	} else {
		update = bson.M{
			"$set":   bson.M{"completed": false},
			"$unset": bson.M{"completed_by": "", "completed_at": ""},
		}
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Delete removes a single item. Deleting an already-deleted item is not an
// error; the list may have changed under the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByCompletion returns all items with the given completion flag,
// newest first. This is the snapshot the live item query re-emits on every
// relevant change.
func (s *Store) ListByCompletion(ctx context.Context, completed bool) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"completed": completed}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchByName does a case-insensitive prefix search over the folded name.
func (s *Store) SearchByName(ctx context.Context, q string) ([]models.Item, error) {
	folded := text.Fold(q)
	filter := bson.M{"name_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(folded)}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteAllCompleted removes every completed item in one batch and returns
// how many of the removed items each account had completed, keyed by uid.
// The query and the delete are two steps: an item completed between them is
// left alone (it was not in the queried set), which matches the
// last-write-wins posture of the rest of the list.
func (s *Store) DeleteAllCompleted(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Find(ctx, bson.M{"completed": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Item
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	tally := make(map[string]int64)
	if len(docs) == 0 {
		return tally, nil
	}

	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		if d.CompletedBy != "" {
			tally[d.CompletedBy]++
		}
		writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": d.ID}))
	}

	if _, err := s.c.BulkWrite(ctx, writes); err != nil {
		return nil, err
	}
	return tally, nil
}

// Watch opens a change stream over the whole items collection. The caller
// re-queries its own filtered snapshot per event, so no server-side change
// filter is applied here (a filter on the completion flag would miss the
// deletes and the transitions out of the watched set).
func (s *Store) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	return s.c.Watch(ctx, mongo.Pipeline{})
}
