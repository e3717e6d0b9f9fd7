// internal/domain/models/item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a single entry on the shared shopping list.
//
// NOTE:
//   - The store-assigned ObjectID is the only stable key for later
//     update/delete calls; it is attached to every item a live query emits.
//   - CompletedBy/CompletedAt are present on the document if and only if
//     Completed is true. They are attached on the false→true transition and
//     removed with $unset on true→false, so queries never see stale fields.
type Item struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Quantity       string             `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	Completed      bool               `bson:"completed" json:"completed"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	CreatedBy      string             `bson:"created_by" json:"created_by"`
	CreatedByEmail string             `bson:"created_by_email" json:"created_by_email"`
	CompletedBy    string             `bson:"completed_by,omitempty" json:"completed_by,omitempty"`
	CompletedAt    *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
