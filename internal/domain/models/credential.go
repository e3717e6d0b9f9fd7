// internal/domain/models/credential.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential is an email+password login record owned by the identity
// provider. The uid it carries is the opaque, stable identity token every
// other collection references; the bcrypt hash never leaves this collection.
type Credential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UID          string             `bson:"uid"`
	Email        string             `bson:"email"` // normalized lowercase
	PasswordHash []byte             `bson:"password_hash"`
	DisplayName  string             `bson:"display_name"`
	CreatedAt    time.Time          `bson:"created_at"`
}
