// internal/domain/models/account.go
package models

import "time"

// Account is the per-user profile plus the running counters shown on the
// profile screen. The document is keyed by the identity provider's uid, is
// created exactly once at registration, and is never deleted.
type Account struct {
	UID               string    `bson:"_id" json:"uid"`
	Email             string    `bson:"email" json:"email"`
	DisplayName       string    `bson:"display_name" json:"display_name"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	ProductsAdded     int64     `bson:"products_added" json:"products_added"`
	ProductsCompleted int64     `bson:"products_completed" json:"products_completed"`
}

// Stats is the (added, completed) counter pair pushed by the live account
// stats subscription.
type Stats struct {
	Added     int64 `json:"added"`
	Completed int64 `json:"completed"`
}
