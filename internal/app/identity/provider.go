// internal/app/identity/provider.go
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/cartsync/internal/app/system/normalize"
	"github.com/dalemusser/cartsync/internal/app/system/validators"
	"github.com/dalemusser/cartsync/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MongoProvider stores email+password credentials in the "credentials"
// collection and mints a uuid uid per account. The unique index on email
// (see system/indexes) is what actually enforces one account per address;
// IsDup maps the violation to ErrEmailTaken.
type MongoProvider struct {
	c   *mongo.Collection
	log *zap.Logger
}

// NewMongoProvider wires the provider to its collection.
func NewMongoProvider(db *mongo.Database, logger *zap.Logger) *MongoProvider {
	return &MongoProvider{c: db.Collection("credentials"), log: logger}
}

// Register validates the credential pair, hashes the password, and inserts
// the credential. The returned principal carries the freshly minted uid.
func (p *MongoProvider) Register(ctx context.Context, email, password, displayName string) (Principal, error) {
	email = normalize.Email(email)
	displayName = normalize.Name(displayName)

	if !validators.ValidEmail(email) {
		return Principal{}, ErrInvalidEmail
	}
	if !validators.ValidPassword(password) {
		return Principal{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}

	cred := models.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := p.c.InsertOne(ctx, cred); err != nil {
		if wafflemongo.IsDup(err) {
			return Principal{}, ErrEmailTaken
		}
		return Principal{}, err
	}

	p.log.Info("credential registered", zap.String("uid", cred.UID))
	return Principal{UID: cred.UID, Email: cred.Email, DisplayName: cred.DisplayName}, nil
}

// Login looks up the credential by normalized email and compares the
// bcrypt hash. Unknown email and wrong password both return
// ErrInvalidCredentials so callers can't probe which addresses exist.
func (p *MongoProvider) Login(ctx context.Context, email, password string) (Principal, error) {
	email = normalize.Email(email)

	var cred models.Credential
	err := p.c.FindOne(ctx, bson.M{"email": email}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	return Principal{UID: cred.UID, Email: cred.Email, DisplayName: cred.DisplayName}, nil
}
