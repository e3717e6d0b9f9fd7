// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes that indicate multi-document transactions are not
// available on this deployment (standalone servers, some DocumentDB tiers).
const (
	codeIllegalOperation    = 20
	codeCommandNotSupported = 51
	codeOperationNotAllowed = 263
)

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions at all, as opposed to a transaction that
// failed and could be retried. Callers use it to fall back to
// single-document updates on standalone deployments.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotAllowed:
			return true
		}
	}

	// Driver and server wrap the condition in free-text errors in a few
	// places; match the known phrasings case-insensitively.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "session") {
		return true
	}
	if strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction") {
		return true
	}
	return false
}

// WithTransaction runs fn inside a session transaction on client.
// The callback must use the SessionContext it receives for every operation
// that should be part of the transaction.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
