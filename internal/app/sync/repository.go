// internal/app/sync/repository.go
//
// Package sync is the mediator between clients and the document store: it
// owns counter consistency, the live-query-to-stream bridging, and the
// pre/post-condition checks on every mutation. It holds no entity state of
// its own; the store is the single source of truth.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/cartsync/internal/app/identity"
	accountstore "github.com/dalemusser/cartsync/internal/app/store/accounts"
	itemstore "github.com/dalemusser/cartsync/internal/app/store/items"
	"github.com/dalemusser/cartsync/internal/app/system/sanitize"
	"github.com/dalemusser/cartsync/internal/app/system/validators"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repository is one client session's handle on the shared list. The shared
// backends (stores, identity provider) are injected once; the only mutable
// state is the signed-in principal, so a Repository is cheap to create per
// session.
type Repository struct {
	items    *itemstore.Store
	accounts *accountstore.Store
	idp      identity.Provider
	log      *zap.Logger

	mu        sync.RWMutex
	principal *identity.Principal
}

// New builds a Repository over explicitly injected collaborators.
func New(items *itemstore.Store, accounts *accountstore.Store, idp identity.Provider, logger *zap.Logger) *Repository {
	return &Repository{
		items:    items,
		accounts: accounts,
		idp:      idp,
		log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Authentication pass-through                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// CurrentPrincipal returns the active principal, if any. No side effects.
func (r *Repository) CurrentPrincipal() (identity.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.principal == nil {
		return identity.Principal{}, false
	}
	return *r.principal, true
}

// Register creates the identity-provider credential, then the account
// aggregate with counters at zero. The two writes are not atomic: a failed
// account write after a successful credential creation surfaces as a
// StoreError and leaves the credential behind.
func (r *Repository) Register(ctx context.Context, email, password, displayName string) (identity.Principal, error) {
	p, err := r.idp.Register(ctx, email, password, displayName)
	if err != nil {
		return identity.Principal{}, &AuthError{Err: err}
	}

	if _, err := r.accounts.Create(ctx, p.UID, p.Email, p.DisplayName); err != nil {
		r.log.Error("account document write failed after credential creation",
			zap.String("uid", p.UID), zap.Error(err))
		return identity.Principal{}, &StoreError{Op: "create account", Err: err}
	}

	r.setPrincipal(p)
	return p, nil
}

// Login delegates to the identity provider and records the session.
func (r *Repository) Login(ctx context.Context, email, password string) (identity.Principal, error) {
	p, err := r.idp.Login(ctx, email, password)
	if err != nil {
		return identity.Principal{}, &AuthError{Err: err}
	}
	r.setPrincipal(p)
	return p, nil
}

// Resume attaches an already-authenticated principal, the way a client
// restores a persisted session without re-entering credentials.
func (r *Repository) Resume(p identity.Principal) {
	r.setPrincipal(p)
}

// SignOut invalidates the local session. Idempotent.
func (r *Repository) SignOut() {
	r.mu.Lock()
	r.principal = nil
	r.mu.Unlock()
}

func (r *Repository) setPrincipal(p identity.Principal) {
	r.mu.Lock()
	r.principal = &p
	r.mu.Unlock()
}

/*─────────────────────────────────────────────────────────────────────────────*
| Live queries                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ObserveItems streams the full ordered list of items whose completion flag
// equals completed, re-emitted on every relevant change. Without a
// signed-in principal the stream closes immediately, emitting nothing.
func (r *Repository) ObserveItems(ctx context.Context, completed bool) *Subscription[[]models.Item] {
	if _, ok := r.CurrentPrincipal(); !ok {
		return closedSubscription[[]models.Item](nil)
	}

	watch := func(ctx context.Context) (changeIterator, error) {
		cs, err := r.items.Watch(ctx)
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	snapshot := func(ctx context.Context) ([]models.Item, error) {
		return r.items.ListByCompletion(ctx, completed)
	}
	return openSubscription(ctx, watch, snapshot)
}

// ObserveAccountStats streams the (added, completed) counter pair of the
// active principal's account, re-emitted on every change to that document.
func (r *Repository) ObserveAccountStats(ctx context.Context) *Subscription[models.Stats] {
	p, ok := r.CurrentPrincipal()
	if !ok {
		return closedSubscription[models.Stats](nil)
	}

	watch := func(ctx context.Context) (changeIterator, error) {
		cs, err := r.accounts.Watch(ctx, p.UID)
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	snapshot := func(ctx context.Context) (models.Stats, error) {
		acct, err := r.accounts.Get(ctx, p.UID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Stats{}, nil
		}
		if err != nil {
			return models.Stats{}, err
		}
		return models.Stats{Added: acct.ProductsAdded, Completed: acct.ProductsCompleted}, nil
	}
	return openSubscription(ctx, watch, snapshot)
}

// ObserveAccount streams the active principal's full account aggregate, or
// nil while the document is missing.
func (r *Repository) ObserveAccount(ctx context.Context) *Subscription[*models.Account] {
	p, ok := r.CurrentPrincipal()
	if !ok {
		return closedSubscription[*models.Account](nil)
	}

	watch := func(ctx context.Context) (changeIterator, error) {
		cs, err := r.accounts.Watch(ctx, p.UID)
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	snapshot := func(ctx context.Context) (*models.Account, error) {
		acct, err := r.accounts.Get(ctx, p.UID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return acct, nil
	}
	return openSubscription(ctx, watch, snapshot)
}

/*─────────────────────────────────────────────────────────────────────────────*
| One-shot reads                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Items returns the current snapshot of one side of the list without
// opening a listener.
func (r *Repository) Items(ctx context.Context, completed bool) ([]models.Item, error) {
	if _, ok := r.CurrentPrincipal(); !ok {
		return nil, &AuthError{Err: ErrNotSignedIn}
	}
	items, err := r.items.ListByCompletion(ctx, completed)
	if err != nil {
		return nil, &StoreError{Op: "list items", Err: err}
	}
	return items, nil
}

// SearchItems finds items whose name starts with q, case-insensitively.
func (r *Repository) SearchItems(ctx context.Context, q string) ([]models.Item, error) {
	if _, ok := r.CurrentPrincipal(); !ok {
		return nil, &AuthError{Err: ErrNotSignedIn}
	}
	items, err := r.items.SearchByName(ctx, q)
	if err != nil {
		return nil, &StoreError{Op: "search items", Err: err}
	}
	return items, nil
}

// Account returns the active principal's account aggregate.
func (r *Repository) Account(ctx context.Context) (*models.Account, error) {
	p, ok := r.CurrentPrincipal()
	if !ok {
		return nil, &AuthError{Err: ErrNotSignedIn}
	}
	acct, err := r.accounts.Get(ctx, p.UID)
	if err != nil {
		return nil, &StoreError{Op: "get account", Err: err}
	}
	return acct, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mutations                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// AddItem writes a new pending item attributed to the active principal and
// then bumps their items-added counter. A new item is always pending: any
// caller-supplied completion state is discarded.
//
// The counter bump is best-effort: if it fails the item write stands and
// the failure is only logged. Counters may drift from the item documents
// under partial failure; that gap is part of the contract.
func (r *Repository) AddItem(ctx context.Context, it models.Item) (models.Item, error) {
	p, ok := r.CurrentPrincipal()
	if !ok {
		return models.Item{}, &AuthError{Err: ErrNotSignedIn}
	}

	it.Name = sanitize.Text(it.Name)
	it.Quantity = sanitize.Text(it.Quantity)
	it.Category = sanitize.Text(it.Category)
	if !validators.ValidItemName(it.Name) {
		return models.Item{}, &ValidationError{Msg: "item name is required"}
	}
	if !validators.ValidItemField(it.Quantity) || !validators.ValidItemField(it.Category) {
		return models.Item{}, &ValidationError{Msg: "quantity/category too long"}
	}

	it.Completed = false
	it.CompletedBy = ""
	it.CompletedAt = nil
	it.CreatedBy = p.UID
	it.CreatedByEmail = p.Email
	it.Timestamp = time.Now().UTC()

	created, err := r.items.Insert(ctx, it)
	if err != nil {
		return models.Item{}, &StoreError{Op: "insert item", Err: err}
	}

	if err := r.accounts.AdjustCounters(ctx, p.UID, 1, 0); err != nil {
		r.log.Warn("items-added counter update failed; counter may drift",
			zap.String("uid", p.UID), zap.Error(err))
	}
	return created, nil
}

// UpdateItem applies the item's completion flag to the stored document.
// A no-op flag (already in the requested state) succeeds without writing.
// On the false→true transition the item records who completed it and when,
// and that principal's items-completed counter is bumped (best-effort);
// true→false removes the completion fields and adjusts no counter.
func (r *Repository) UpdateItem(ctx context.Context, it models.Item) error {
	if it.ID.IsZero() {
		return &ValidationError{Msg: "item is missing its store-assigned id"}
	}
	p, ok := r.CurrentPrincipal()
	if !ok {
		return &AuthError{Err: ErrNotSignedIn}
	}

	current, err := r.items.Get(ctx, it.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The item vanished under us (someone else deleted it or cleared
		// the list). The toggle has nothing to do; succeed quietly.
		return nil
	}
	if err != nil {
		return &StoreError{Op: "read item", Err: err}
	}

	if current.Completed == it.Completed {
		return nil
	}

	now := time.Now().UTC()
	if err := r.items.SetCompletion(ctx, it.ID, it.Completed, p.UID, now); err != nil {
		return &StoreError{Op: "update item", Err: err}
	}

	if it.Completed {
		if err := r.accounts.AdjustCounters(ctx, p.UID, 0, 1); err != nil {
			r.log.Warn("items-completed counter update failed; counter may drift",
				zap.String("uid", p.UID), zap.Error(err))
		}
	}
	return nil
}

// DeleteItem removes a single item. The store-assigned identifier is
// required; no store call is made without it. Counters are not adjusted.
func (r *Repository) DeleteItem(ctx context.Context, it models.Item) error {
	if it.ID.IsZero() {
		return &ValidationError{Msg: "item is missing its store-assigned id"}
	}
	if err := r.items.Delete(ctx, it.ID); err != nil {
		return &StoreError{Op: "delete item", Err: err}
	}
	return nil
}

// ClearCompleted batch-deletes every completed item and walks the
// per-completer tally down each account's items-completed counter,
// floored at zero. The decrements are best-effort, like every other
// counter adjustment.
func (r *Repository) ClearCompleted(ctx context.Context) error {
	if _, ok := r.CurrentPrincipal(); !ok {
		return &AuthError{Err: ErrNotSignedIn}
	}

	tally, err := r.items.DeleteAllCompleted(ctx)
	if err != nil {
		return &StoreError{Op: "clear completed", Err: err}
	}

	for uid, n := range tally {
		if err := r.accounts.AdjustCounters(ctx, uid, 0, -n); err != nil {
			r.log.Warn("items-completed counter decrement failed; counter may drift",
				zap.String("uid", uid), zap.Int64("cleared", n), zap.Error(err))
		}
	}
	return nil
}
