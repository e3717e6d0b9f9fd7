// internal/app/sync/factory.go
package sync

import (
	"github.com/dalemusser/cartsync/internal/app/identity"
	accountstore "github.com/dalemusser/cartsync/internal/app/store/accounts"
	itemstore "github.com/dalemusser/cartsync/internal/app/store/items"
	"go.uber.org/zap"
)

// Factory hands out per-session Repositories over one shared set of
// backends. Each client session (an HTTP request, a websocket) gets its own
// Repository so one session's sign-in state never leaks into another's.
type Factory struct {
	items    *itemstore.Store
	accounts *accountstore.Store
	idp      identity.Provider
	log      *zap.Logger
}

// NewFactory wires the shared backends once at startup.
func NewFactory(items *itemstore.Store, accounts *accountstore.Store, idp identity.Provider, logger *zap.Logger) *Factory {
	return &Factory{items: items, accounts: accounts, idp: idp, log: logger}
}

// Session returns a fresh, signed-out Repository.
func (f *Factory) Session() *Repository {
	return New(f.items, f.accounts, f.idp, f.log)
}

// ForPrincipal returns a fresh Repository with p already signed in, the
// path taken when a cookie session vouches for the caller.
func (f *Factory) ForPrincipal(p identity.Principal) *Repository {
	r := f.Session()
	r.Resume(p)
	return r
}
