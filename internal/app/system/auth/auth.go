// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/cartsync/internal/app/identity"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey      = "is_authenticated"
	uidKey         = "uid"
	emailKey       = "email"
	displayNameKey = "display_name"
)

type ctxKey string

const currentPrincipalKey ctxKey = "currentPrincipal"

// CurrentPrincipal returns the signed-in principal from the request
// context plus a "found?" flag.
func CurrentPrincipal(r *http.Request) (identity.Principal, bool) {
	p, ok := r.Context().Value(currentPrincipalKey).(identity.Principal)
	return p, ok
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie session store. It is constructed once in
// BuildHandler and passed to the features that need it; there is no global.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. An empty key is rejected in
// production; in dev a random key is generated (sessions then reset on
// every restart, which is fine for local work).
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
		}
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("session key not configured; generated a dev-only key")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SignIn records the principal in the cookie session.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, p identity.Principal) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[uidKey] = p.UID
	sess.Values[emailKey] = p.Email
	sess.Values[displayNameKey] = p.DisplayName
	return sess.Save(r, w)
}

// SignOut clears the session. Calling it without a live session is a no-op.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionPrincipal injects the principal into the request context if
// the cookie session says they are signed in.
func (m *SessionManager) LoadSessionPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			p := identity.Principal{
				UID:         getString(sess, uidKey),
				Email:       getString(sess, emailKey),
				DisplayName: getString(sess, displayNameKey),
			}
			if p.UID != "" {
				r = withPrincipal(r, p)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn guards API routes: no principal in context means a plain
// 401. This is a JSON API; there are no login-page redirects.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

/* helpers */

func withPrincipal(r *http.Request, p identity.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentPrincipalKey, p))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
