package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/cartsync/internal/app/identity"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	mgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "cartsync_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return mgr
}

func TestNewSessionManager_EmptyKeyInProduction(t *testing.T) {
	if _, err := auth.NewSessionManager("", "cartsync", "", true, zap.NewNop()); err == nil {
		t.Error("empty key with secure cookies was accepted, want error")
	}
}

func TestNewSessionManager_EmptyKeyInDev(t *testing.T) {
	if _, err := auth.NewSessionManager("", "cartsync", "", false, zap.NewNop()); err != nil {
		t.Errorf("empty key in dev mode returned %v, want generated key", err)
	}
}

// signInCookies performs a SignIn and returns the Set-Cookie values.
func signInCookies(t *testing.T, mgr *auth.SessionManager, p identity.Principal) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/login", nil)
	if err := mgr.SignIn(rec, req, p); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return rec.Result().Cookies()
}

func TestSessionRoundTrip(t *testing.T) {
	mgr := newManager(t)
	want := identity.Principal{UID: "uid-1", Email: "ana@example.com", DisplayName: "Ana"}

	cookies := signInCookies(t, mgr, want)
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookies")
	}

	var got identity.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.CurrentPrincipal(r)
	})

	req := httptest.NewRequest("GET", "/api/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	mgr.LoadSessionPrincipal(next).ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("no principal loaded from session cookie")
	}
	if got != want {
		t.Errorf("loaded principal = %+v, want %+v", got, want)
	}
}

func TestLoadSessionPrincipal_NoCookie(t *testing.T) {
	mgr := newManager(t)

	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentPrincipal(r)
	})

	req := httptest.NewRequest("GET", "/api/me", nil)
	mgr.LoadSessionPrincipal(next).ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("principal loaded from a cookieless request")
	}
}

func TestSignOut_DropsSession(t *testing.T) {
	mgr := newManager(t)
	cookies := signInCookies(t, mgr, identity.Principal{UID: "uid-1", Email: "ana@example.com"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if err := mgr.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	// The replacement cookie must be expired.
	out := rec.Result().Cookies()
	if len(out) == 0 {
		t.Fatal("SignOut set no cookies")
	}
	if out[0].MaxAge >= 0 {
		t.Errorf("sign-out cookie MaxAge = %d, want negative", out[0].MaxAge)
	}
}

func TestRequireSignedIn(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	auth.RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/items", nil))

	if called {
		t.Error("handler ran without a signed-in principal")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
