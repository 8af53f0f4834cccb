package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/features/logout"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"go.uber.org/zap"
)

const testSessionName = "test-session"

func newSessionMgr(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", testSessionName, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler := logout.NewHandler(newSessionMgr(t), zap.NewNop())

	req := httptest.NewRequest("GET", "/v1/sign_out", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/v1/" {
		t.Errorf("Location: got %q, want %q", location, "/v1/")
	}
}

func TestServeLogout_ClearsSignedInSession(t *testing.T) {
	sm := newSessionMgr(t)
	handler := logout.NewHandler(sm, zap.NewNop())

	// Sign in first to get a real cookie.
	signin := httptest.NewRecorder()
	if err := sm.Save(signin, httptest.NewRequest("POST", "/v1/authenticate", nil), auth.Identified{
		UserID: "U1", Name: "User One", RawToken: "tok",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest("GET", "/v1/sign_out", nil)
	for _, c := range signin.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == testSessionName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("expected session cookie to be set for deletion")
	}
	if cleared.MaxAge != -1 {
		t.Errorf("cookie MaxAge: got %d, want -1 (delete)", cleared.MaxAge)
	}

	// A browser that kept the expired cookie anyway is still anonymous.
	after := httptest.NewRequest("GET", "/v1/", nil)
	after.AddCookie(&http.Cookie{Name: cleared.Name, Value: cleared.Value})
	if s := sm.Load(after); !s.IsAnonymous() {
		t.Error("session should be anonymous after sign out")
	}
}

func TestServeLogout_AnonymousStillRedirects(t *testing.T) {
	handler := logout.NewHandler(newSessionMgr(t), zap.NewNop())

	rec := httptest.NewRecorder()
	logout.Routes(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}
