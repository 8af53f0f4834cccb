package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	testKey  = "test-session-key-must-be-32-chars-long"
	testName = "test-session"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, testName, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// roundTrip copies the cookies set on rec into a fresh request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", testName, "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestLoad_NoCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	s := sm.Load(httptest.NewRequest("GET", "/", nil))
	if !s.IsAnonymous() {
		t.Fatal("expected anonymous session")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	want := auth.Identified{UserID: "u1", Name: "User One", RawToken: "tok"}

	rec := httptest.NewRecorder()
	if err := sm.Save(rec, httptest.NewRequest("POST", "/", nil), want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := sm.Load(roundTrip(rec)).Identity()
	if !ok {
		t.Fatal("expected identified session")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSave_RejectsPartialIdentity(t *testing.T) {
	sm := newTestSessionManager(t)
	partials := []auth.Identified{
		{Name: "n", RawToken: "t"},
		{UserID: "u", RawToken: "t"},
		{UserID: "u", Name: "n"},
	}
	for _, id := range partials {
		rec := httptest.NewRecorder()
		err := sm.Save(rec, httptest.NewRequest("POST", "/", nil), id)
		if !errors.Is(err, auth.ErrIncompleteIdentity) {
			t.Errorf("Save(%+v): expected ErrIncompleteIdentity, got %v", id, err)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Errorf("Save(%+v) must not write a cookie", id)
		}
	}
}

func TestLoad_PartialCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)

	values := map[interface{}]interface{}{"user_id": "u1", "gauth_token": "tok"}
	encoded, err := securecookie.EncodeMulti(testName, values, securecookie.CodecsFromPairs([]byte(testKey))...)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: testName, Value: encoded})

	if !sm.Load(req).IsAnonymous() {
		t.Fatal("a cookie missing the name must decode as anonymous")
	}
}

func TestLoad_TamperedCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: testName, Value: "not-a-signed-value"})

	if !sm.Load(req).IsAnonymous() {
		t.Fatal("expected anonymous session for a tampered cookie")
	}
}

func TestLoad_WrongKeyIsAnonymous(t *testing.T) {
	other, err := auth.NewSessionManager("another-session-key-of-32-chars-long!", testName, "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	if err := other.Save(rec, httptest.NewRequest("POST", "/", nil), auth.Identified{UserID: "u", Name: "n", RawToken: "t"}); err != nil {
		t.Fatal(err)
	}

	sm := newTestSessionManager(t)
	if !sm.Load(roundTrip(rec)).IsAnonymous() {
		t.Fatal("cookie signed with another key must not be trusted")
	}
}

func TestClear_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.Save(rec, httptest.NewRequest("POST", "/", nil), auth.Identified{UserID: "u", Name: "n", RawToken: "t"}); err != nil {
		t.Fatal(err)
	}

	clearRec := httptest.NewRecorder()
	if err := sm.Clear(clearRec, roundTrip(rec)); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cookies := clearRec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("expected negative MaxAge, got %d", cookies[0].MaxAge)
	}
}

func TestClear_AnonymousIsNoop(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.Clear(rec, httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("Clear on anonymous session: %v", err)
	}
}

func TestOAuthState_SingleUse(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.PutOAuthState(rec, httptest.NewRequest("GET", "/", nil), "state-1", "/v1/events"); err != nil {
		t.Fatalf("PutOAuthState: %v", err)
	}

	takeRec := httptest.NewRecorder()
	state, ret, err := sm.TakeOAuthState(takeRec, roundTrip(rec))
	if err != nil {
		t.Fatalf("TakeOAuthState: %v", err)
	}
	if state != "state-1" || ret != "/v1/events" {
		t.Errorf("got (%q, %q)", state, ret)
	}

	if _, _, err := sm.TakeOAuthState(httptest.NewRecorder(), roundTrip(takeRec)); !errors.Is(err, auth.ErrNoOAuthState) {
		t.Fatalf("second take: expected ErrNoOAuthState, got %v", err)
	}
}

func TestLoadSession_Middleware(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.Save(rec, httptest.NewRequest("POST", "/", nil), auth.Identified{UserID: "u1", Name: "n", RawToken: "t"}); err != nil {
		t.Fatal(err)
	}

	var seen auth.Session
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.FromRequest(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), roundTrip(rec))

	id, ok := seen.Identity()
	if !ok || id.UserID != "u1" {
		t.Fatalf("expected u1 in context, got %+v (ok=%v)", id, ok)
	}
}

func TestFromRequest_DefaultsToAnonymous(t *testing.T) {
	if !auth.FromRequest(httptest.NewRequest("GET", "/", nil)).IsAnonymous() {
		t.Fatal("expected anonymous when no middleware ran")
	}
}

func TestKnown_IncompleteIsAnonymous(t *testing.T) {
	if !auth.Known(auth.Identified{UserID: "u"}).IsAnonymous() {
		t.Fatal("Known with partial identity must be anonymous")
	}
}
