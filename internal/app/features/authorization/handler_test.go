package authorization_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/features/authorization"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/app/system/orchestrator"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type fixture struct {
	b      *testutil.Backends
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackends(t, map[string]identity.Identity{
		"token-u1": {SubjectID: "U1", Name: "User One", Issuer: "accounts.google.com"},
		"token-u2": {SubjectID: "U2", Name: "User Two", Issuer: "accounts.google.com"},
	})
	b.UserDocs.Put(bson.M{"user_id": "U1", "name": "User One", "is_organizer": false})
	b.UserDocs.Put(bson.M{"user_id": "U2", "name": "User Two", "is_organizer": true})

	users, _, _ := b.Clients(t)
	orch := orchestrator.New(b.Verifier, users, zap.NewNop())
	h := authorization.NewHandler(orch, zap.NewNop())
	return &fixture{b: b, router: authorization.Routes(h, nil)}
}

func (f *fixture) update(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) isOrganizer(t *testing.T, userID string) bool {
	t.Helper()
	ok, err := f.b.Users.Lookup(t.Context(), userID)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", userID, err)
	}
	return ok
}

func form(token, target, value string) url.Values {
	return url.Values{"gauth_token": {token}, "target_user_id": {target}, "is_organizer": {value}}
}

func TestUpdate_OrganizerGrants(t *testing.T) {
	f := newFixture(t)

	rec := f.update(form("token-u2", "U1", "true"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		UserID      string `json:"user_id"`
		IsOrganizer bool   `json:"is_organizer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != "U1" || !body.IsOrganizer {
		t.Errorf("body: got %+v", body)
	}
	if !f.isOrganizer(t, "U1") {
		t.Error("U1 should now be an organizer")
	}
}

func TestUpdate_SelfGrantRefused(t *testing.T) {
	f := newFixture(t)

	rec := f.update(form("token-u1", "U1", "true"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if f.isOrganizer(t, "U1") {
		t.Error("U1 must not be able to grant itself organizer")
	}
}

func TestUpdate_UnknownTarget(t *testing.T) {
	f := newFixture(t)

	rec := f.update(form("token-u2", "ghost", "true"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "target_not_found") {
		t.Errorf("body: got %s", rec.Body.String())
	}
	if f.b.UserDocs.Has("ghost") {
		t.Error("update must not create the target")
	}
}

func TestUpdate_InvalidToken(t *testing.T) {
	f := newFixture(t)

	rec := f.update(form("forged", "U1", "true"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if n := f.b.TotalHits(); n != 0 {
		t.Errorf("downstream calls: got %d, want 0", n)
	}
}

func TestUpdate_MissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.update(url.Values{"target_user_id": {"U1"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body struct {
		Missing []string `json:"missing"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if strings.Join(body.Missing, ",") != "gauth_token,is_organizer" {
		t.Errorf("missing: got %v", body.Missing)
	}
	if n := f.b.Verifier.Calls(); n != 0 {
		t.Errorf("verifier calls: got %d, want 0", n)
	}
}

func TestUpdate_NonBooleanValue(t *testing.T) {
	for _, v := range []string{"organizer", "1", "t", "T", "True"} {
		t.Run(v, func(t *testing.T) {
			f := newFixture(t)

			rec := f.update(form("token-u2", "U1", v))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if f.isOrganizer(t, "U1") {
				t.Error("a non-boolean value must not change the flag")
			}
			if n := f.b.Verifier.Calls(); n != 0 {
				t.Errorf("verifier calls: got %d, want 0", n)
			}
		})
	}
}

func TestUpdate_TokenMissingClaims(t *testing.T) {
	f := newFixture(t)
	f.b.Verifier.Fail(identity.ErrMissingClaim)

	rec := f.update(form("token-u2", "U1", "true"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if n := f.b.TotalHits(); n != 0 {
		t.Errorf("downstream calls: got %d, want 0", n)
	}
}

func TestUpdate_Revoke(t *testing.T) {
	f := newFixture(t)
	f.b.UserDocs.Put(bson.M{"user_id": "U3", "name": "User Three", "is_organizer": true})

	rec := f.update(form("token-u2", "U3", "false"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if f.isOrganizer(t, "U3") {
		t.Error("U3 should no longer be an organizer")
	}
}

func TestUpdate_UsersServiceDown(t *testing.T) {
	f := newFixture(t)
	f.b.Down(testutil.UsersService, true)

	rec := f.update(form("token-u2", "U1", "true"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
