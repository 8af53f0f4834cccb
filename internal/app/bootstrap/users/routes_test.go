package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.MemUsers) {
	t.Helper()
	docs := testutil.NewMemUsers()
	v := testutil.NewVerifier(map[string]identity.Identity{
		"tok-u1": {SubjectID: "U1", Name: "User One", Issuer: "accounts.google.com"},
	})
	return newRouter(v, userstore.NewWithCollection(docs), nil, zap.NewNop()), docs
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != "users" {
		t.Errorf("service: got %q", body["service"])
	}
}

func TestRouter_AuthenticateThenLookup(t *testing.T) {
	h, docs := newTestRouter(t)

	form := url.Values{"gauth_token": {"tok-u1"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/authenticate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("authenticate: got %d: %s", rec.Code, rec.Body.String())
	}
	if !docs.Has("U1") {
		t.Fatal("expected a user record for U1")
	}

	form = url.Values{"user_id": {"U1"}}
	req = httptest.NewRequest(http.MethodPost, "/v1/authorization", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorization: got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"is_organizer":false}` {
		t.Errorf("authorization body: got %s", rec.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rec.Code)
	}
}

func TestValidateConfig(t *testing.T) {
	good := AppConfig{
		Mongo:          bootstrap.MongoConfig{URI: "mongodb://localhost:27017", Database: "eventhub_users", MaxPoolSize: 10},
		GoogleClientID: "client-123.apps.googleusercontent.com",
	}
	if err := ValidateConfig(nil, good, zap.NewNop()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noClient := good
	noClient.GoogleClientID = ""
	if err := ValidateConfig(nil, noClient, zap.NewNop()); err == nil {
		t.Error("expected an error without google_client_id")
	}

	noDB := good
	noDB.Mongo.Database = ""
	if err := ValidateConfig(nil, noDB, zap.NewNop()); err == nil {
		t.Error("expected an error without mongo_database")
	}
}
