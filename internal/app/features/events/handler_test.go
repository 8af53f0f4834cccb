package events_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/features/events"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listBody struct {
	Events    []models.Event `json:"events"`
	NumEvents int            `json:"num_events"`
}

func newRouter(store events.Store) http.Handler {
	return events.Routes(events.NewHandler(store, zap.NewNop()))
}

func add(t *testing.T, router http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func validForm() url.Values {
	return url.Values{
		"name":        {"Launch party"},
		"description": {"Cake provided"},
		"event_time":  {"2026-11-01T18:00:00Z"},
		"author_id":   {"U2"},
	}
}

func TestAdd_CreatesEvent(t *testing.T) {
	store := &testutil.MemEvents{}
	router := newRouter(store)

	rec := add(t, router, validForm())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var ev models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Name != "Launch party" || ev.Author != "U2" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if !ev.EventTime.Equal(time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("event_time: got %v", ev.EventTime)
	}
	if store.Len() != 1 {
		t.Errorf("stored %d events, want 1", store.Len())
	}
}

func TestAdd_MissingFields(t *testing.T) {
	router := newRouter(&testutil.MemEvents{})

	rec := add(t, router, url.Values{"description": {"no name"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body struct {
		Missing []string `json:"missing"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if strings.Join(body.Missing, ",") != "name,event_time,author_id" {
		t.Errorf("missing: got %v", body.Missing)
	}
}

func TestAdd_BadEventTime(t *testing.T) {
	router := newRouter(&testutil.MemEvents{})
	form := validForm()
	form.Set("event_time", "next tuesday")

	if rec := add(t, router, form); rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdd_StoreDown(t *testing.T) {
	router := newRouter(&testutil.MemEvents{Err: errors.New("no reachable servers")})

	if rec := add(t, router, validForm()); rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestList(t *testing.T) {
	store := &testutil.MemEvents{}
	router := newRouter(store)
	add(t, router, validForm())
	form := validForm()
	form.Set("name", "Hack night")
	add(t, router, form)

	rec := get(router, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body listBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.NumEvents != 2 || len(body.Events) != 2 {
		t.Errorf("got %d events (num_events=%d), want 2", len(body.Events), body.NumEvents)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	router := newRouter(&testutil.MemEvents{})

	rec := get(router, "/")
	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}

func TestSearch(t *testing.T) {
	router := newRouter(&testutil.MemEvents{})
	add(t, router, validForm())

	rec := get(router, "/search?name=LAUNCH")
	var body listBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.NumEvents != 1 {
		t.Errorf("num_events: got %d, want 1", body.NumEvents)
	}

	if rec := get(router, "/search"); rec.Code != http.StatusBadRequest {
		t.Errorf("search without name: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetEvent(t *testing.T) {
	store := &testutil.MemEvents{}
	router := newRouter(store)
	add(t, router, validForm())
	id := store.All()[0].ID.Hex()

	if rec := get(router, "/"+id); rec.Code != http.StatusOK {
		t.Errorf("existing: got %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := get(router, "/"+primitive.NewObjectID().Hex()); rec.Code != http.StatusNotFound {
		t.Errorf("absent: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := get(router, "/not-an-id"); rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdd_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	router := newRouter(store)

	rec := add(t, router, validForm())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var created models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = get(router, "/"+created.ID.Hex())
	var fetched models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !fetched.SameAs(created) {
		t.Errorf("fetched %+v, want %+v", fetched, created)
	}
}
