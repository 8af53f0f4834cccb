package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
)

func TestRouter_AddThenList(t *testing.T) {
	store := &testutil.MemEvents{}
	h := newRouter(store, nil, zap.NewNop())

	form := url.Values{
		"name":        {"Launch Party"},
		"description": {"Cake."},
		"event_time":  {"2026-11-01T18:00:00Z"},
		"author_id":   {"U2"},
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var page struct {
		NumEvents int `json:"num_events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.NumEvents != 1 || store.Len() != 1 {
		t.Errorf("num_events: got %d (stored %d), want 1", page.NumEvents, store.Len())
	}
}

func TestRouter_Health(t *testing.T) {
	h := newRouter(&testutil.MemEvents{}, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: got %d", rec.Code)
	}
}
