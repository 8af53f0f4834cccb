package status_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/features/status"
	"go.uber.org/zap"
)

type statusBody struct {
	Status   string `json:"status"`
	Services []struct {
		Service  string `json:"service"`
		Status   string `json:"status"`
		Code     int    `json:"code"`
		Database string `json:"database"`
		Error    string `json:"error"`
	} `json:"services"`
}

func healthServer(t *testing.T, code int, database string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "database": database})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func target(t *testing.T, name, endpoint string) status.Target {
	t.Helper()
	u, err := status.HealthURL(endpoint)
	if err != nil {
		t.Fatalf("HealthURL(%q): %v", endpoint, err)
	}
	return status.Target{Name: name, HealthURL: u}
}

func serve(t *testing.T, targets ...status.Target) (int, statusBody) {
	t.Helper()
	h := status.NewHandler(targets, nil, zap.NewNop())
	rec := httptest.NewRecorder()
	status.Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body statusBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestHealthURL(t *testing.T) {
	got, err := status.HealthURL("http://users:8080/v1/")
	if err != nil || got != "http://users:8080/health" {
		t.Errorf("HealthURL = %q, %v", got, err)
	}
	if _, err := status.HealthURL("users:8080/v1/"); err == nil {
		t.Error("expected an error for a URL without an http scheme")
	}
}

func TestServe_AllHealthy(t *testing.T) {
	code, body := serve(t,
		target(t, "users", healthServer(t, http.StatusOK, "connected")+"/v1/"),
		target(t, "events", healthServer(t, http.StatusOK, "connected")+"/v1/"),
	)
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("got %d %q, want 200 ok", code, body.Status)
	}
	if len(body.Services) != 2 || body.Services[0].Service != "events" || body.Services[1].Service != "users" {
		t.Errorf("services not sorted by name: %+v", body.Services)
	}
	if body.Services[0].Database != "connected" {
		t.Errorf("database: got %q", body.Services[0].Database)
	}
}

func TestServe_Degraded(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	code, body := serve(t,
		target(t, "posts", healthServer(t, http.StatusServiceUnavailable, "disconnected")+"/v1/"),
		target(t, "users", deadURL+"/v1/"),
		target(t, "events", healthServer(t, http.StatusOK, "connected")+"/v1/"),
	)
	if code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("got %d %q, want 503 degraded", code, body.Status)
	}
	byName := map[string]string{}
	for _, s := range body.Services {
		byName[s.Service] = s.Status
	}
	want := map[string]string{"events": "ok", "posts": "error", "users": "error"}
	for name, st := range want {
		if byName[name] != st {
			t.Errorf("%s: got %q, want %q", name, byName[name], st)
		}
	}
}
