// internal/app/features/status/handler.go
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target is one backing service whose health endpoint is polled.
type Target struct {
	Name      string
	HealthURL string
}

// HealthURL returns the /health URL of the service whose API is rooted at
// endpoint (e.g., "http://users:8080/v1/" gives "http://users:8080/health").
func HealthURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	return u.ResolveReference(&url.URL{Path: "/health"}).String(), nil
}

// Handler reports the health of every backing service in one response.
type Handler struct {
	Targets []Target
	Client  *http.Client
	Log     *zap.Logger
}

func NewHandler(targets []Target, client *http.Client, logger *zap.Logger) *Handler {
	if client == nil {
		client = http.DefaultClient
	}
	return &Handler{Targets: targets, Client: client, Log: logger}
}

type serviceStatus struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Code      int    `json:"code,omitempty"`
	Database  string `json:"database,omitempty"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

type statusResponse struct {
	Status   string          `json:"status"`
	Services []serviceStatus `json:"services"`
}

// Serve handles GET /status. Services are polled concurrently; the overall
// status is "ok" with 200 only when every service answered 200.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var (
		mu  sync.Mutex
		out = make([]serviceStatus, 0, len(h.Targets))
	)

	g, ctx := errgroup.WithContext(r.Context())
	for _, t := range h.Targets {
		g.Go(func() error {
			s := h.check(ctx, t)
			mu.Lock()
			out = append(out, s)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })

	resp := statusResponse{Status: "ok", Services: out}
	code := http.StatusOK
	for _, s := range out {
		if s.Status != "ok" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	apierr.WriteJSON(w, code, resp)
}

func (h *Handler) check(ctx context.Context, t Target) serviceStatus {
	start := time.Now()
	s := h.probe(ctx, t)
	s.Service = t.Name
	s.ElapsedMS = time.Since(start).Milliseconds()
	return s
}

func (h *Handler) probe(ctx context.Context, t Target) serviceStatus {
	s := serviceStatus{Status: "error"}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), h.Log, t.Name+" health")
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.HealthURL, nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		h.Log.Warn("status: service unreachable", zap.String("service", t.Name), zap.Error(err))
		s.Error = "unreachable"
		return s
	}
	defer resp.Body.Close()

	s.Code = resp.StatusCode
	var body struct {
		Database string `json:"database"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	s.Database = body.Database
	if resp.StatusCode == http.StatusOK {
		s.Status = "ok"
	}
	return s
}
