package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks one dependency. A nil Pinger means the service has none.
type Pinger func(ctx context.Context) error

// MongoPinger pings the primary of client.
func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Service string
	Ping    Pinger
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. ping may be nil for services
// without a database.
func NewHandler(service string, ping Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Service: service,
		Ping:    ping,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "service":"users", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: h.Service}
	if h.Ping == nil {
		apierr.WriteJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.String("service", h.Service), zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		apierr.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Database = "connected"
	apierr.WriteJSON(w, http.StatusOK, resp)
}
