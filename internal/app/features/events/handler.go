// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the slice of eventstore.Store the events service needs.
type Store interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	SearchByName(ctx context.Context, name string) ([]models.Event, error)
}

// Handler serves the events directory. The gateway is its only caller and
// supplies author_id on writes.
type Handler struct {
	Events Store
	Log    *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Events: store, Log: logger}
}

type listResponse struct {
	Events    []models.Event `json:"events"`
	NumEvents int            `json:"num_events"`
}

func writeList(w http.ResponseWriter, evs []models.Event) {
	apierr.WriteJSON(w, http.StatusOK, listResponse{Events: evs, NumEvents: len(evs)})
}

// ServeAdd handles POST /add. event_time must be RFC 3339.
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "name", "event_time", "author_id")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("event info was entered incorrectly", missing...), h.Log)
		return
	}
	when, err := time.Parse(time.RFC3339, vals["event_time"])
	if err != nil {
		apierr.Write(w, apierr.Malformed("event_time must be an RFC 3339 timestamp"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create event")
	defer cancel()
	ev, err := h.Events.Create(ctx, models.Event{
		Name:        vals["name"],
		Description: strings.TrimSpace(r.FormValue("description")),
		Author:      vals["author_id"],
		EventTime:   when,
	})
	if errors.Is(err, eventstore.ErrInvalid) {
		apierr.Write(w, apierr.Malformed(err.Error()), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Upstream("events store", err), h.Log)
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("author", ev.Author))
	apierr.WriteJSON(w, http.StatusCreated, ev)
}

// ServeList handles GET /.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events")
	defer cancel()
	evs, err := h.Events.List(ctx)
	if err != nil {
		apierr.Write(w, apierr.Upstream("events store", err), h.Log)
		return
	}
	writeList(w, evs)
}

// ServeSearch handles GET /search?name=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		apierr.Write(w, apierr.Malformed("missing required fields", "name"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "search events")
	defer cancel()
	evs, err := h.Events.SearchByName(ctx, name)
	if err != nil {
		apierr.Write(w, apierr.Upstream("events store", err), h.Log)
		return
	}
	writeList(w, evs)
}

// ServeEvent handles GET /{event_id}. Ids that are not object ids cannot
// exist and are reported as not found.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "event_id"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("event not found"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get event")
	defer cancel()
	ev, err := h.Events.Get(ctx, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		apierr.Write(w, apierr.NotFound("event not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Upstream("events store", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, ev)
}
