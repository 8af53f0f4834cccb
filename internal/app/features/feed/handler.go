// internal/app/features/feed/handler.go
package feed

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/orchestrator"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the gateway's read pages. Every page is all-or-nothing: if
// any one fetch fails the whole page fails.
type Handler struct {
	Orch   *orchestrator.Orchestrator
	Events *downstream.Events
	Posts  *downstream.Posts
	Log    *zap.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, events *downstream.Events, posts *downstream.Posts, logger *zap.Logger) *Handler {
	return &Handler{Orch: orch, Events: events, Posts: posts, Log: logger}
}

type homePage struct {
	Viewer    orchestrator.Viewer `json:"viewer"`
	Events    []models.Event      `json:"events"`
	NumEvents int                 `json:"num_events"`
	Posts     []models.Post       `json:"posts"`
	NumPosts  int                 `json:"num_posts"`
}

type eventsPage struct {
	Viewer    orchestrator.Viewer `json:"viewer"`
	Events    []models.Event      `json:"events"`
	NumEvents int                 `json:"num_events"`
}

type eventPage struct {
	Viewer   orchestrator.Viewer `json:"viewer"`
	Event    models.Event        `json:"event"`
	Posts    []models.Post       `json:"posts"`
	NumPosts int                 `json:"num_posts"`
}

func (h *Handler) viewer(s auth.Session, out *orchestrator.Viewer) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := h.Orch.Viewer(ctx, s)
		*out = v
		return err
	}
}

// ServeHome handles GET /v1/: every post, every event and the viewer.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	var page homePage
	err := orchestrator.Aggregate(r.Context(),
		func(ctx context.Context) (err error) {
			page.Events, err = h.Events.List(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			page.Posts, err = h.Posts.List(ctx)
			return err
		},
		h.viewer(auth.FromRequest(r), &page.Viewer),
	)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	page.Events = nonNil(page.Events)
	page.Posts = nonNil(page.Posts)
	page.NumEvents = len(page.Events)
	page.NumPosts = len(page.Posts)
	apierr.WriteJSON(w, http.StatusOK, page)
}

// ServeEvents handles GET /v1/events.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	var page eventsPage
	err := orchestrator.Aggregate(r.Context(),
		func(ctx context.Context) (err error) {
			page.Events, err = h.Events.List(ctx)
			return err
		},
		h.viewer(auth.FromRequest(r), &page.Viewer),
	)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	page.Events = nonNil(page.Events)
	page.NumEvents = len(page.Events)
	apierr.WriteJSON(w, http.StatusOK, page)
}

// ServeEvent handles GET /v1/events/{event_id}: the event, its posts and the
// viewer.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event_id")

	var page eventPage
	err := orchestrator.Aggregate(r.Context(),
		func(ctx context.Context) (err error) {
			page.Event, err = h.Events.Event(ctx, eventID)
			return err
		},
		func(ctx context.Context) (err error) {
			page.Posts, err = h.Posts.ByEvent(ctx, eventID)
			return err
		},
		h.viewer(auth.FromRequest(r), &page.Viewer),
	)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	page.Posts = nonNil(page.Posts)
	page.NumPosts = len(page.Posts)
	apierr.WriteJSON(w, http.StatusOK, page)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
