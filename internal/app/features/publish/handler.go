// internal/app/features/publish/handler.go
package publish

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/orchestrator"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the gated mutations. Each one resolves and checks the
// caller before any downstream service is contacted, then forwards the
// request with the caller's id as author_id and relays the answer.
type Handler struct {
	Orch   *orchestrator.Orchestrator
	Events *downstream.Events
	Posts  *downstream.Posts
	Log    *zap.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, events *downstream.Events, posts *downstream.Posts, logger *zap.Logger) *Handler {
	return &Handler{Orch: orch, Events: events, Posts: posts, Log: logger}
}

// forward is Events.Add or Posts.Add.
type forward func(ctx context.Context, form url.Values) (*downstream.Response, error)

// ServeAddEvent handles POST /v1/add_event. Organizers only.
func (h *Handler) ServeAddEvent(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "add_event", h.Events.Add)
}

// ServeAddPost handles POST /v1/add_post. Organizers only.
func (h *Handler) ServeAddPost(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "add_post", h.Posts.Add)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, action string, send forward) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}

	caller, err := h.Orch.Authorize(r.Context(), auth.FromRequest(r), orchestrator.RequireOrganizer())
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	// author_id always comes from the verified caller, never the client.
	form := formutil.Clone(r)
	form.Set("author_id", caller.SubjectID)

	resp, err := send(r.Context(), form)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.Log.Info("mutation forwarded",
		zap.String("action", action),
		zap.String("user_id", caller.SubjectID),
		zap.Int("status", resp.Status))
	apierr.Write(w, resp.Relay(), h.Log)
}

// ServeDeletePost handles POST /v1/posts/{post_id}/delete and
// DELETE /v1/posts/{post_id}. Only the post's author may delete it.
func (h *Handler) ServeDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "post_id")

	owner := orchestrator.RequireOwner(func(ctx context.Context) (string, error) {
		p, err := h.Posts.Post(ctx, postID)
		return p.AuthorID, err
	})
	caller, err := h.Orch.Authorize(r.Context(), auth.FromRequest(r), owner)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	resp, err := h.Posts.Delete(r.Context(), postID, caller.SubjectID)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	h.Log.Info("post delete forwarded",
		zap.String("post_id", postID),
		zap.String("user_id", caller.SubjectID),
		zap.Int("status", resp.Status))
	apierr.Write(w, resp.Relay(), h.Log)
}
