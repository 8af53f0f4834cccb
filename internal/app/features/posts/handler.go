// internal/app/features/posts/handler.go
package posts

import (
	"context"
	"errors"
	"net/http"

	poststore "github.com/dalemusser/eventhub/internal/app/store/posts"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the slice of poststore.Store the posts service needs.
type Store interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ByEvent(ctx context.Context, eventID string) ([]models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID, authorID string) error
}

// Handler serves the per-event post feed. author_id on writes is trusted;
// only the gateway can reach this service.
type Handler struct {
	Posts Store
	Log   *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Posts: store, Log: logger}
}

type listResponse struct {
	Posts    []models.Post `json:"posts"`
	NumPosts int           `json:"num_posts"`
}

func (h *Handler) writeList(w http.ResponseWriter, ps []models.Post, err error) {
	if err != nil {
		apierr.Write(w, apierr.Upstream("posts store", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, listResponse{Posts: ps, NumPosts: len(ps)})
}

// ServeAdd handles POST /add. text may be empty when media is given; media
// is repeated, one absolute URL per value.
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "event_id", "author_id")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create post")
	defer cancel()
	p, err := h.Posts.Create(ctx, models.Post{
		EventID:  vals["event_id"],
		AuthorID: vals["author_id"],
		Text:     r.FormValue("text"),
		Media:    r.Form["media"],
	})
	switch {
	case errors.Is(err, poststore.ErrEmptyPost),
		errors.Is(err, poststore.ErrInvalidMedia),
		errors.Is(err, poststore.ErrMissingOwner):
		apierr.Write(w, apierr.Malformed(err.Error()), h.Log)
		return
	case err != nil:
		apierr.Write(w, apierr.Upstream("posts store", err), h.Log)
		return
	}

	h.Log.Info("post created",
		zap.String("post_id", p.ID.Hex()),
		zap.String("event_id", p.EventID),
		zap.String("author_id", p.AuthorID))
	apierr.WriteJSON(w, http.StatusCreated, p)
}

// ServeList handles GET /.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list posts")
	defer cancel()
	ps, err := h.Posts.List(ctx)
	h.writeList(w, ps, err)
}

// ServeByEvent handles GET /by_event/{event_id}.
func (h *Handler) ServeByEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list posts by event")
	defer cancel()
	ps, err := h.Posts.ByEvent(ctx, chi.URLParam(r, "event_id"))
	h.writeList(w, ps, err)
}

// ServePost handles GET /{post_id}.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "post_id"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("post not found"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get post")
	defer cancel()
	p, err := h.Posts.Get(ctx, id)
	if errors.Is(err, poststore.ErrNotFound) {
		apierr.Write(w, apierr.NotFound("post not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Upstream("posts store", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, p)
}

// ServeDelete handles DELETE /{post_id}. Only a post written by author_id is
// removed; any other post, like a missing one, is a 404.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "author_id")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("request missing author_id", missing...), h.Log)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "post_id"))
	if err != nil {
		apierr.Write(w, apierr.NotFound("post not found"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete post")
	defer cancel()
	err = h.Posts.Delete(ctx, id, vals["author_id"])
	if errors.Is(err, poststore.ErrNotFound) {
		apierr.Write(w, apierr.NotFound("post not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Upstream("posts store", err), h.Log)
		return
	}

	h.Log.Info("post deleted", zap.String("post_id", id.Hex()), zap.String("author_id", vals["author_id"]))
	w.WriteHeader(http.StatusNoContent)
}
