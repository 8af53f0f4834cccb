// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TokenVerifier checks a provider token. identity.Verifier implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.Identity, error)
}

// Registry is the slice of userstore.Store the users service exposes.
type Registry interface {
	Lookup(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (models.User, error)
	UpsertIdentity(ctx context.Context, userID, name string) (models.User, error)
	UpdateAuthorization(ctx context.Context, userID string, isOrganizer bool) error
}

// Handler serves the users service API. Only the gateway calls it.
type Handler struct {
	Verifier TokenVerifier
	Users    Registry
	Log      *zap.Logger
}

func NewHandler(v TokenVerifier, users Registry, logger *zap.Logger) *Handler {
	return &Handler{Verifier: v, Users: users, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /authenticate                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeAuthenticate verifies gauth_token and records the user, creating the
// record on first sight. Responds 201 with the stored user.
func (h *Handler) ServeAuthenticate(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "gauth_token")
	if len(missing) > 0 {
		metrics.RecordAuthentication("malformed")
		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
		return
	}

	vctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), h.Log, "verify token")
	id, err := h.Verifier.Verify(vctx, vals["gauth_token"])
	cancel()
	if err != nil {
		h.writeVerifyError(w, err)
		return
	}

	sctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "upsert user")
	defer cancel()
	user, err := h.Users.UpsertIdentity(sctx, id.SubjectID, id.Name)
	if err != nil {
		metrics.RecordAuthentication("store_error")
		apierr.Write(w, apierr.Upstream("users store", err), h.Log)
		return
	}

	metrics.RecordAuthentication("ok")
	h.Log.Info("user authenticated",
		zap.String("user_id", user.UserID),
		zap.Bool("is_organizer", user.IsOrganizer))
	apierr.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrProviderUnavailable):
		metrics.RecordAuthentication("provider_error")
		apierr.Write(w, apierr.Upstream("identity provider", err), h.Log)
	case errors.Is(err, identity.ErrInvalidIssuer):
		metrics.RecordAuthentication("invalid_issuer")
		apierr.Write(w, apierr.Malformed("token was not issued by a trusted provider"), h.Log)
	case errors.Is(err, identity.ErrMissingClaim):
		metrics.RecordAuthentication("missing_claim")
		apierr.Write(w, apierr.Malformed("token lacks the subject id or name"), h.Log)
	default:
		metrics.RecordAuthentication("invalid_token")
		apierr.Write(w, apierr.Malformed("token could not be verified"), h.Log)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /authorization                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type authorizationBody struct {
	IsOrganizer bool `json:"is_organizer"`
}

// ServeAuthorization answers whether user_id is an organizer. Unknown users
// are not organizers.
func (h *Handler) ServeAuthorization(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "user_id")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "authorization lookup")
	defer cancel()
	ok, err := h.Users.Lookup(ctx, vals["user_id"])
	if err != nil {
		apierr.Write(w, apierr.Upstream("users store", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, authorizationBody{IsOrganizer: ok})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /users/{user_id}                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get user")
	defer cancel()
	user, err := h.Users.Get(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) || errors.Is(err, userstore.ErrEmptyUserID) {
		apierr.Write(w, apierr.NotFound("user not found"), h.Log)
		return
	}
	if err != nil {
		apierr.Write(w, apierr.Upstream("users store", err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, user)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /users/{user_id}/authorization                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeUpdateAuthorization sets the organizer flag of an existing user. The
// body must be {"is_organizer": <bool>}; strings and numbers are rejected.
// The caller has already been authorized by the gateway.
func (h *Handler) ServeUpdateAuthorization(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	value, err := decodeAuthorization(r)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update authorization")
	defer cancel()
	if err := h.Users.UpdateAuthorization(ctx, userID, value); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.Write(w, apierr.NotFound("user not found"), h.Log)
			return
		}
		apierr.Write(w, apierr.Upstream("users store", err), h.Log)
		return
	}

	metrics.RecordAuthorizationUpdate(value)
	h.Log.Info("organizer flag set", zap.String("user_id", userID), zap.Bool("is_organizer", value))
	apierr.WriteJSON(w, http.StatusOK, authorizationBody{IsOrganizer: value})
}
