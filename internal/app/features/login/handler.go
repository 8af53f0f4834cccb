// internal/app/features/login/handler.go
package login

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"go.uber.org/zap"
)

// Handler signs a browser in with a provider token it already holds.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *downstream.Users
}

func NewHandler(sessionMgr *auth.SessionManager, users *downstream.Users, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Users:      users,
	}
}

// HandleAuthenticate handles POST /v1/authenticate.
//
// gauth_token is passed to the users service. On 201 the session cookie is
// set to the returned user and the token. Whatever the users service
// answered is relayed to the browser unchanged.
func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "gauth_token")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
		return
	}
	token := vals["gauth_token"]

	resp, err := h.Users.Authenticate(r.Context(), token)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	if resp.Status != http.StatusCreated {
		h.Log.Info("authentication refused by users service", zap.Int("status", resp.Status))
		apierr.Write(w, resp.Relay(), h.Log)
		return
	}

	user, err := downstream.AuthenticatedUser(resp)
	if err != nil {
		apierr.Write(w, apierr.Upstream("users service", err), h.Log)
		return
	}
	id := auth.Identified{UserID: user.UserID, Name: user.Name, RawToken: token}
	if err := h.SessionMgr.Save(w, r, id); err != nil {
		apierr.Write(w, apierr.Internal("could not start session", err), h.Log)
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", user.UserID))
	apierr.Write(w, resp.Relay(), h.Log)
}
