// internal/app/features/authorization/handler.go
package authorization

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/formutil"
	"github.com/dalemusser/eventhub/internal/app/system/orchestrator"
	"go.uber.org/zap"
)

// Handler lets an organizer grant or revoke another user's organizer flag.
// The session is ignored; the request carries a fresh provider token.
type Handler struct {
	Orch *orchestrator.Orchestrator
	Log  *zap.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{Orch: orch, Log: logger}
}

type updateResponse struct {
	UserID      string `json:"user_id"`
	IsOrganizer bool   `json:"is_organizer"`
}

// HandleUpdate handles POST /v1/authorization/update.
//
// Form fields: gauth_token, target_user_id, is_organizer ("true"/"false").
// Every missing field is reported in one 400.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(r); err != nil {
		apierr.Write(w, apierr.Malformed("unreadable form"), h.Log)
		return
	}
	vals, missing := formutil.Required(r, "gauth_token", "target_user_id", "is_organizer")
	if len(missing) > 0 {
		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
		return
	}
	value, err := formutil.Bool(vals["is_organizer"])
	if err != nil {
		apierr.Write(w, apierr.Malformed("is_organizer must be true or false"), h.Log)
		return
	}

	target := vals["target_user_id"]
	got, err := h.Orch.UpdateAuthorization(r.Context(), vals["gauth_token"], target, value)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, updateResponse{UserID: target, IsOrganizer: got})
}
