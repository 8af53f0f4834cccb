// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// HomePath is where a signed-out browser lands.
const HomePath = "/v1/"

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles GET /v1/sign_out. Signing out an anonymous browser is
// harmless and still redirects.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("sign out: clear session", zap.Error(err))
	}
	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}
