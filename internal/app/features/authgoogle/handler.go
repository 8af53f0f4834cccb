// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// HomePath is the default landing page after sign-in and the page that
// carries ?error= codes when sign-in fails.
const HomePath = "/v1/"

// Handler runs the server-side Google sign-in. It ends the same way as
// POST /v1/authenticate: the ID token is handed to the users service and the
// session is set from its answer.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *downstream.Users

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://eventhub.example.com/auth/google/callback"
	Endpoint     oauth2.Endpoint
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	users *downstream.Users,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Users:        users,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimSuffix(baseURL, "/") + "/auth/google/callback",
		Endpoint:     google.Endpoint,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectHome(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectHome(w, r, "internal")
		return
	}

	returnURL := query.Get(r, "return")
	if err := h.SessionMgr.PutOAuthState(w, r, state, returnURL); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectHome(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Checks state, exchanges the code, and authenticates the ID token with the    |
| users service.                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	// Check for errors from Google
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectHome(w, r, "google_denied")
		return
	}

	// The stored state is consumed whether or not it matches.
	want, returnURL, err := h.SessionMgr.TakeOAuthState(w, r)
	got := r.URL.Query().Get("state")
	if err != nil || got == "" || got != want {
		h.Log.Warn("invalid or missing OAuth state", zap.Error(err))
		h.redirectHome(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectHome(w, r, "invalid_code")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), h.Log, "oauth code exchange")
	token, err := h.oauth2Config().Exchange(ctx, code)
	cancel()
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectHome(w, r, "token_exchange")
		return
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		h.Log.Error("OAuth token response has no id_token")
		h.redirectHome(w, r, "token_exchange")
		return
	}

	resp, err := h.Users.Authenticate(r.Context(), idToken)
	if err != nil {
		h.Log.Error("users service unreachable during Google sign-in", zap.Error(err))
		h.redirectHome(w, r, "internal")
		return
	}
	user, err := downstream.AuthenticatedUser(resp)
	if err != nil {
		h.Log.Warn("users service refused Google sign-in", zap.Int("status", resp.Status), zap.Error(err))
		h.redirectHome(w, r, "authentication_failed")
		return
	}

	if err := h.SessionMgr.Save(w, r, auth.Identified{UserID: user.UserID, Name: user.Name, RawToken: idToken}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", user.UserID))
		h.redirectHome(w, r, "session")
		return
	}

	h.Log.Info("user signed in via Google OAuth", zap.String("user_id", user.UserID))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", HomePath), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, HomePath+"?error="+errorCode, http.StatusSeeOther)
}

var errNoEntropy = errors.New("random source returned no bytes")

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errNoEntropy
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
