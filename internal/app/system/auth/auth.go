package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "eventhub-session"

	userIDKey      = "user_id"
	userNameKey    = "name"
	rawTokenKey    = "gauth_token"
	oauthStateKey  = "oauth_state"
	oauthReturnKey = "oauth_return"
)

// ErrIncompleteIdentity is returned by Save when any identity field is empty.
var ErrIncompleteIdentity = errors.New("auth: identity requires user id, name and token")

// ErrNoOAuthState is returned by TakeOAuthState when the session holds no state.
var ErrNoOAuthState = errors.New("auth: no oauth state in session")

/*─────────────────────────────────────────────────────────────────────────────*
| Session variant                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Identified is the signed-in half of a Session. All three fields are set.
type Identified struct {
	UserID   string
	Name     string
	RawToken string
}

func (id Identified) complete() bool {
	return id.UserID != "" && id.Name != "" && id.RawToken != ""
}

// Session is either anonymous or carries an Identified. The zero value is
// anonymous.
type Session struct {
	id *Identified
}

// Anonymous returns a session with no identity.
func Anonymous() Session { return Session{} }

// Known returns a session for id. An incomplete identity yields Anonymous.
func Known(id Identified) Session {
	if !id.complete() {
		return Session{}
	}
	return Session{id: &id}
}

// Identity returns the identity and true, or false for an anonymous session.
func (s Session) Identity() (Identified, bool) {
	if s.id == nil {
		return Identified{}, false
	}
	return *s.id, true
}

// IsAnonymous reports whether the session carries no identity.
func (s Session) IsAnonymous() bool { return s.id == nil }

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager reads and writes the browser session cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. The `secure` flag
// controls whether cookies are marked Secure and which SameSite mode is used.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	// Secure cookies in production are SameSite=None; plain http in dev uses Lax.
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Load decodes the session for r. Missing, tampered, or partially populated
// cookies all decode as Anonymous.
func (m *SessionManager) Load(r *http.Request) Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.log.Debug("session decode failed; treating as anonymous", zap.Error(err))
		return Anonymous()
	}
	return Known(Identified{
		UserID:   getString(sess, userIDKey),
		Name:     getString(sess, userNameKey),
		RawToken: getString(sess, rawTokenKey),
	})
}

// Save stores id in the session cookie, replacing any previous identity.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, id Identified) error {
	if !id.complete() {
		return ErrIncompleteIdentity
	}
	sess, _ := m.store.Get(r, m.name)
	sess.Values[userIDKey] = id.UserID
	sess.Values[userNameKey] = id.Name
	sess.Values[rawTokenKey] = id.RawToken
	return sess.Save(r, w)
}

// Clear removes every value from the session and expires the cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	opts := *m.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(r, w)
}

// PutOAuthState records the anti-forgery state and return URL for a pending
// Google sign-in.
func (m *SessionManager) PutOAuthState(w http.ResponseWriter, r *http.Request, state, returnURL string) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[oauthStateKey] = state
	sess.Values[oauthReturnKey] = returnURL
	return sess.Save(r, w)
}

// TakeOAuthState returns and removes the pending oauth state. It is single use.
func (m *SessionManager) TakeOAuthState(w http.ResponseWriter, r *http.Request) (state, returnURL string, err error) {
	sess, _ := m.store.Get(r, m.name)
	state = getString(sess, oauthStateKey)
	returnURL = getString(sess, oauthReturnKey)
	if state == "" {
		return "", "", ErrNoOAuthState
	}
	delete(sess.Values, oauthStateKey)
	delete(sess.Values, oauthReturnKey)
	return state, returnURL, sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentSessionKey ctxKey = "currentSession"

// LoadSession injects the decoded Session into the request context.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, currentSessionKey, s)
}

// FromRequest returns the session placed by LoadSession, or Anonymous.
func FromRequest(r *http.Request) Session {
	s, _ := r.Context().Value(currentSessionKey).(Session)
	return s
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
