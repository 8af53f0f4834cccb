// internal/app/bootstrap/gateway/appconfig.go
package gateway

import "time"

// AppConfig holds the gateway configuration.
//
// The gateway owns no data. It reaches the three backing services over HTTP,
// keeps the caller's identity in a signed session cookie, and runs the Google
// sign-in flow.
type AppConfig struct {
	// Backing services, each rooted at its /v1/ prefix
	UsersEndpoint  string // e.g., http://users:8080/v1/
	EventsEndpoint string
	PostsEndpoint  string

	// Google sign-in
	GoogleClientID     string
	GoogleClientSecret string // only needed for the server-side code flow
	GoogleCertsURL     string // blank means Google's published keys
	BaseURL            string // public origin used to build the OAuth callback

	// Session cookie
	SessionKey    string // signing key (32+ random chars)
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Sign-in endpoints share one per-IP budget
	AuthRateLimit     int  // requests per minute
	TrustProxyHeaders bool // client IP comes from X-Forwarded-For; off unless behind a proxy
}

// DBDeps is empty; the gateway has no database of its own.
type DBDeps struct{}
