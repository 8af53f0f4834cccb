// internal/app/bootstrap/gateway/config.go
package gateway

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// minSessionKey is the shortest signing key accepted in production.
const minSessionKey = 32

// appConfigKeys are read from config files, EVENTHUB_GATEWAY_* environment
// variables, or flags of the same name.
var appConfigKeys = []config.AppKey{
	{Name: "users_endpoint", Default: "http://localhost:8081/v1/", Desc: "Users service base URL"},
	{Name: "events_endpoint", Default: "http://localhost:8082/v1/", Desc: "Events service base URL"},
	{Name: "posts_endpoint", Default: "http://localhost:8083/v1/", Desc: "Posts service base URL"},

	// Google sign-in
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret (server-side sign-in)"},
	{Name: "google_certs_url", Default: "", Desc: "JWKS URL for ID-token signatures (blank for Google's)"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL for OAuth callbacks"},

	// Session cookie
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "eventhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 90m)"},

	{Name: "auth_rate_limit", Default: 20, Desc: "Sign-in requests per minute per client IP"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Take the client IP from X-Forwarded-For (only behind a trusted proxy)"},
}

// LoadConfig loads WAFFLE core config and the gateway config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTHUB_GATEWAY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		UsersEndpoint:  appValues.String("users_endpoint"),
		EventsEndpoint: appValues.String("events_endpoint"),
		PostsEndpoint:  appValues.String("posts_endpoint"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		GoogleCertsURL:     appValues.String("google_certs_url"),
		BaseURL:            appValues.String("base_url"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		AuthRateLimit:     appValues.Int("auth_rate_limit"),
		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig fails fast on anything the gateway would otherwise only
// discover on the first request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	endpoints := []struct{ name, url string }{
		{"users_endpoint", appCfg.UsersEndpoint},
		{"events_endpoint", appCfg.EventsEndpoint},
		{"posts_endpoint", appCfg.PostsEndpoint},
	}
	for _, e := range endpoints {
		if !urlutil.IsValidAbsHTTPURL(e.url) {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", e.name, e.url)
		}
	}

	if appCfg.GoogleClientID == "" {
		return fmt.Errorf("google_client_id is required")
	}
	if !urlutil.IsValidAbsHTTPURL(appCfg.BaseURL) {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", appCfg.BaseURL)
	}
	if appCfg.GoogleClientSecret == "" {
		logger.Warn("google_client_secret is empty; /auth/google sign-in will fail at the token exchange")
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minSessionKey {
		return fmt.Errorf("session_key must be at least %d characters in production", minSessionKey)
	}
	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}
	if appCfg.AuthRateLimit < 0 {
		return fmt.Errorf("auth_rate_limit must not be negative")
	}
	return nil
}
