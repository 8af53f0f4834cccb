package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleCertsURL is where Google publishes the keys that sign its ID tokens.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// GoogleSource verifies Google ID tokens with go-oidc against Google's
// published signing keys. Issuer checking is left to the Verifier.
type GoogleSource struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleSource builds a source expecting tokens minted for clientID.
// certsURL may be empty to use GoogleCertsURL. The client is used for key
// fetches and should carry a bounded timeout; nil means a default client.
func NewGoogleSource(ctx context.Context, clientID, certsURL string, client *http.Client) *GoogleSource {
	if certsURL == "" {
		certsURL = GoogleCertsURL
	}
	ctx = oidc.ClientContext(ctx, keyFetchClient(client))
	keys := &watchedKeySet{inner: oidc.NewRemoteKeySet(ctx, certsURL)}
	return &GoogleSource{
		verifier: oidc.NewVerifier(GoogleIssuers[1], keys, &oidc.Config{
			ClientID:        clientID,
			SkipIssuerCheck: true,
		}),
	}
}

// Claims verifies raw and returns its claim set.
func (s *GoogleSource) Claims(ctx context.Context, raw string) (map[string]any, error) {
	var note fetchNote
	tok, err := s.verifier.Verify(context.WithValue(ctx, fetchNoteKey{}, &note), raw)
	if err != nil {
		if note.unreachable != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, note.unreachable)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims := map[string]any{}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// The key set records transport failures on a per-call note carried in the
// context, so Claims can tell an unreachable provider from a bad token.
type fetchNoteKey struct{}

type fetchNote struct {
	unreachable error
}

type watchedKeySet struct {
	inner oidc.KeySet
}

func (k *watchedKeySet) VerifySignature(ctx context.Context, jwt string) ([]byte, error) {
	payload, err := k.inner.VerifySignature(ctx, jwt)
	if err != nil && isTransportError(err) {
		if n, ok := ctx.Value(fetchNoteKey{}).(*fetchNote); ok {
			n.unreachable = err
		}
	}
	return payload, err
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	var fetchErr *keyFetchError
	return errors.As(err, &fetchErr) ||
		errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// keyFetchError reports a non-2xx answer from the key endpoint. go-oidc
// would otherwise flatten it into a string.
type keyFetchError struct {
	Status int
}

func (e *keyFetchError) Error() string {
	return fmt.Sprintf("key endpoint answered %d", e.Status)
}

// keyFetchClient copies client with a transport that turns non-2xx key
// responses into keyFetchError.
func keyFetchClient(client *http.Client) *http.Client {
	c := &http.Client{}
	if client != nil {
		*c = *client
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.Transport = keyFetchTransport{next: next}
	return c
}

type keyFetchTransport struct {
	next http.RoundTripper
}

func (t keyFetchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &keyFetchError{Status: resp.StatusCode}
	}
	return resp, nil
}
