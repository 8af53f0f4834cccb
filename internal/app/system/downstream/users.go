package downstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/domain/models"
)

// Users talks to the users service. It satisfies the gateway's registry
// contract: Lookup and UpdateAuthorization behave like userstore.Store.
type Users struct {
	*Client
}

// NewUsers wraps c as a users-service client.
func NewUsers(c *Client) *Users { return &Users{Client: c} }

// Authenticate forwards a provider token to POST authenticate. The response
// is returned whatever its status so the gateway can relay it.
func (u *Users) Authenticate(ctx context.Context, token string) (*Response, error) {
	return u.PostForm(ctx, "authenticate", url.Values{"gauth_token": {token}})
}

// AuthenticatedUser decodes the user from a 201 authenticate response.
func AuthenticatedUser(resp *Response) (models.User, error) {
	var user models.User
	if resp.Status != http.StatusCreated {
		return user, fmt.Errorf("authenticate: status %d", resp.Status)
	}
	if err := resp.DecodeJSON(&user); err != nil {
		return user, fmt.Errorf("authenticate: decode user: %w", err)
	}
	return user, nil
}

// Lookup asks whether userID is an organizer.
func (u *Users) Lookup(ctx context.Context, userID string) (bool, error) {
	resp, err := u.PostForm(ctx, "authorization", url.Values{"user_id": {userID}})
	if err != nil {
		return false, err
	}
	if resp.Status != http.StatusOK {
		return false, u.unexpected("authorization lookup", resp)
	}
	var out struct {
		IsOrganizer bool `json:"is_organizer"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return false, apierr.Upstream(u.name, fmt.Errorf("decode authorization: %w", err))
	}
	return out.IsOrganizer, nil
}

// UpdateAuthorization sets the organizer flag on an existing user. A 404 from
// the service maps to userstore.ErrNotFound.
func (u *Users) UpdateAuthorization(ctx context.Context, userID string, value bool) error {
	path := "users/" + url.PathEscape(userID) + "/authorization"
	resp, err := u.PutJSON(ctx, path, map[string]bool{"is_organizer": value})
	if err != nil {
		return err
	}
	switch resp.Status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return userstore.ErrNotFound
	default:
		return u.unexpected("authorization update", resp)
	}
}
