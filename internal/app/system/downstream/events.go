package downstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/domain/models"
)

// Events talks to the events service.
type Events struct {
	*Client
}

// NewEvents wraps c as an events-service client.
func NewEvents(c *Client) *Events { return &Events{Client: c} }

type eventList struct {
	Events    []models.Event `json:"events"`
	NumEvents int            `json:"num_events"`
}

// List returns every event. Any non-200 status is fatal for the page.
func (e *Events) List(ctx context.Context) ([]models.Event, error) {
	resp, err := e.Get(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, e.unexpected("list events", resp)
	}
	var out eventList
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, apierr.Upstream(e.name, fmt.Errorf("decode events: %w", err))
	}
	return out.Events, nil
}

// Event returns one event. A 404 becomes apierr.KindNotFound.
func (e *Events) Event(ctx context.Context, eventID string) (models.Event, error) {
	var ev models.Event
	resp, err := e.Get(ctx, url.PathEscape(eventID), nil)
	if err != nil {
		return ev, err
	}
	switch resp.Status {
	case http.StatusOK:
	case http.StatusNotFound:
		return ev, apierr.NotFound("event not found")
	default:
		return ev, e.unexpected("get event", resp)
	}
	if err := resp.DecodeJSON(&ev); err != nil {
		return ev, apierr.Upstream(e.name, fmt.Errorf("decode event: %w", err))
	}
	return ev, nil
}

// Add forwards a new event. The response is returned for relaying.
func (e *Events) Add(ctx context.Context, form url.Values) (*Response, error) {
	return e.PostForm(ctx, "add", form)
}
