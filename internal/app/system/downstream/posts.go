package downstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/domain/models"
)

// Posts talks to the posts service.
type Posts struct {
	*Client
}

// NewPosts wraps c as a posts-service client.
func NewPosts(c *Client) *Posts { return &Posts{Client: c} }

type postList struct {
	Posts    []models.Post `json:"posts"`
	NumPosts int           `json:"num_posts"`
}

// List returns every post.
func (p *Posts) List(ctx context.Context) ([]models.Post, error) {
	return p.list(ctx, "", "list posts")
}

// ByEvent returns the posts attached to eventID.
func (p *Posts) ByEvent(ctx context.Context, eventID string) ([]models.Post, error) {
	return p.list(ctx, "by_event/"+url.PathEscape(eventID), "list posts by event")
}

func (p *Posts) list(ctx context.Context, path, op string) ([]models.Post, error) {
	resp, err := p.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, p.unexpected(op, resp)
	}
	var out postList
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, apierr.Upstream(p.name, fmt.Errorf("decode posts: %w", err))
	}
	return out.Posts, nil
}

// Post returns one post. A 404 becomes apierr.KindNotFound.
func (p *Posts) Post(ctx context.Context, postID string) (models.Post, error) {
	var post models.Post
	resp, err := p.Get(ctx, url.PathEscape(postID), nil)
	if err != nil {
		return post, err
	}
	switch resp.Status {
	case http.StatusOK:
	case http.StatusNotFound:
		return post, apierr.NotFound("post not found")
	default:
		return post, p.unexpected("get post", resp)
	}
	if err := resp.DecodeJSON(&post); err != nil {
		return post, apierr.Upstream(p.name, fmt.Errorf("decode post: %w", err))
	}
	return post, nil
}

// Add forwards a new post. The response is returned for relaying.
func (p *Posts) Add(ctx context.Context, form url.Values) (*Response, error) {
	return p.PostForm(ctx, "add", form)
}

// Delete asks the posts service to delete postID on behalf of authorID.
func (p *Posts) Delete(ctx context.Context, postID, authorID string) (*Response, error) {
	return p.DeleteForm(ctx, url.PathEscape(postID), url.Values{"author_id": {authorID}})
}
