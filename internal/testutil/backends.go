package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/features/accounts"
	"github.com/dalemusser/eventhub/internal/app/features/events"
	"github.com/dalemusser/eventhub/internal/app/features/posts"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Backends runs the users, events and posts services in-process on
// in-memory stores, for exercising the gateway end to end.
type Backends struct {
	Verifier *Verifier
	UserDocs *MemUsers
	Users    *userstore.Store
	Events   *MemEvents
	Posts    *MemPosts

	UsersURL  string
	EventsURL string
	PostsURL  string

	mu   sync.Mutex
	hits map[string]int
	down map[string]bool
}

// Service names used by Hits and Down.
const (
	UsersService  = "users"
	EventsService = "events"
	PostsService  = "posts"
)

// NewBackends starts the three services. Tokens in ids are accepted by the
// users service. Servers are closed when the test ends.
func NewBackends(t *testing.T, ids map[string]identity.Identity) *Backends {
	t.Helper()
	log := zap.NewNop()
	b := &Backends{
		Verifier: NewVerifier(ids),
		UserDocs: NewMemUsers(),
		Events:   &MemEvents{},
		Posts:    &MemPosts{},
		hits:     map[string]int{},
		down:     map[string]bool{},
	}
	b.Users = userstore.NewWithCollection(b.UserDocs)

	b.UsersURL = b.serve(t, UsersService, accounts.Routes(accounts.NewHandler(b.Verifier, b.Users, log)))
	b.EventsURL = b.serve(t, EventsService, events.Routes(events.NewHandler(b.Events, log)))
	b.PostsURL = b.serve(t, PostsService, posts.Routes(posts.NewHandler(b.Posts, log)))
	return b
}

func (b *Backends) serve(t *testing.T, name string, api http.Handler) string {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.hits[name]++
			down := b.down[name]
			b.mu.Unlock()
			if down {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Mount("/v1", api)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1/"
}

// Hits returns how many requests service has received.
func (b *Backends) Hits(service string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[service]
}

// TotalHits returns the requests received by all three services.
func (b *Backends) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.hits {
		n += c
	}
	return n
}

// Down makes service answer 503 to every request until called with false.
func (b *Backends) Down(service string, down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down[service] = down
}

// Clients returns gateway clients pointed at the three services.
func (b *Backends) Clients(t *testing.T) (*downstream.Users, *downstream.Events, *downstream.Posts) {
	t.Helper()
	log := zap.NewNop()
	mk := func(name, url string) *downstream.Client {
		c, err := downstream.New(name, url, nil, log)
		if err != nil {
			t.Fatalf("downstream.New(%s): %v", name, err)
		}
		return c
	}
	return downstream.NewUsers(mk(UsersService, b.UsersURL)),
		downstream.NewEvents(mk(EventsService, b.EventsURL)),
		downstream.NewPosts(mk(PostsService, b.PostsURL))
}
