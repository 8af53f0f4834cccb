// Package orchestrator resolves who is calling the gateway and decides
// whether the requested action may proceed.
//
// Reads (listing events and posts) always proceed and only use the caller to
// decorate the page. Gated mutations require an identified caller who is an
// organizer or owns the resource. Changing a user's organizer flag requires a
// freshly verified token from an organizer.
package orchestrator

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Verifier checks a provider token. identity.Verifier implements it.
type Verifier interface {
	Verify(ctx context.Context, token string) (identity.Identity, error)
}

// Registry answers and changes organizer status. userstore.Store and the
// users-service client both implement it; UpdateAuthorization must return
// userstore.ErrNotFound for an unknown user.
type Registry interface {
	Lookup(ctx context.Context, userID string) (bool, error)
	UpdateAuthorization(ctx context.Context, userID string, value bool) error
}

// Caller is the resolved identity of a request: anonymous or verified.
type Caller struct {
	id *identity.Identity
}

// Identity returns the verified identity, or false for an anonymous caller.
func (c Caller) Identity() (identity.Identity, bool) {
	if c.id == nil {
		return identity.Identity{}, false
	}
	return *c.id, true
}

// IsAnonymous reports whether no identity was established.
func (c Caller) IsAnonymous() bool { return c.id == nil }

// Viewer is the caller as shown on a page.
type Viewer struct {
	SignedIn    bool   `json:"signed_in"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	IsOrganizer bool   `json:"is_organizer"`
}

// Orchestrator sequences the session, verifier and registry for every
// request that needs an identity.
type Orchestrator struct {
	verifier Verifier
	registry Registry
	log      *zap.Logger
}

// New builds an Orchestrator.
func New(v Verifier, r Registry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{verifier: v, registry: r, log: logger}
}

// ResolveCaller re-validates the token cached in s. Every verification
// failure, including an unreachable provider, yields an anonymous caller.
func (o *Orchestrator) ResolveCaller(ctx context.Context, s auth.Session) Caller {
	sid, ok := s.Identity()
	if !ok {
		metrics.RecordCaller("anonymous")
		return Caller{}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Provider(), o.log, "verify session token")
	defer cancel()

	id, err := o.verifier.Verify(ctx, sid.RawToken)
	if err != nil {
		if errors.Is(err, identity.ErrProviderUnavailable) {
			metrics.RecordCaller("provider_error")
			o.log.Warn("identity provider unreachable; treating caller as anonymous",
				zap.String("session_user", sid.UserID), zap.Error(err))
		} else {
			metrics.RecordCaller("rejected")
			o.log.Debug("session token rejected; treating caller as anonymous",
				zap.String("session_user", sid.UserID), zap.Error(err))
		}
		return Caller{}
	}

	metrics.RecordCaller("identified")
	return Caller{id: &id}
}

// Viewer resolves the caller and, when identified, looks up their organizer
// flag. A registry failure is returned so the page fails as a whole.
func (o *Orchestrator) Viewer(ctx context.Context, s auth.Session) (Viewer, error) {
	caller := o.ResolveCaller(ctx, s)
	id, ok := caller.Identity()
	if !ok {
		return Viewer{}, nil
	}
	isOrganizer, err := o.lookup(ctx, id.SubjectID)
	if err != nil {
		return Viewer{}, err
	}
	return Viewer{SignedIn: true, UserID: id.SubjectID, Name: id.Name, IsOrganizer: isOrganizer}, nil
}

// Aggregate runs every fetch concurrently and fails if any one fails. The
// shared context is canceled on the first failure.
func Aggregate(ctx context.Context, fetches ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fetch := range fetches {
		g.Go(func() error { return fetch(gctx) })
	}
	return g.Wait()
}

// Requirement is what a gated mutation demands of its caller.
type Requirement struct {
	name   string
	author func(context.Context) (string, error)
}

// RequireOrganizer admits callers whose organizer flag is set.
func RequireOrganizer() Requirement {
	return Requirement{name: "organizer"}
}

// RequireOwner admits the caller whose id equals the resource's author id.
// author is called only after the caller has been identified.
func RequireOwner(author func(context.Context) (string, error)) Requirement {
	return Requirement{name: "owner", author: author}
}

// Authorize resolves the caller from s and checks req. It fails with
// NotAuthenticated before touching the registry or any resource when the
// caller is anonymous, and with NotAuthorized when the check fails.
func (o *Orchestrator) Authorize(ctx context.Context, s auth.Session, req Requirement) (identity.Identity, error) {
	id, ok := o.ResolveCaller(ctx, s).Identity()
	if !ok {
		metrics.RecordDecision(req.name, "not_authenticated")
		return identity.Identity{}, apierr.NotAuthenticated("sign in to continue")
	}

	var (
		allowed bool
		err     error
	)
	if req.author != nil {
		var authorID string
		authorID, err = req.author(ctx)
		allowed = err == nil && authorID == id.SubjectID
	} else {
		allowed, err = o.lookup(ctx, id.SubjectID)
	}
	if err != nil {
		metrics.RecordDecision(req.name, "error")
		return identity.Identity{}, err
	}
	if !allowed {
		metrics.RecordDecision(req.name, "not_authorized")
		o.log.Info("gated action denied",
			zap.String("requirement", req.name),
			zap.String("user_id", id.SubjectID))
		return identity.Identity{}, apierr.NotAuthorized("you do not have permission to do that")
	}

	metrics.RecordDecision(req.name, "allowed")
	return id, nil
}

// UpdateAuthorization sets target's organizer flag on behalf of the holder of
// token. The token is verified afresh; the session is not consulted. An
// unauthorized caller is refused even when target is themself.
func (o *Orchestrator) UpdateAuthorization(ctx context.Context, token, target string, value bool) (bool, error) {
	vctx, cancel := timeouts.WithTimeout(ctx, timeouts.Provider(), o.log, "verify authorization token")
	caller, err := o.verifier.Verify(vctx, token)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrProviderUnavailable):
			return false, apierr.Upstream("identity provider", err)
		case errors.Is(err, identity.ErrMissingClaim):
			metrics.RecordDecision("authorization_update", "malformed")
			return false, apierr.Malformed("token lacks the subject id or name")
		}
		metrics.RecordDecision("authorization_update", "not_authenticated")
		return false, apierr.NotAuthenticated("token could not be verified")
	}

	allowed, err := o.lookup(ctx, caller.SubjectID)
	if err != nil {
		metrics.RecordDecision("authorization_update", "error")
		return false, err
	}
	if !allowed {
		metrics.RecordDecision("authorization_update", "not_authorized")
		o.log.Warn("authorization update refused",
			zap.String("caller", caller.SubjectID),
			zap.String("target", target),
			zap.Bool("value", value))
		return false, apierr.NotAuthorized("only organizers can change authorization")
	}
	metrics.RecordDecision("authorization_update", "allowed")

	sctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), o.log, "update authorization")
	defer cancel()
	if err := o.registry.UpdateAuthorization(sctx, target, value); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return false, apierr.TargetNotFound(target)
		}
		return false, asUpstream("users registry", err)
	}

	if target == caller.SubjectID && !value {
		o.log.Warn("organizer revoked their own authorization", zap.String("user_id", target))
	}
	o.log.Info("authorization updated",
		zap.String("caller", caller.SubjectID),
		zap.String("target", target),
		zap.Bool("is_organizer", value))
	return value, nil
}

func (o *Orchestrator) lookup(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), o.log, "authorization lookup")
	defer cancel()
	ok, err := o.registry.Lookup(ctx, userID)
	if err != nil {
		return false, asUpstream("users registry", err)
	}
	return ok, nil
}

// asUpstream classifies err as UpstreamUnavailable unless it already has a kind.
func asUpstream(what string, err error) error {
	var e *apierr.Error
	if errors.As(err, &e) {
		return err
	}
	return apierr.Upstream(what, err)
}
