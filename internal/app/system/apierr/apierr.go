// Package apierr is the error taxonomy shared by the gateway and the backing
// services, plus the JSON writer that turns it into HTTP responses.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Kind classifies a failure at the HTTP edge.
type Kind int

const (
	KindInternal Kind = iota
	KindNotAuthenticated
	KindNotAuthorized
	KindTargetNotFound
	KindMalformedRequest
	KindUpstreamUnavailable
	KindNotFound
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindTargetNotFound, KindMalformedRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNotAuthorized:
		return "not_authorized"
	case KindTargetNotFound:
		return "target_not_found"
	case KindMalformedRequest:
		return "malformed_request"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified failure. Err is kept for logging and is never sent
// to the client.
type Error struct {
	Kind    Kind
	Message string
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotAuthenticated reports a gated action attempted without a valid identity.
func NotAuthenticated(msg string) *Error {
	return &Error{Kind: KindNotAuthenticated, Message: msg}
}

// NotAuthorized reports a verified caller lacking the required permission.
func NotAuthorized(msg string) *Error {
	return &Error{Kind: KindNotAuthorized, Message: msg}
}

// TargetNotFound reports an authorization update aimed at an unknown user.
func TargetNotFound(userID string) *Error {
	return &Error{Kind: KindTargetNotFound, Message: fmt.Sprintf("user %q does not exist", userID)}
}

// NotFound reports a missing record on a read or delete path.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Malformed reports missing or invalid request fields.
func Malformed(msg string, missing ...string) *Error {
	if msg == "" && len(missing) > 0 {
		msg = "missing required fields: " + strings.Join(missing, ", ")
	}
	return &Error{Kind: KindMalformedRequest, Message: msg, Missing: missing}
}

// Upstream reports that a downstream dependency could not be reached.
func Upstream(what string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: what + " unavailable", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Relayed carries a downstream response that is passed back to the browser
// with its status and body unchanged.
type Relayed struct {
	Status      int
	ContentType string
	Body        []byte
}

func (r *Relayed) Error() string {
	return fmt.Sprintf("downstream responded %d", r.Status)
}

type body struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// Write renders err as an HTTP response. Relayed errors are written verbatim,
// classified errors as JSON, and anything else as a 500.
func Write(w http.ResponseWriter, err error, logger *zap.Logger) {
	var rel *Relayed
	if errors.As(err, &rel) {
		WriteRelayed(w, rel)
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		e = Internal("internal error", err)
	}

	status := e.Kind.Status()
	if status >= 500 {
		logger.Error("request failed", zap.String("kind", e.Kind.String()), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("kind", e.Kind.String()), zap.String("message", e.Message))
	}

	WriteJSON(w, status, body{Error: e.Kind.String(), Message: e.Message, Missing: e.Missing})
}

// WriteRelayed copies a downstream response to w.
func WriteRelayed(w http.ResponseWriter, rel *Relayed) {
	if rel.ContentType != "" {
		w.Header().Set("Content-Type", rel.ContentType)
	}
	w.WriteHeader(rel.Status)
	_, _ = w.Write(rel.Body)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
