// Package formutil reads form submissions for the JSON handlers.
//
// Handlers call Parse once, then Required to collect the fields they need.
// Every blank required field is reported together so the client can fix the
// request in one round trip:
//
//	if err := formutil.Parse(r); err != nil { ... }
//	vals, missing := formutil.Required(r, "gauth_token", "target_user_id")
//	if len(missing) > 0 {
//		apierr.Write(w, apierr.Malformed("missing required fields", missing...), h.Log)
//		return
//	}
package formutil

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// MaxMemory bounds the in-memory part of a multipart form.
const MaxMemory = 1 << 20

// Parse populates r.Form from the query string and the body. Unlike
// http.Request.ParseForm it also reads url-encoded DELETE bodies.
func Parse(r *http.Request) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mt == "multipart/form-data":
		if err := r.ParseMultipartForm(MaxMemory); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	case r.Method == http.MethodDelete && mt == "application/x-www-form-urlencoded" && r.Body != nil:
		b, err := io.ReadAll(io.LimitReader(r.Body, MaxMemory))
		if err != nil {
			return fmt.Errorf("read form body: %w", err)
		}
		body, err := url.ParseQuery(string(b))
		if err != nil {
			return fmt.Errorf("parse form body: %w", err)
		}
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		r.PostForm = body
		for k, vs := range body {
			r.Form[k] = append(vs, r.Form[k]...)
		}
		return nil
	default:
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		return nil
	}
}

// Required returns the trimmed value of each name and, in order, the names
// whose value is blank.
func Required(r *http.Request, names ...string) (map[string]string, []string) {
	vals := make(map[string]string, len(names))
	var missing []string
	for _, n := range names {
		v := strings.TrimSpace(r.FormValue(n))
		if v == "" {
			missing = append(missing, n)
			continue
		}
		vals[n] = v
	}
	return vals, missing
}

// Bool parses a boolean form value. Only the literals "true" and "false"
// are accepted; "1", "T" and the like are errors rather than coerced.
func Bool(v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", v)
}

// Clone copies r.PostForm so a handler can add or override values before
// forwarding the submission elsewhere.
func Clone(r *http.Request) url.Values {
	out := make(url.Values, len(r.PostForm))
	for k, vs := range r.PostForm {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
