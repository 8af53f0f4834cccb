package accounts

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
)

const maxBody = 4 << 10

// decodeAuthorization reads {"is_organizer": <bool>}. A missing field and a
// non-boolean value are both malformed.
func decodeAuthorization(r *http.Request) (bool, error) {
	var body struct {
		IsOrganizer json.RawMessage `json:"is_organizer"`
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&body); err != nil {
		return false, apierr.Malformed("body must be a JSON object")
	}
	if len(body.IsOrganizer) == 0 || string(body.IsOrganizer) == "null" {
		return false, apierr.Malformed("missing required fields", "is_organizer")
	}
	var value bool
	if err := json.Unmarshal(body.IsOrganizer, &value); err != nil {
		return false, apierr.Malformed("is_organizer must be a boolean")
	}
	return value, nil
}
