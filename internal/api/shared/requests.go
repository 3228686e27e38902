package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBodySize limits request bodies to 1 MiB.
const maxRequestBodySize = 1 << 20

// DecodeJSON decodes the request body into v, rejecting unknown fields
// and oversized bodies.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}
