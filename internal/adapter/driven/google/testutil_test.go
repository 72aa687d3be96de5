package google

import (
	"encoding/json"
	"net/http"
)

// jsonDecode decodes a request body for test assertions.
func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
