package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the response body. Every response reflects live session
// and ledger state, so none of them may be cached.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
