// Package json writes the ledger's JSON responses. Kept deliberately tiny:
// handlers own their response shapes, this owns the headers.
package json

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes the response with the given status. The status line is
// already on the wire if encoding fails, so the error body is best-effort.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
