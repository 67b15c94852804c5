package status

import (
	"encoding/json"
	"net/http"
)

// Handler returns an http.Handler serving a JSON snapshot of s.
func Handler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
