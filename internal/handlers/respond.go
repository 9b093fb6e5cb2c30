package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError sends the {"message": ...} error body used by every API route.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"message": message})
}

// pathID parses a numeric route variable.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
