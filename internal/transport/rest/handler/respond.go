package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Tenniee/imposter/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGameError maps the command error taxonomy onto HTTP status codes.
func writeGameError(w http.ResponseWriter, err error) {
	switch game.KindOf(err) {
	case game.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case game.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case game.KindPreconditionFailed:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
