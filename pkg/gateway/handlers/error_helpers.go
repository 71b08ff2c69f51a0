package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vango-go/vai-voice/pkg/core"
)

type errorEnvelope struct {
	Error *core.Error `json:"error"`
}

func writeErrorJSON(w http.ResponseWriter, status int, err *core.Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: err})
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeErrorJSON(w, http.StatusMethodNotAllowed,
		core.NewInvalidRequestError(fmt.Sprintf("method %s not allowed", r.Method)))
}
