package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/Dan9191/virtualcard/internal/apperr"
)

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes err with its mapped HTTP status. Rate-limit
// rejections carry the raw message as a plain-text body; everything else
// uses the {"error": message} shape.
func RespondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if apperr.IsKind(err, apperr.RateLimited) {
		http.Error(w, err.Error(), status)
		return
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
