package respond

import (
	"encoding/json"
	"net/http"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, errorType, message string) {
	JSON(w, status, ErrorResponse{Error: errorType, Message: message})
}

// Failure writes the error response for a non-OK datastore status. Backend
// error details are not echoed to clients.
func Failure(w http.ResponseWriter, status datastore.Status, what string) {
	switch status {
	case datastore.StatusNotFound:
		Error(w, http.StatusNotFound, "not_found", what+" not found")
	case datastore.StatusUnavailable:
		Error(w, http.StatusServiceUnavailable, "datastore_unavailable", "Datastore is not configured or unreachable")
	case datastore.StatusQueryError:
		Error(w, http.StatusBadGateway, "query_failed", "Datastore rejected the request")
	default:
		Error(w, http.StatusServiceUnavailable, "transport_failed", "Datastore could not be reached")
	}
}
