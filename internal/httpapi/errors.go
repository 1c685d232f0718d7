package httpapi

import (
	"encoding/json"
	"net/http"

	"artbot/internal/pipeline"
	"artbot/pkg/types"
)

// errorStatus maps a pipeline failure to a response status and the outcome
// label used in metrics and the error body. The status follows the outcome
// alone, so every failure of one kind gets the same code.
func errorStatus(err error) (int, string) {
	kind := pipeline.Outcome(err)
	switch kind {
	case "invalid":
		return http.StatusBadRequest, kind
	case "timeout":
		return http.StatusGatewayTimeout, kind
	case "http_status", "parse", "insufficient":
		return http.StatusBadGateway, kind
	default:
		return http.StatusInternalServerError, kind
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSONErrorKind(w, status, msg, "")
}

func writeJSONErrorKind(w http.ResponseWriter, status int, msg, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}
