package server

import (
	"encoding/json"
	"net/http"

	"github.com/nightconcept/cratesmith/internal/core/generator"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// StatusFor maps a generation failure to an HTTP status.
func StatusFor(kind generator.Kind) int {
	switch kind {
	case generator.KindStarterLookup:
		return http.StatusNotFound
	case generator.KindDependencyConflict,
		generator.KindManifestParse,
		generator.KindManifestSection,
		generator.KindDependencySection:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	kind := generator.KindOf(err)
	code := string(kind)
	if code == "" {
		code = "INTERNAL"
	}
	status := StatusFor(kind)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal paths stay in the log.
		message = "project generation failed"
	}
	writeError(w, r, status, code, message)
}
