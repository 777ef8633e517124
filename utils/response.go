package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"potluck/apperr"
)

type M map[string]interface{}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"error": msg})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithAppError writes err as {"error", "code"} with the status of its
// kind. Unclassified errors are logged and reported generically.
func RespondWithAppError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal && logger != nil {
		logger.Error("request failed", "error", err)
	}
	RespondWithJSON(w, apperr.HTTPStatus(kind), M{
		"error": apperr.MessageOf(err),
		"code":  string(kind),
	})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.Invalid, "invalid request body", err)
	}
	return nil
}
