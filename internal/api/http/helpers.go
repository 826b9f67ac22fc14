package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-norms/internal/age"
	"github.com/mind-engage/mindengage-norms/internal/dossier"
	"github.com/mind-engage/mindengage-norms/internal/logging"
)

// validate checks request bodies. "normdate" accepts an empty string or
// a date age.ParseDate understands.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("normdate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, ok := age.ParseDate(s)
		return ok
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// storeError maps dossier store errors to a status.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dossier.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, dossier.ErrDuplicateCode):
		http.Error(w, "code already in use", http.StatusConflict)
	case errors.Is(err, dossier.ErrCodeRequired):
		http.Error(w, "code required", http.StatusBadRequest)
	default:
		logging.Log.WithError(err).Error("dossier store")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
