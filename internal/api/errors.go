package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mailroom/mailroom/pkg/mailer"
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses: caller mistakes
// are 400s, anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mailer.ErrValidation),
		errors.Is(err, mailer.ErrInvalidAddress),
		errors.Is(err, mailer.ErrNoRecipients):
		status = http.StatusBadRequest
	case errors.Is(err, mailer.ErrTemplateNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Status: "error", Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
