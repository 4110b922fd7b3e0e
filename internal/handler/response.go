package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers with the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "listing not found or already sold"}
//
// The mini-app script only looks at "success" and shows "error" verbatim,
// so the message must always be something a user can read.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/giftmarket/internal/apperror"
)

// maxBodyBytes caps request bodies. The largest legitimate body is a listing.
const maxBodyBytes = 64 << 10

// Envelope is the response shape shared by all JSON endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set afterwards is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeOK sends a 200 success envelope. data may be nil.
func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// writeError maps a domain error to an HTTP status and sends the failure envelope.
//
// errors.Is walks the whole chain, so a service error like
// fmt.Errorf("buy listing 4: %w", apperror.NotFoundMessage(...)) still maps to 404.
// Store failures never reach the client verbatim: driver messages can carry
// SQL or file paths.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !errors.Is(err, apperror.ErrInternal) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest // 400
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
		}

		writeJSON(w, status, Envelope{Error: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, Envelope{Error: apperror.Internal(err).Message})
}

// decodeJSON reads a JSON object from the request body into dst.
// Unknown fields are ignored; the page sends more than each endpoint reads.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// flexString accepts a JSON string or a JSON number and keeps its text.
//
// Telegram hands the page numeric user ids, and the page script posts
// them as numbers, while ids typed into forms arrive as strings:
//
//	{"user_id": 123456789}   → "123456789"
//	{"user_id": "123456789"} → "123456789"
//	{"price": 5.5}           → "5.5"
//
// null and a missing field both decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return string(f)
}
