package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/drivenlabs/membergate/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// maxJSONBody caps request bodies; bulk invites are the largest payload.
const maxJSONBody = 1 << 20

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	// Field names the offending input field, if any.
	Field string
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if p.Field != "" {
		body["field"] = p.Field
	}
	WriteJSON(w, p.Code, body)
}

// WriteServiceError maps a service error to a status by its AppError code.
// Errors without a known code are written as 500 with fallback as the error code.
// Only the AppError message reaches the client, never its cause.
func WriteServiceError(w http.ResponseWriter, err error, fallback string) {
	p := ErrorParams{Err: errors.New(errs.PublicMessage(err)), ErrCode: fallback, Field: errs.GetField(err)}
	switch errs.GetCode(err) {
	case errs.ErrCodeValidation:
		p.Code, p.ErrCode = http.StatusBadRequest, "validation_failed"
	case errs.ErrCodeNotFound:
		p.Code, p.ErrCode = http.StatusNotFound, "not_found"
	case errs.ErrCodeConflict:
		p.Code, p.ErrCode = http.StatusConflict, "conflict"
	case errs.ErrCodeTimeout:
		p.Code, p.ErrCode = http.StatusGatewayTimeout, "timeout"
	default:
		p.Code = http.StatusInternalServerError
		p.Err = errInternal
	}
	WriteError(w, p)
}
