// Package httputil writes JSON envelopes and maps domain errors to HTTP responses.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "homedisclose/pkg/domain-errors"
)

// maxBodyBytes caps request bodies; signature blobs are the largest payloads.
const maxBodyBytes = 2 << 20

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Validation       any    `json:"validation,omitempty"`
}

// ValidationDetailer is implemented by errors that carry a structured
// validation payload for the client.
type ValidationDetailer interface {
	ValidationDetails() any
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the error envelope. Internal errors never
// expose their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{
		Error:            string(code),
		ErrorDescription: dErrors.MessageOf(err),
	}
	var detailer ValidationDetailer
	if code == dErrors.CodeValidation && errors.As(err, &detailer) {
		resp.Validation = detailer.ValidationDetails()
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// DecodeJSON decodes a bounded request body into v. Unknown fields are ignored;
// an empty body is a bad request.
func DecodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if err == io.EOF {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
