package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

// Stable error codes returned in {"error":{"code":...}}.
const (
	codeInvalidJSON        = "invalid_json"
	codeInvalidRequest     = "invalid_request"
	codeInvalidEmail       = "invalid_email"
	codeWeakPassword       = "weak_password"
	codeEmailTaken         = "email_taken"
	codeInvalidCredentials = "invalid_credentials"
	codeAccountInactive    = "account_inactive"
	codeSignupDisabled     = "signup_disabled"
	codeRateLimited        = "rate_limited"
	codeServerBusy         = "server_busy"
	codeServerError        = "server_error"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: msg}})
}

var errNotJSON = errors.New("content type is not application/json")

// decodeJSON reads exactly one JSON object of at most maxBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return errNotJSON
		}
	}
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
