package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes.
const envelopeVersion = 1

// SuccessEnvelope wraps every successful response body.
type SuccessEnvelope struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope wraps every error response body.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps handler output as {v, success, data} and
// errors as {v, success, error, code, details}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return ErrorEnvelope{
			Version: envelopeVersion,
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	case ErrorEnvelope, SuccessEnvelope:
		return v, nil
	}

	if !strings.HasPrefix(status, "2") {
		return v, nil
	}
	return SuccessEnvelope{Version: envelopeVersion, Success: true, Data: v}, nil
}

// writeError writes an error envelope from plain net/http middleware,
// outside of huma.
func writeError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.GetStatus())
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{ //nolint:errcheck // Client went away
		Version: envelopeVersion,
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	})
}
