package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rileyhilliard/hublink/internal/connect"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
// Code is the error classification, e.g. "PERMISSION_DENIED" or "LIMIT".
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code errors.Code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       string(code),
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError. Structured errors keep
// their code; anything else is reported as UNKNOWN.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var hlErr *errors.Error
	if errors.As(err, &hlErr) {
		out := &JSONError{
			Code:       string(hlErr.Code),
			Message:    hlErr.Message,
			Suggestion: hlErr.Suggestion,
		}
		if hlErr.Cause != nil {
			out.Details = map[string]string{"cause": hlErr.Cause.Error()}
		}
		return out
	}

	return &JSONError{
		Code:    string(errors.ErrUnknown),
		Message: err.Error(),
	}
}

// connectionJSON is the machine form of a registry record. Credentials are
// never printed; the fingerprint identifies them instead.
type connectionJSON struct {
	TargetID    int64      `json:"target_id"`
	Name        string     `json:"name,omitempty"`
	Fingerprint string     `json:"fingerprint"`
	Enabled     bool       `json:"enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func recordJSON(rec registry.Record, name string) connectionJSON {
	return connectionJSON{
		TargetID:    rec.TargetID,
		Name:        name,
		Fingerprint: rec.Fingerprint(),
		Enabled:     rec.Enabled,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// connectResultJSON is the data of a successful connect.
type connectResultJSON struct {
	TargetID         int64          `json:"target_id"`
	Name             string         `json:"name,omitempty"`
	AlreadyConnected bool           `json:"already_connected"`
	Connection       connectionJSON `json:"connection"`
}

// writeOutcomeJSON writes a connect outcome as an envelope.
func writeOutcomeJSON(w io.Writer, o connect.Outcome) error {
	if !o.Succeeded() {
		return WriteJSONFromError(w, o.Err)
	}
	res := connectResultJSON{
		TargetID:         o.Target.ID,
		Name:             o.Target.Name,
		AlreadyConnected: o.AlreadyConnected,
	}
	if o.Record != nil {
		res.TargetID = o.Record.TargetID
		res.Connection = recordJSON(*o.Record, o.Target.Name)
	}
	return WriteJSONSuccess(w, res)
}
