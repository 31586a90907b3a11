package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine
// parsing. All --json output uses this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output. These are stable strings an
// automation can switch on.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeSampleFailed   = "SAMPLE_FAILED"
	ErrCodeAlertNotFound  = "ALERT_NOT_FOUND"
	ErrCodeLedgerFailed   = "LEDGER_FAILED"
	ErrCodeExportFailed   = "EXPORT_FAILED"
	ErrCodeNotifyFailed   = "NOTIFY_FAILED"
	ErrCodeProcessFailed  = "PROCESS_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with code mapping.
// Wrapped structured errors map through their inner code.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if vErr, ok := errors.AsError(err); ok {
		return &JSONError{
			Code:       mapErrorCode(vErr.Code, vErr.Message),
			Message:    vErr.Message,
			Suggestion: vErr.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "no config") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSample:
		return ErrCodeSampleFailed
	case errors.ErrLedger:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "no alert") {
			return ErrCodeAlertNotFound
		}
		return ErrCodeLedgerFailed
	case errors.ErrExport:
		return ErrCodeExportFailed
	case errors.ErrNotify:
		return ErrCodeNotifyFailed
	case errors.ErrProc:
		return ErrCodeProcessFailed
	}

	return ErrCodeUnknown
}
