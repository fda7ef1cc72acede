package backend

import (
	"encoding/json"
	"errors"
	"strings"
)

// APIError is a non-2xx answer from the backend. Message is already
// extracted from the body.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// ConflictError is the 409 a time-off request gets when it overlaps
// existing time-off or appointments.
type ConflictError struct {
	Detail    string
	Conflicts TimeOffConflicts
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return "conflicts detected"
	}
	return e.Detail
}

// IsConflict unwraps a *ConflictError from err.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsAPIError unwraps an *APIError from err.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// fieldKeys are consulted in order after detail and error.
var fieldKeys = []string{"non_field_errors", "start_at", "duration_minutes", "service_type", "customer"}

// ExtractError pulls a human message out of an error body. It accepts a
// JSON string, a JSON array (first element) or an object where detail,
// error and the field arrays are tried in that order. Anything else gives
// fallback.
func ExtractError(body []byte, fallback string) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return fallback
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		if strings.HasPrefix(raw, "<") {
			return fallback
		}
		return raw
	}

	switch v := data.(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		if s := firstString(v); s != "" {
			return s
		}
	case map[string]any:
		if s, ok := v["detail"].(string); ok && s != "" {
			return s
		}
		if s, ok := v["error"].(string); ok && s != "" {
			return s
		}
		for _, key := range fieldKeys {
			if arr, ok := v[key].([]any); ok {
				if s := firstString(arr); s != "" {
					return s
				}
			}
		}
	}
	return fallback
}

func firstString(arr []any) string {
	if len(arr) == 0 {
		return ""
	}
	s, _ := arr[0].(string)
	return s
}
