package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidScope is returned for an install scope the backend does not accept.
var ErrInvalidScope = errors.New("invalid install scope")

// Error is a non-2xx response from the backend.
type Error struct {
	Op         string // client operation, e.g. "list characters"
	StatusCode int
	Message    string // backend "error" field, or the status text
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorMessage extracts {"error": "..."} from a body, falling back to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
