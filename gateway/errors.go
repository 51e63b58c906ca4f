package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any StatusError carrying a 401. Callers use
// errors.Is(err, ErrUnauthorized) to pick their policy: list views degrade
// to an empty result, mutating forms surface the failure, the guard
// redirects to login.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	// Detail is the backend-provided message, surfaced verbatim in
	// dialogs so a conflict or validation failure explains itself.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("console/gateway: backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("console/gateway: backend returned %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// detailBody is the error envelope the backend uses.
type detailBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func newStatusError(code int, body []byte) *StatusError {
	e := &StatusError{StatusCode: code}

	var d detailBody
	if err := json.Unmarshal(body, &d); err == nil {
		switch {
		case d.Detail != "":
			e.Detail = d.Detail
		case d.Error != "":
			e.Detail = d.Error
		}
	}
	if e.Detail == "" {
		e.Detail = strings.TrimSpace(string(body))
	}
	return e
}
