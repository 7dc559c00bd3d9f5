// Package jsoncheck reports whether free text is well-formed JSON.
package jsoncheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Messages shown to the user.
const (
	MessageValid   = "Valid JSON"
	MessageInvalid = "Invalid JSON"
)

// Result is the outcome of Check.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Check parses text as a single JSON value. Parse failures are converted to
// a Result; no error is returned.
func Check(text string) Result {
	if json.Valid([]byte(text)) {
		return Result{Valid: true, Message: MessageValid}
	}
	if strings.TrimSpace(text) == "" {
		return Result{Message: MessageInvalid + ": empty input"}
	}
	var v any
	err := json.Unmarshal([]byte(text), &v)
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return Result{Message: fmt.Sprintf("%s at offset %d: %v", MessageInvalid, syn.Offset, syn)}
	}
	return Result{Message: MessageInvalid}
}
