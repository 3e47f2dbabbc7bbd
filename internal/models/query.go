package models

import (
	"fmt"
	"strings"
)

// FocusMode selects the prompt prefix strategy for a query.
type FocusMode string

const (
	FocusSafe  FocusMode = "safe"  // maximum-safety ticket
	FocusValue FocusMode = "value" // value / underdog analysis
)

// ParseFocusMode accepts the wire tags case-insensitively.
func ParseFocusMode(s string) (FocusMode, error) {
	switch FocusMode(strings.ToLower(strings.TrimSpace(s))) {
	case FocusSafe:
		return FocusSafe, nil
	case FocusValue:
		return FocusValue, nil
	default:
		return "", fmt.Errorf("unknown focus mode %q", s)
	}
}

// QueryRequest is the payload sent to the query endpoint.
type QueryRequest struct {
	Focus string `json:"focus"` // "safe" or "value"
	Query string `json:"query"`
}

// QueryResponse carries the model text verbatim.
type QueryResponse struct {
	Text  string    `json:"text"`
	Focus FocusMode `json:"focus"`
}

type CredentialRequest struct {
	APIKey string `json:"api_key"`
}
