package normalize

import "fmt"

// MalformedResponseError reports a response missing a required field or
// carrying a structurally invalid one. Renderers show it as "no results".
type MalformedResponseError struct {
	Kind   string
	Field  string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed %s response", e.Kind)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func missing(kind, field string) error {
	return &MalformedResponseError{Kind: kind, Field: field, Reason: "is missing"}
}
