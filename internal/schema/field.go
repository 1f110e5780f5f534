package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the primitive type of a form field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindFile   Kind = "file"
)

// Field describes one configurable input. Fields are declared once at process
// start and never mutated.
type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Default any  // string or float64 matching Kind; nil for file fields
	Percent bool // user enters 8 for 8%; transmitted as 0.08
	Help    string
}

// Names returns the field names in declaration order.
func Names(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Find returns the field with the given name.
func Find(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Coerce converts an edited value to the representation stored for a field of
// kind k. Number fields become float64 when the input looks numeric and stay
// as the raw string otherwise, so a half-typed value is never lost. Text and
// date fields are kept as strings.
func Coerce(k Kind, raw any) any {
	switch k {
	case KindNumber:
		if n, ok := ParseNumber(raw); ok {
			return n
		}
		return raw
	case KindText, KindDate:
		if s, ok := raw.(string); ok {
			return s
		}
		return fmt.Sprint(raw)
	default:
		return raw
	}
}

// ParseNumber reports whether v is, or spells, a finite number.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text renders a stored value back into editor text.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
