package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float decodes any JSON value. Numbers and numeric strings keep their value;
// null, booleans, objects and non-numeric strings become NaN.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = Float(parseLenient(b))
	return nil
}

// Value returns f as a float64.
func (f Float) Value() float64 {
	return float64(f)
}

func parseLenient(b []byte) float64 {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return math.NaN()
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return math.NaN()
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Label decodes a JSON string or number as text. Years and timestamps arrive
// in either form depending on the service.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	if string(b) == "null" {
		*l = ""
		return nil
	}
	*l = Label(b)
	return nil
}

// sanitize replaces the bare NaN, Infinity and -Infinity tokens that Python
// JSON encoders emit with null, leaving string contents alone.
func sanitize(raw []byte) []byte {
	if !bytes.Contains(raw, []byte("NaN")) && !bytes.Contains(raw, []byte("Infinity")) {
		return raw
	}
	out := make([]byte, 0, len(raw))
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if tok := bareToken(raw[i:]); tok > 0 {
			out = append(out, "null"...)
			i += tok - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

func bareToken(b []byte) int {
	for _, tok := range []string{"-Infinity", "Infinity", "NaN"} {
		if bytes.HasPrefix(b, []byte(tok)) {
			return len(tok)
		}
	}
	return 0
}
