// Package encode turns parameter models into request payloads for the
// backtest and valuation services.
package encode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/Dallionking/quantdesk/internal/params"
	"github.com/Dallionking/quantdesk/internal/schema"
)

// Source says where the backtest engine takes its price history from.
type Source string

const (
	// SourceSymbol means prices are fetched for the symbol and date range.
	SourceSymbol Source = "symbol"
	// SourceUpload means prices come from the attached CSV. Symbol and dates
	// are still sent but the engine does not use them.
	SourceUpload Source = "upload"
)

// Content types produced by Payload.Body.
const (
	ContentJSON = "application/json"
)

// Payload is an encoded backtest request.
type Payload struct {
	Params     map[string]any
	Attachment *params.Attachment
	Source     Source
}

// Encode builds the backtest payload for m. It never mutates m.
func Encode(m *params.Model) (Payload, error) {
	r, err := lookup(m.StrategyID())
	if err != nil {
		return Payload{}, err
	}

	base := m.BaseValues()
	strategy := r.encode(m.StrategyValues())
	strategy["type"] = m.StrategyID()

	capital := base[schema.FieldInitialCapital]
	if n, ok := schema.ParseNumber(capital); ok {
		capital = n
	}

	p := Payload{
		Params: map[string]any{
			schema.FieldSymbol:         base[schema.FieldSymbol],
			schema.FieldStartDate:      base[schema.FieldStartDate],
			schema.FieldEndDate:        base[schema.FieldEndDate],
			schema.FieldInitialCapital: capital,
			"strategy":                 strategy,
		},
		Source: SourceSymbol,
	}
	if a := m.Attachment(); a != nil {
		p.Attachment = a
		p.Source = SourceUpload
	}
	return p, nil
}

// Validate checks m against the rules of its strategy and the base fields.
// Callers run it before submitting so bad input never reaches the network.
func Validate(m *params.Model) error {
	r, err := lookup(m.StrategyID())
	if err != nil {
		return err
	}
	base := m.BaseValues()
	if s, _ := base[schema.FieldSymbol].(string); s == "" && m.Attachment() == nil {
		return &schema.ValidationError{Field: schema.FieldSymbol, Message: "required when no file is attached"}
	}
	if c, err := number(base, schema.FieldInitialCapital); err != nil {
		return err
	} else if c <= 0 {
		return &schema.ValidationError{Field: schema.FieldInitialCapital, Message: "must be positive"}
	}
	if a := m.Attachment(); a != nil {
		if _, err := a.Inspect(); err != nil {
			return err
		}
	}
	return r.check(m.StrategyValues())
}

// JSON returns the params object as JSON text. Map keys are sorted, so the
// output is stable for a given model.
func (p Payload) JSON() ([]byte, error) {
	b, err := json.Marshal(p.Params)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	return b, nil
}

// Body returns the request content type and body. With an attachment the body
// is multipart with a params text part and a file part; without one it is the
// params object as plain JSON.
func (p Payload) Body() (string, []byte, error) {
	js, err := p.JSON()
	if err != nil {
		return "", nil, err
	}
	if p.Attachment == nil {
		return ContentJSON, js, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("params", string(js)); err != nil {
		return "", nil, fmt.Errorf("writing params part: %w", err)
	}
	fw, err := w.CreateFormFile("file", p.Attachment.Name)
	if err != nil {
		return "", nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := fw.Write(p.Attachment.Data); err != nil {
		return "", nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("closing multipart body: %w", err)
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}
