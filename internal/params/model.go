package params

import (
	"maps"

	"github.com/Dallionking/quantdesk/internal/schema"
)

// Model holds the current values of a backtest form: the base fields, the
// fields of the active strategy, and an optional CSV attachment.
//
// The strategy value keys always equal the active strategy's field names;
// SwitchStrategy is the only place that changes which keys exist.
type Model struct {
	registry   *schema.Registry
	strategy   schema.Strategy
	base       map[string]any
	values     map[string]any
	attachment *Attachment
}

// NewModel creates a model selecting the registry's default strategy, with
// every field set to its declared default.
func NewModel(registry *schema.Registry) *Model {
	s := registry.Default()
	return &Model{
		registry: registry,
		strategy: s,
		base:     defaults(schema.BacktestBaseFields),
		values:   defaults(s.Fields),
	}
}

// SetField stores raw coerced to the named field's kind. The file field takes
// an *Attachment (nil clears it). A name outside the active schema returns
// schema.ErrUnknownField and leaves the model untouched.
func (m *Model) SetField(name string, raw any) error {
	if f, ok := schema.Find(schema.BacktestBaseFields, name); ok && f.Kind == schema.KindFile {
		return m.setAttachment(name, raw)
	}
	if assign(schema.BacktestBaseFields, m.base, name, raw) {
		return nil
	}
	if assign(m.strategy.Fields, m.values, name, raw) {
		return nil
	}
	return schema.UnknownField(name)
}

// SwitchStrategy selects another strategy and resets its fields to their
// defaults. Base values and the attachment are kept.
func (m *Model) SwitchStrategy(id string) error {
	s, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	m.strategy = s
	m.values = defaults(s.Fields)
	return nil
}

// SetAttachment replaces the attachment. Passing nil removes it.
func (m *Model) SetAttachment(a *Attachment) {
	m.attachment = a
}

func (m *Model) setAttachment(name string, raw any) error {
	switch a := raw.(type) {
	case nil:
		m.attachment = nil
	case *Attachment:
		m.attachment = a
	case Attachment:
		m.attachment = &a
	default:
		return &schema.ValidationError{Field: name, Message: "expects a file attachment"}
	}
	return nil
}

// Strategy returns the active strategy.
func (m *Model) Strategy() schema.Strategy {
	return m.strategy
}

// StrategyID returns the active strategy id.
func (m *Model) StrategyID() string {
	return m.strategy.ID
}

// BaseValues returns a copy of the base field values.
func (m *Model) BaseValues() map[string]any {
	return maps.Clone(m.base)
}

// StrategyValues returns a copy of the active strategy's values.
func (m *Model) StrategyValues() map[string]any {
	return maps.Clone(m.values)
}

// Value looks up a base or strategy value by name.
func (m *Model) Value(name string) (any, bool) {
	if v, ok := m.base[name]; ok {
		return v, true
	}
	v, ok := m.values[name]
	return v, ok
}

// Attachment returns the captured CSV, or nil.
func (m *Model) Attachment() *Attachment {
	return m.attachment
}

// ActiveFields lists the base fields followed by the active strategy fields,
// in the order a form should present them.
func (m *Model) ActiveFields() []schema.Field {
	out := make([]schema.Field, 0, len(schema.BacktestBaseFields)+len(m.strategy.Fields))
	out = append(out, schema.BacktestBaseFields...)
	return append(out, m.strategy.Fields...)
}

// Registry returns the registry the model was built from.
func (m *Model) Registry() *schema.Registry {
	return m.registry
}

func defaults(fields []schema.Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Kind == schema.KindFile {
			continue
		}
		out[f.Name] = f.Default
	}
	return out
}

// assign stores raw under name if name is one of fields.
func assign(fields []schema.Field, dst map[string]any, name string, raw any) bool {
	f, ok := schema.Find(fields, name)
	if !ok || f.Kind == schema.KindFile {
		return false
	}
	dst[name] = schema.Coerce(f.Kind, raw)
	return true
}
