package params

import (
	"maps"

	"github.com/Dallionking/quantdesk/internal/schema"
)

// Form is a field-keyed model for forms without strategy selection, such as
// the valuation and Monte Carlo forms. It shares coercion rules with Model.
type Form struct {
	fields []schema.Field
	values map[string]any
}

// NewForm creates a form with every field at its default.
func NewForm(fields []schema.Field) *Form {
	return &Form{
		fields: fields,
		values: defaults(fields),
	}
}

// SetField stores raw coerced to the field's kind.
func (f *Form) SetField(name string, raw any) error {
	if !assign(f.fields, f.values, name, raw) {
		return schema.UnknownField(name)
	}
	return nil
}

// Fields returns the form's schema.
func (f *Form) Fields() []schema.Field {
	return f.fields
}

// Value returns the current value of name.
func (f *Form) Value(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Values returns a copy of all current values.
func (f *Form) Values() map[string]any {
	return maps.Clone(f.values)
}
