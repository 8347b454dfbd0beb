package adapter

// Fixer normalizes a single value on its way into a destination field.
// Fixers are pure: same inputs, same output, no access to the rest of the
// record.
type Fixer func(field string, value any) any

// FixerTable maps destination fields (legacy "__" string form) to fixers.
type FixerTable map[string]Fixer

// Fix runs the fixer registered for field, or returns the value unchanged
// when none is registered.
func (t FixerTable) Fix(field string, value any) any {
	if t == nil {
		return value
	}
	fix, ok := t[field]
	if !ok {
		return value
	}
	return fix(field, value)
}
