package dsl

import (
	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/i18n"
)

// EnumEntry binds a wire literal to a value.
type EnumEntry[T comparable] struct {
	Name  string
	Value T
}

// Enum is a static lookup table from wire literals to values of T.
// Matching is exact (case-sensitive, no trimming).
type Enum[T comparable] struct {
	field  string
	byName map[string]T
	names  map[T]string
	order  []string
}

// NewEnum builds an Enum. field names the property in error messages
// (e.g. "color gradient"). Duplicate names or values panic.
func NewEnum[T comparable](field string, entries ...EnumEntry[T]) *Enum[T] {
	e := &Enum[T]{
		field:  field,
		byName: make(map[string]T, len(entries)),
		names:  make(map[T]string, len(entries)),
		order:  make([]string, 0, len(entries)),
	}
	for _, en := range entries {
		if _, dup := e.byName[en.Name]; dup {
			panic("dsl.NewEnum: duplicate name " + en.Name)
		}
		if _, dup := e.names[en.Value]; dup {
			panic("dsl.NewEnum: duplicate value for " + en.Name)
		}
		e.byName[en.Name] = en.Value
		e.names[en.Value] = en.Name
		e.order = append(e.order, en.Name)
	}
	return e
}

// Lookup resolves name. Unknown names return *vegaskema.UnsupportedValueError.
func (e *Enum[T]) Lookup(name string) (T, error) {
	if v, ok := e.byName[name]; ok {
		return v, nil
	}
	var zero T
	return zero, &vegaskema.UnsupportedValueError{Field: e.field, Value: name}
}

// Name returns the wire literal for v.
func (e *Enum[T]) Name(v T) (string, bool) {
	n, ok := e.names[v]
	return n, ok
}

// Names returns the literals in declaration order.
func (e *Enum[T]) Names() []string { return append([]string(nil), e.order...) }

// Field returns the property label used in error messages.
func (e *Enum[T]) Field() string { return e.field }

// OneOf reads a string at n and resolves it through e. Structural failures
// (missing, null, not a string) come back as the node's issue; a string that
// is not in the table comes back as an unsupported_value issue whose cause is
// the *vegaskema.UnsupportedValueError.
func OneOf[T comparable](n Node, e *Enum[T]) (T, error) {
	var zero T
	s, err := n.Text()
	if err != nil {
		return zero, err
	}
	v, err := e.Lookup(s)
	if err != nil {
		msg := i18n.T(vegaskema.CodeUnsupportedValue, map[string]string{"field": e.field, "value": s})
		is := n.path.Issue(vegaskema.CodeUnsupportedValue, msg, "field", e.field, "value", s)
		is.Cause = err
		return zero, vegaskema.Issues{is}
	}
	return v, nil
}
